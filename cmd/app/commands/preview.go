package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/allisson/docvault/internal/app"
	"github.com/allisson/docvault/internal/config"
	previewDomain "github.com/allisson/docvault/internal/preview/domain"
	"github.com/allisson/docvault/internal/render"
)

// RunPreview decrypts a document chunk by chunk into an offscreen surface,
// locks the surface to the preview session, and writes the watermarked
// rendering to the output path. The surface is scrubbed before return.
func RunPreview(ctx context.Context, accountID, documentIDStr, outputPath string, io IOTuple) error {
	documentID, err := uuid.Parse(documentIDStr)
	if err != nil {
		return fmt.Errorf("invalid document id: %w", err)
	}

	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	manager, err := unlockSession(ctx, container, bufio.NewReader(io.Reader), io.Writer, accountID)
	if err != nil {
		return err
	}
	defer manager.Clear()

	store, err := container.DocumentStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}

	record, ciphertext, err := store.Get(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to fetch document: %w", err)
	}

	decryptor, err := container.PreviewDecryptor()
	if err != nil {
		return fmt.Errorf("failed to initialize preview decryptor: %w", err)
	}

	kind, err := previewDomain.KindForMIME(record.MIMEType)
	if err != nil {
		return fmt.Errorf("cannot preview %s documents: %w", record.MIMEType, err)
	}

	session := decryptor.NewSession()

	units := 1
	if record.SegmentSize > 0 && record.OriginalSize > 0 {
		units = (record.OriginalSize + record.SegmentSize - 1) / record.SegmentSize
	}
	surface := render.NewOffscreenSurface(0, 0, units)
	defer surface.Scrub()

	scrubTimer := render.ScheduleScrub(surface, session.ExpiresAt(), nil)
	defer scrubTimer.Stop()

	payload, err := decryptor.DecryptForPreview(ctx, session, record, ciphertext,
		render.NewProcessor(kind, surface))
	if err != nil {
		return fmt.Errorf("failed to decrypt preview: %w", err)
	}

	logger.Info("preview decrypted",
		slog.String("document_id", record.ID.String()),
		slog.String("preview_session_id", payload.SessionID.String()),
		slog.Int("chunks", payload.Chunks),
		slog.Bool("fully_rendered", payload.FullyRendered),
	)

	// Lock before anything leaves the surface: only the watermarked
	// presentation is ever written out.
	surface.Lock(session.ID(), session.Watermark())

	if outputPath != "" {
		rendering, err := surface.Present()
		if err != nil {
			return fmt.Errorf("failed to export preview: %w", err)
		}
		if err := os.WriteFile(outputPath, rendering, 0o600); err != nil {
			return fmt.Errorf("failed to write preview file: %w", err)
		}
		fmt.Fprintf(io.Writer, "preview written to %s\n", outputPath)
	}

	fmt.Fprintf(io.Writer, "preview session %s: %d chunks, fully rendered: %v, expires %s\n",
		payload.SessionID, payload.Chunks, payload.FullyRendered,
		payload.ExpiresAt.Format("15:04:05"))

	return nil
}
