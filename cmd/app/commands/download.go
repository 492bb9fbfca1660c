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
	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
)

// RunDownload fetches a document, decrypts it, and writes the plaintext to
// the output path. The in-memory plaintext is zeroed after the write.
func RunDownload(ctx context.Context, accountID, documentIDStr, outputPath string, io IOTuple) error {
	documentID, err := uuid.Parse(documentIDStr)
	if err != nil {
		return fmt.Errorf("invalid document id: %w", err)
	}
	if outputPath == "" {
		return fmt.Errorf("output path is required")
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

	useCase, err := container.DocumentUseCase(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize document use case: %w", err)
	}

	record, plaintext, err := useCase.Download(ctx, documentID, consoleReporter(io.Writer))
	if err != nil {
		return fmt.Errorf("failed to download document: %w", err)
	}
	defer cryptoDomain.Zero(plaintext)

	if err := os.WriteFile(outputPath, plaintext, 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	logger.Info("document downloaded",
		slog.String("document_id", record.ID.String()),
		slog.String("mime_type", record.MIMEType),
		slog.Int("size", record.OriginalSize),
		slog.String("output", outputPath),
	)
	fmt.Fprintf(io.Writer, "%s (%s, %d bytes) written to %s\n",
		record.ID, record.MIMEType, record.OriginalSize, outputPath)

	return nil
}
