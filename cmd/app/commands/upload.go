package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/docvault/internal/app"
	"github.com/allisson/docvault/internal/config"
	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	"github.com/allisson/docvault/internal/progress"
)

// uploadConcurrency bounds the number of files encrypted at once.
const uploadConcurrency = 4

// RunUpload encrypts one or more files and stores them in the vault.
// Each file gets its own fresh DEK; a failure on one file cancels the rest.
func RunUpload(ctx context.Context, accountID string, paths []string, io IOTuple) error {
	if len(paths) == 0 {
		return fmt.Errorf("at least one file path is required")
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

	logger.Info("starting upload",
		slog.String("account_id", accountID),
		slog.Int("file_count", len(paths)),
	)

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(uploadConcurrency)

	for _, path := range paths {
		group.Go(func() error {
			plaintext, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			defer cryptoDomain.Zero(plaintext)

			mimeType := mime.TypeByExtension(filepath.Ext(path))
			if mimeType == "" {
				mimeType = "application/octet-stream"
			}

			record, err := useCase.Upload(groupCtx, plaintext, mimeType, progress.Nop())
			if err != nil {
				return fmt.Errorf("failed to upload %s: %w", path, err)
			}

			mu.Lock()
			fmt.Fprintf(io.Writer, "%s -> %s (%s, %d bytes)\n",
				path, record.ID, record.MIMEType, record.OriginalSize)
			mu.Unlock()

			logger.Info("document uploaded",
				slog.String("document_id", record.ID.String()),
				slog.String("mime_type", record.MIMEType),
				slog.Int("size", record.OriginalSize),
			)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	logger.Info("upload completed", slog.Int("file_count", len(paths)))
	return nil
}
