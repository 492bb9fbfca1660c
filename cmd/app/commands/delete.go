package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/allisson/docvault/internal/app"
	"github.com/allisson/docvault/internal/config"
)

// RunDelete removes a stored document's record and ciphertext.
func RunDelete(ctx context.Context, documentIDStr string, io IOTuple) error {
	documentID, err := uuid.Parse(documentIDStr)
	if err != nil {
		return fmt.Errorf("invalid document id: %w", err)
	}

	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	useCase, err := container.DocumentUseCase(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize document use case: %w", err)
	}

	if err := useCase.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	logger.Info("document deleted", slog.String("document_id", documentIDStr))
	fmt.Fprintf(io.Writer, "document %s deleted\n", documentIDStr)

	return nil
}
