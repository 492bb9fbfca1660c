package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/allisson/docvault/internal/app"
	"github.com/allisson/docvault/internal/config"
)

// RunList prints the records of all stored documents. Listing reads only
// record metadata; no session or ciphertext is touched.
func RunList(ctx context.Context, format string, io IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	useCase, err := container.DocumentUseCase(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize document use case: %w", err)
	}

	records, err := useCase.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	switch format {
	case "json":
		encoder := json.NewEncoder(io.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	case "text":
		if len(records) == 0 {
			fmt.Fprintln(io.Writer, "no documents stored")
			return nil
		}
		for _, record := range records {
			fmt.Fprintf(io.Writer, "%s  %-30s %8d bytes  %s\n",
				record.ID, record.MIMEType, record.OriginalSize,
				record.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}
}
