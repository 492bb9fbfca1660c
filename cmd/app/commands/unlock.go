package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/docvault/internal/app"
	"github.com/allisson/docvault/internal/config"
)

// RunUnlock verifies the unlock secret against the account's validation
// payload and reports the session policy that would apply. The derived key is
// scrubbed before return; nothing persists.
func RunUnlock(ctx context.Context, accountID string, io IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	manager, err := unlockSession(ctx, container, bufio.NewReader(io.Reader), io.Writer, accountID)
	if err != nil {
		return err
	}
	defer manager.Clear()

	masterKey, err := manager.ActiveKey()
	if err != nil {
		return fmt.Errorf("failed to read session state: %w", err)
	}

	logger.Info("unlock verified",
		slog.String("account_id", accountID),
		slog.Int("iterations", masterKey.Iterations()),
		slog.String("algorithm", string(masterKey.Algorithm())),
	)
	fmt.Fprintf(io.Writer, "secret verified for %s\n", accountID)
	fmt.Fprintf(io.Writer, "algorithm: %s, iterations: %d\n",
		masterKey.Algorithm(), masterKey.Iterations())
	fmt.Fprintf(io.Writer, "a session would stay unlocked until %s without activity\n",
		masterKey.ExpiresAt().Format("15:04:05"))

	return nil
}
