// Package commands contains CLI command implementations for the application.
package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/allisson/docvault/internal/app"
	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	"github.com/allisson/docvault/internal/progress"
	sessionService "github.com/allisson/docvault/internal/session/service"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// readSecret prompts for and reads one line as the unlock secret. The same
// reader must be reused for every prompt within one command invocation.
// The caller owns the returned bytes and must zero them after use.
func readSecret(reader *bufio.Reader, writer io.Writer, prompt string) ([]byte, error) {
	fmt.Fprint(writer, prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}
	secret := strings.TrimRight(line, "\r\n")
	if secret == "" {
		return nil, fmt.Errorf("secret must not be empty")
	}
	return []byte(secret), nil
}

// unlockSession prompts for the unlock secret and initializes a key session
// for the account. The secret bytes are zeroed before return.
func unlockSession(
	ctx context.Context,
	container *app.Container,
	reader *bufio.Reader,
	writer io.Writer,
	accountID string,
) (*sessionService.Manager, error) {
	manager, err := container.SessionManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}

	secret, err := readSecret(reader, writer, fmt.Sprintf("Unlock secret for %s: ", accountID))
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(secret)

	if _, err := manager.Initialize(ctx, accountID, secret); err != nil {
		return nil, fmt.Errorf("failed to unlock session: %w", err)
	}
	return manager, nil
}

// consoleReporter returns a progress reporter that prints stage updates.
func consoleReporter(w io.Writer) progress.Reporter {
	return progress.Monotonic(progress.ReporterFunc(func(event progress.Event) {
		fmt.Fprintf(w, "[%3d%%] %s %s\n", event.Percent, event.Stage, event.Message)
	}))
}
