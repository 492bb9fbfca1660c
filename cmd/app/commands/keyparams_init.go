package commands

import (
	"bufio"
	"fmt"
	"log/slog"

	"github.com/allisson/docvault/internal/app"
	"github.com/allisson/docvault/internal/config"
	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	"github.com/allisson/docvault/internal/keyparams"
	appvalidation "github.com/allisson/docvault/internal/validation"
)

// RunKeyparamsInit bootstraps key derivation parameters for an account and
// writes them to the configured parameters file.
//
// The secret is read interactively, checked for strength, used to derive the
// validation payload, and zeroed. Nothing derived from the secret in
// recoverable form is written to the file.
func RunKeyparamsInit(accountID string, iterations int, io IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	if err := appvalidation.AccountID.Validate(accountID); err != nil {
		return fmt.Errorf("invalid account id: %w", err)
	}

	secret, err := readSecret(
		bufio.NewReader(io.Reader), io.Writer,
		fmt.Sprintf("Choose an unlock secret for %s: ", accountID),
	)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(secret)

	// Strength is enforced only here, at secret selection. Unlock failures
	// stay uniform.
	strength := appvalidation.SecretStrength{
		MinLength:     12,
		RequireLetter: true,
		RequireNumber: true,
	}
	if err := strength.Validate(string(secret)); err != nil {
		return fmt.Errorf("weak secret: %w", err)
	}

	if iterations <= 0 {
		iterations = cfg.KDFIterations
	}

	algorithm, err := parseAlgorithm(cfg.Algorithm)
	if err != nil {
		return err
	}

	params, err := keyparams.Bootstrap(
		container.KeyDeriver(),
		container.AEADManager(),
		accountID,
		secret,
		iterations,
		algorithm,
	)
	if err != nil {
		return fmt.Errorf("failed to bootstrap key parameters: %w", err)
	}

	if err := keyparams.WriteFile(cfg.KeyParamsPath, params); err != nil {
		return fmt.Errorf("failed to write key parameters file: %w", err)
	}

	logger.Info("key parameters written",
		slog.String("account_id", accountID),
		slog.Int("iterations", params.Iterations),
		slog.String("path", cfg.KeyParamsPath),
	)
	fmt.Fprintf(io.Writer, "Key parameters for %s written to %s\n", accountID, cfg.KeyParamsPath)

	return nil
}

// parseAlgorithm converts an algorithm string to cryptoDomain.Algorithm.
// Returns an error if the algorithm string is invalid.
func parseAlgorithm(algorithm string) (cryptoDomain.Algorithm, error) {
	switch algorithm {
	case string(cryptoDomain.AESGCM):
		return cryptoDomain.AESGCM, nil
	case string(cryptoDomain.ChaCha20):
		return cryptoDomain.ChaCha20, nil
	default:
		return "", fmt.Errorf(
			"invalid algorithm: %s (valid options: aes-gcm, chacha20-poly1305)",
			algorithm,
		)
	}
}
