package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/allisson/docvault/internal/app"
	"github.com/allisson/docvault/internal/config"
	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	"github.com/allisson/docvault/internal/keyparams"
	sessionDomain "github.com/allisson/docvault/internal/session/domain"
	appvalidation "github.com/allisson/docvault/internal/validation"
)

// RunRewrap rotates the master key for an account: it verifies the current
// secret, derives a new master key from a new secret with a fresh salt,
// re-wraps every stored document's DEK, and writes the new key parameters.
//
// Payload ciphertext is untouched; only the wrapped DEKs and the parameters
// file change. The new parameters are written only after every document has
// been re-wrapped.
func RunRewrap(ctx context.Context, accountID string, io IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	reader := bufio.NewReader(io.Reader)

	manager, err := unlockSession(ctx, container, reader, io.Writer, accountID)
	if err != nil {
		return err
	}
	defer manager.Clear()

	oldKey, err := manager.ActiveKey()
	if err != nil {
		return fmt.Errorf("failed to read session state: %w", err)
	}

	newSecret, err := readSecret(reader, io.Writer, fmt.Sprintf("New unlock secret for %s: ", accountID))
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(newSecret)

	strength := appvalidation.SecretStrength{
		MinLength:     12,
		RequireLetter: true,
		RequireNumber: true,
	}
	if err := strength.Validate(string(newSecret)); err != nil {
		return fmt.Errorf("weak secret: %w", err)
	}

	algorithm, err := parseAlgorithm(cfg.Algorithm)
	if err != nil {
		return err
	}

	newParams, err := keyparams.Bootstrap(
		container.KeyDeriver(),
		container.AEADManager(),
		accountID,
		newSecret,
		cfg.KDFIterations,
		algorithm,
	)
	if err != nil {
		return fmt.Errorf("failed to bootstrap new key parameters: %w", err)
	}

	newKeyBytes, err := container.KeyDeriver().DeriveKey(newSecret, newParams.Salt, newParams.Iterations)
	if err != nil {
		return fmt.Errorf("failed to derive new master key: %w", err)
	}
	newKey := sessionDomain.NewMasterKey(
		newKeyBytes,
		newParams.Salt,
		newParams.Iterations,
		newParams.KDFAlgorithm,
		newParams.Algorithm,
		time.Now().Add(cfg.SessionTTL),
	)
	defer newKey.Zeroize()

	useCase, err := container.DocumentUseCase(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize document use case: %w", err)
	}

	logger.Info("starting master key rotation", slog.String("account_id", accountID))

	rewrapped, err := useCase.RewrapDocuments(ctx, oldKey, newKey)
	if err != nil {
		return fmt.Errorf("failed to rewrap documents: %w", err)
	}

	if err := keyparams.WriteFile(cfg.KeyParamsPath, newParams); err != nil {
		return fmt.Errorf(
			"documents rewrapped but writing key parameters failed, rerun with the new secret: %w", err)
	}

	logger.Info("master key rotation completed",
		slog.String("account_id", accountID),
		slog.Int("documents_rewrapped", rewrapped),
	)
	fmt.Fprintf(io.Writer, "rewrapped %d documents, new key parameters written to %s\n",
		rewrapped, cfg.KeyParamsPath)

	return nil
}
