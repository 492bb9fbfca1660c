package commands

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	"github.com/allisson/docvault/internal/keyparams"
)

func TestRunKeyparamsInit(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		setupVaultEnv(t)
		io, out := commandIO("correct-horse-42\n")

		err := RunKeyparamsInit("alice", cryptoDomain.MinPBKDF2Iterations, io)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Key parameters for alice")

		path := os.Getenv("KEY_PARAMS_PATH")
		provider := keyparams.NewFileProvider(path)
		params, err := provider.Params(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", params.AccountID)
		assert.Equal(t, cryptoDomain.MinPBKDF2Iterations, params.Iterations)
		assert.NotEmpty(t, params.ValidationCiphertext)
	})

	t.Run("invalid account id", func(t *testing.T) {
		setupVaultEnv(t)
		io, _ := commandIO("correct-horse-42\n")

		err := RunKeyparamsInit("Not Valid", cryptoDomain.MinPBKDF2Iterations, io)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid account id")
	})

	t.Run("weak secret rejected", func(t *testing.T) {
		setupVaultEnv(t)
		io, _ := commandIO("short1\n")

		err := RunKeyparamsInit("alice", cryptoDomain.MinPBKDF2Iterations, io)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weak secret")
	})

	t.Run("secret without digits rejected", func(t *testing.T) {
		setupVaultEnv(t)
		io, _ := commandIO("letters-only-secret\n")

		err := RunKeyparamsInit("alice", cryptoDomain.MinPBKDF2Iterations, io)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weak secret")
	})
}
