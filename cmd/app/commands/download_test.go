package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDownload(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid document id", func(t *testing.T) {
		setupVaultEnv(t)

		io, _ := commandIO("correct-horse-42\n")
		err := RunDownload(ctx, "alice", "not-a-uuid", "out.txt", io)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid document id")
	})

	t.Run("missing output path", func(t *testing.T) {
		setupVaultEnv(t)

		io, _ := commandIO("correct-horse-42\n")
		err := RunDownload(ctx, "alice", "0198c5f2-0000-7000-8000-000000000000", "", io)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "output path is required")
	})

	t.Run("unknown document id", func(t *testing.T) {
		setupVaultEnv(t)
		initAccount(t, "alice", "correct-horse-42")

		io, _ := commandIO("correct-horse-42\n")
		err := RunDownload(ctx, "alice", "0198c5f2-0000-7000-8000-000000000000", "out.txt", io)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to download document")
	})
}
