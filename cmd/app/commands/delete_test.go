package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes a stored document", func(t *testing.T) {
		dir := setupVaultEnv(t)
		initAccount(t, "alice", "correct-horse-42")
		documentID := uploadDocument(t, dir, "correct-horse-42", []byte("content"))

		io, out := commandIO("")
		require.NoError(t, RunDelete(ctx, documentID, io))
		assert.Contains(t, out.String(), "deleted")

		listIO, listOut := commandIO("")
		require.NoError(t, RunList(ctx, "text", listIO))
		assert.Contains(t, listOut.String(), "no documents stored")
	})

	t.Run("invalid document id", func(t *testing.T) {
		setupVaultEnv(t)

		io, _ := commandIO("")
		err := RunDelete(ctx, "not-a-uuid", io)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid document id")
	})

	t.Run("unknown document id", func(t *testing.T) {
		setupVaultEnv(t)

		io, _ := commandIO("")
		err := RunDelete(ctx, "0198c5f2-0000-7000-8000-000000000000", io)
		require.Error(t, err)
	})
}
