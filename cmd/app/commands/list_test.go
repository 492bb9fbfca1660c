package commands

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	documentDomain "github.com/allisson/docvault/internal/document/domain"
)

func TestRunList(t *testing.T) {
	ctx := context.Background()

	t.Run("empty vault", func(t *testing.T) {
		setupVaultEnv(t)

		io, out := commandIO("")
		require.NoError(t, RunList(ctx, "text", io))
		assert.Contains(t, out.String(), "no documents stored")
	})

	t.Run("json output", func(t *testing.T) {
		dir := setupVaultEnv(t)
		initAccount(t, "alice", "correct-horse-42")
		documentID := uploadDocument(t, dir, "correct-horse-42", []byte("content"))

		io, out := commandIO("")
		require.NoError(t, RunList(ctx, "json", io))

		var records []*documentDomain.EncryptedDocumentRecord
		require.NoError(t, json.Unmarshal(out.Bytes(), &records))
		require.Len(t, records, 1)
		assert.Equal(t, documentID, records[0].ID.String())
	})

	t.Run("invalid format", func(t *testing.T) {
		setupVaultEnv(t)

		io, _ := commandIO("")
		err := RunList(ctx, "yaml", io)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
	})
}
