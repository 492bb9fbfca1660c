package keyparams

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	cryptoService "github.com/allisson/docvault/internal/crypto/service"
	apperrors "github.com/allisson/docvault/internal/errors"
)

func bootstrapParams(t *testing.T, accountID string, secret []byte) *Params {
	t.Helper()
	params, err := Bootstrap(
		cryptoService.NewKeyDeriver(),
		cryptoService.NewAEADManager(),
		accountID,
		secret,
		cryptoDomain.MinPBKDF2Iterations,
		cryptoDomain.AESGCM,
	)
	require.NoError(t, err)
	return params
}

func TestBootstrap(t *testing.T) {
	params := bootstrapParams(t, "alice", []byte("correct horse"))

	assert.Equal(t, "alice", params.AccountID)
	assert.Len(t, params.Salt, 16)
	assert.Equal(t, cryptoDomain.MinPBKDF2Iterations, params.Iterations)
	assert.Equal(t, cryptoDomain.PBKDF2SHA256, params.KDFAlgorithm)
	assert.NotEmpty(t, params.ValidationCiphertext)
	assert.Len(t, params.ValidationNonce, 12)

	t.Run("validation payload decrypts under the derived key", func(t *testing.T) {
		deriver := cryptoService.NewKeyDeriver()
		key, err := deriver.DeriveKey([]byte("correct horse"), params.Salt, params.Iterations)
		require.NoError(t, err)

		cipher, err := cryptoService.NewAEADManager().CreateCipher(key, params.Algorithm)
		require.NoError(t, err)

		plaintext, err := cipher.Decrypt(params.ValidationCiphertext, params.ValidationNonce, []byte("alice"))
		require.NoError(t, err)
		assert.Equal(t, ValidationPlaintext("alice"), plaintext)
	})

	t.Run("two bootstraps use distinct salts", func(t *testing.T) {
		other := bootstrapParams(t, "alice", []byte("correct horse"))
		assert.NotEqual(t, params.Salt, other.Salt)
	})
}

func TestParams_Validate(t *testing.T) {
	base := bootstrapParams(t, "alice", []byte("secret"))

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base.Validate())
	})

	t.Run("weak iterations rejected", func(t *testing.T) {
		weak := *base
		weak.Iterations = 1000
		assert.ErrorIs(t, weak.Validate(), apperrors.ErrInvalidInput)
	})

	t.Run("short salt rejected", func(t *testing.T) {
		bad := *base
		bad.Salt = []byte("short")
		assert.ErrorIs(t, bad.Validate(), apperrors.ErrInvalidInput)
	})

	t.Run("unknown algorithm rejected", func(t *testing.T) {
		bad := *base
		bad.Algorithm = "des"
		assert.ErrorIs(t, bad.Validate(), apperrors.ErrInvalidInput)
	})
}

func TestMemoryProvider(t *testing.T) {
	provider := NewMemoryProvider()
	params := bootstrapParams(t, "alice", []byte("secret"))
	require.NoError(t, provider.Register(params))

	t.Run("registered account found", func(t *testing.T) {
		got, err := provider.Params(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, params, got)
	})

	t.Run("unknown account not found", func(t *testing.T) {
		_, err := provider.Params(context.Background(), "bob")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyparams.json")
	params := bootstrapParams(t, "alice", []byte("secret"))
	require.NoError(t, WriteFile(path, params))

	t.Run("round trip through file", func(t *testing.T) {
		provider := NewFileProvider(path)
		got, err := provider.Params(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, params.Salt, got.Salt)
		assert.Equal(t, params.Iterations, got.Iterations)
		assert.Equal(t, params.ValidationCiphertext, got.ValidationCiphertext)
	})

	t.Run("missing file fails closed", func(t *testing.T) {
		provider := NewFileProvider(filepath.Join(dir, "missing.json"))
		_, err := provider.Params(context.Background(), "alice")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
