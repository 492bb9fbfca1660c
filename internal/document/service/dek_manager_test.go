package service

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	cryptoService "github.com/allisson/docvault/internal/crypto/service"
	documentDomain "github.com/allisson/docvault/internal/document/domain"
	sessionDomain "github.com/allisson/docvault/internal/session/domain"
)

func testMasterKey(t *testing.T) *sessionDomain.MasterKey {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return sessionDomain.NewMasterKey(
		key,
		[]byte("0123456789abcdef"),
		cryptoDomain.MinPBKDF2Iterations,
		cryptoDomain.PBKDF2SHA256,
		cryptoDomain.AESGCM,
		time.Now().Add(time.Hour),
	)
}

func TestDEKManagerService_CreateAndUnwrap(t *testing.T) {
	manager := NewDEKManager(cryptoService.NewAEADManager())
	masterKey := testMasterKey(t)
	documentID := uuid.Must(uuid.NewV7())

	wrapped, dekKey, err := manager.CreateWrappedDEK(masterKey, documentID, cryptoDomain.AESGCM)
	require.NoError(t, err)
	assert.Len(t, dekKey, cryptoDomain.KeySize)
	assert.Equal(t, documentID, wrapped.DocumentID)
	assert.NotEqual(t, dekKey, wrapped.Ciphertext)

	t.Run("unwrap recovers the DEK", func(t *testing.T) {
		unwrapped, err := manager.UnwrapDEK(wrapped, masterKey)
		require.NoError(t, err)
		assert.Equal(t, dekKey, unwrapped)
	})

	t.Run("wrong master key fails with key mismatch", func(t *testing.T) {
		_, err := manager.UnwrapDEK(wrapped, testMasterKey(t))
		assert.ErrorIs(t, err, documentDomain.ErrKeyMismatch)
	})

	t.Run("wrapped DEK is bound to its document", func(t *testing.T) {
		transplanted := wrapped
		transplanted.DocumentID = uuid.Must(uuid.NewV7())
		_, err := manager.UnwrapDEK(transplanted, masterKey)
		assert.ErrorIs(t, err, documentDomain.ErrKeyMismatch)
	})

	t.Run("tampered ciphertext fails", func(t *testing.T) {
		tampered := wrapped
		tampered.Ciphertext = append([]byte(nil), wrapped.Ciphertext...)
		tampered.Ciphertext[0] ^= 0x01
		_, err := manager.UnwrapDEK(tampered, masterKey)
		assert.ErrorIs(t, err, documentDomain.ErrKeyMismatch)
	})
}

func TestDEKManagerService_RewrapDEK(t *testing.T) {
	manager := NewDEKManager(cryptoService.NewAEADManager())
	oldKey := testMasterKey(t)
	newKey := testMasterKey(t)
	documentID := uuid.Must(uuid.NewV7())

	wrapped, dekKey, err := manager.CreateWrappedDEK(oldKey, documentID, cryptoDomain.AESGCM)
	require.NoError(t, err)

	rewrapped, err := manager.RewrapDEK(wrapped, oldKey, newKey)
	require.NoError(t, err)
	assert.Equal(t, documentID, rewrapped.DocumentID)

	t.Run("new key unwraps the rewrapped DEK to the same bytes", func(t *testing.T) {
		unwrapped, err := manager.UnwrapDEK(rewrapped, newKey)
		require.NoError(t, err)
		assert.Equal(t, dekKey, unwrapped)
	})

	t.Run("old key no longer unwraps it", func(t *testing.T) {
		_, err := manager.UnwrapDEK(rewrapped, oldKey)
		assert.ErrorIs(t, err, documentDomain.ErrKeyMismatch)
	})

	t.Run("rewrap with wrong old key fails", func(t *testing.T) {
		_, err := manager.RewrapDEK(wrapped, newKey, oldKey)
		assert.ErrorIs(t, err, documentDomain.ErrKeyMismatch)
	})
}
