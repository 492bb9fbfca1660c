// Package service provides the DEK lifecycle operations for document
// encryption: generating, wrapping, unwrapping, and re-wrapping per-document
// Data Encryption Keys under the session master key.
package service

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	cryptoService "github.com/allisson/docvault/internal/crypto/service"
	documentDomain "github.com/allisson/docvault/internal/document/domain"
	sessionDomain "github.com/allisson/docvault/internal/session/domain"
)

// DEKManager defines the interface for managing per-document DEKs.
type DEKManager interface {
	// CreateWrappedDEK generates a fresh random DEK for the document and
	// wraps it under the master key. Returns the wrapped form and the
	// plaintext DEK; the caller owns the plaintext and must zero it as soon
	// as the encryption call completes.
	CreateWrappedDEK(
		masterKey *sessionDomain.MasterKey,
		documentID uuid.UUID,
		alg cryptoDomain.Algorithm,
	) (documentDomain.WrappedDEK, []byte, error)

	// UnwrapDEK decrypts a wrapped DEK using the master key. The returned
	// plaintext DEK must be zeroed by the caller after use.
	UnwrapDEK(
		wrapped documentDomain.WrappedDEK,
		masterKey *sessionDomain.MasterKey,
	) ([]byte, error)

	// RewrapDEK unwraps a DEK with the old master key and wraps it again
	// under the new one. Used when the master key rotates; the plaintext DEK
	// never leaves this call.
	RewrapDEK(
		wrapped documentDomain.WrappedDEK,
		oldKey, newKey *sessionDomain.MasterKey,
	) (documentDomain.WrappedDEK, error)
}

// DEKManagerService implements DEKManager using the AEADManager for wrap
// operations. The document ID is bound into the wrap AAD, so a wrapped DEK
// presented with a different document's record fails authentication.
type DEKManagerService struct {
	aeadManager cryptoService.AEADManager
}

// NewDEKManager creates a new DEKManagerService.
func NewDEKManager(aeadManager cryptoService.AEADManager) *DEKManagerService {
	return &DEKManagerService{aeadManager: aeadManager}
}

// CreateWrappedDEK generates a random 32-byte DEK and wraps it under the master key.
func (d *DEKManagerService) CreateWrappedDEK(
	masterKey *sessionDomain.MasterKey,
	documentID uuid.UUID,
	alg cryptoDomain.Algorithm,
) (documentDomain.WrappedDEK, []byte, error) {
	dekKey := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(dekKey); err != nil {
		return documentDomain.WrappedDEK{}, nil, fmt.Errorf("failed to generate DEK: %w", err)
	}

	wrapped, err := d.wrap(dekKey, masterKey, documentID, alg)
	if err != nil {
		cryptoDomain.Zero(dekKey)
		return documentDomain.WrappedDEK{}, nil, err
	}

	return wrapped, dekKey, nil
}

// UnwrapDEK decrypts the wrapped DEK under the master key.
// Returns ErrKeyMismatch when authentication fails.
func (d *DEKManagerService) UnwrapDEK(
	wrapped documentDomain.WrappedDEK,
	masterKey *sessionDomain.MasterKey,
) ([]byte, error) {
	cipher, err := d.aeadManager.CreateCipher(masterKey.Bytes(), wrapped.Algorithm)
	if err != nil {
		return nil, err
	}

	dekKey, err := cipher.Decrypt(wrapped.Ciphertext, wrapped.Nonce, wrapped.DocumentID[:])
	if err != nil {
		return nil, documentDomain.ErrKeyMismatch
	}

	return dekKey, nil
}

// RewrapDEK moves a wrapped DEK from the old master key to the new one.
func (d *DEKManagerService) RewrapDEK(
	wrapped documentDomain.WrappedDEK,
	oldKey, newKey *sessionDomain.MasterKey,
) (documentDomain.WrappedDEK, error) {
	dekKey, err := d.UnwrapDEK(wrapped, oldKey)
	if err != nil {
		return documentDomain.WrappedDEK{}, err
	}
	defer cryptoDomain.Zero(dekKey)

	return d.wrap(dekKey, newKey, wrapped.DocumentID, wrapped.Algorithm)
}

// wrap encrypts the plaintext DEK under the master key with the document ID as AAD.
func (d *DEKManagerService) wrap(
	dekKey []byte,
	masterKey *sessionDomain.MasterKey,
	documentID uuid.UUID,
	alg cryptoDomain.Algorithm,
) (documentDomain.WrappedDEK, error) {
	cipher, err := d.aeadManager.CreateCipher(masterKey.Bytes(), alg)
	if err != nil {
		return documentDomain.WrappedDEK{}, err
	}

	ciphertext, nonce, err := cipher.Encrypt(dekKey, documentID[:])
	if err != nil {
		return documentDomain.WrappedDEK{}, fmt.Errorf("failed to wrap DEK: %w", err)
	}

	return documentDomain.WrappedDEK{
		Ciphertext: ciphertext,
		Nonce:      nonce,
		Algorithm:  alg,
		DocumentID: documentID,
	}, nil
}
