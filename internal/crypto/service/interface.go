// Package service provides the cryptographic primitives for the vault core.
// Implements AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305), password-based key
// derivation, and the segmented payload codec used by upload, download, and
// streaming preview decryption.
package service

import (
	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD using a freshly generated
	// random nonce and returns ciphertext (tag appended) and the nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// EncryptWithNonce encrypts plaintext with a caller-supplied nonce.
	// The caller is responsible for nonce uniqueness under this key; this is
	// only used by the segment codec, which derives counter-based nonces.
	EncryptWithNonce(plaintext, nonce, aad []byte) ([]byte, error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)

	// NonceSize returns the nonce size in bytes.
	NonceSize() int

	// Overhead returns the ciphertext expansion in bytes (the tag size).
	Overhead() int
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyDeriver defines the interface for deriving key material from a user secret.
type KeyDeriver interface {
	// DeriveKey derives a 32-byte key from secret using the supplied salt and
	// iteration count. The derivation is deterministic: the same inputs always
	// yield the same key. Rejects iteration counts below the accepted floor.
	DeriveKey(secret, salt []byte, iterations int) ([]byte, error)

	// ExpandKey derives a purpose-bound 32-byte subkey from existing key
	// material using the given info label. Used to separate the snapshot
	// wrapping key from the session key it protects.
	ExpandKey(key []byte, info string) ([]byte, error)
}
