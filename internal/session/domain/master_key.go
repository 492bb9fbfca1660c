// Package domain defines the session-scoped key model for the vault core.
//
// A MasterKey is derived from the user secret and lives only in memory for a
// bounded session. It is owned exclusively by the session manager; consumer
// components borrow the key material for the duration of a single
// encrypt/decrypt call and never store it.
package domain

import (
	"sync"
	"time"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
)

// MasterKey is the in-memory symmetric key for one unlock session.
//
// The raw key bytes are unexported: callers obtain them through Bytes for the
// scope of a cryptographic call and must not retain the slice. The key is
// never serialized to durable storage; the only persisted form is the
// encrypted session snapshot in volatile, tab-scoped storage.
//
// The expiry clock is the only field mutated after construction. It carries
// its own guard because concurrent operations borrowing the key read it
// (Expired) while the session manager moves it forward (ExtendTo).
type MasterKey struct {
	key          []byte
	salt         []byte
	iterations   int
	kdfAlgorithm cryptoDomain.KDFAlgorithm
	algorithm    cryptoDomain.Algorithm

	mu        sync.Mutex
	expiresAt time.Time
}

// NewMasterKey builds a MasterKey taking ownership of the key bytes.
func NewMasterKey(
	key, salt []byte,
	iterations int,
	kdfAlgorithm cryptoDomain.KDFAlgorithm,
	algorithm cryptoDomain.Algorithm,
	expiresAt time.Time,
) *MasterKey {
	return &MasterKey{
		key:          key,
		salt:         salt,
		iterations:   iterations,
		kdfAlgorithm: kdfAlgorithm,
		algorithm:    algorithm,
		expiresAt:    expiresAt,
	}
}

// Bytes returns the raw key material for use in a single cryptographic call.
// The returned slice is borrowed, not copied: callers must not retain it
// beyond the call, and it becomes all-zero after Zeroize.
func (m *MasterKey) Bytes() []byte {
	return m.key
}

// Salt returns the derivation salt.
func (m *MasterKey) Salt() []byte {
	return m.salt
}

// Iterations returns the derivation iteration count.
func (m *MasterKey) Iterations() int {
	return m.iterations
}

// KDFAlgorithm returns the key derivation algorithm identifier.
func (m *MasterKey) KDFAlgorithm() cryptoDomain.KDFAlgorithm {
	return m.kdfAlgorithm
}

// Algorithm returns the AEAD algorithm this key is used with.
func (m *MasterKey) Algorithm() cryptoDomain.Algorithm {
	return m.algorithm
}

// ExpiresAt returns the session expiry timestamp.
func (m *MasterKey) ExpiresAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiresAt
}

// ExtendTo moves the session expiry forward. Only the session manager calls this.
func (m *MasterKey) ExtendTo(expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expiresAt = expiresAt
}

// Expired reports whether the session has passed its expiry at the given time.
func (m *MasterKey) Expired(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !now.Before(m.expiresAt)
}

// Zeroize overwrites the key material. The MasterKey must not be used afterwards.
func (m *MasterKey) Zeroize() {
	cryptoDomain.Zero(m.key)
}
