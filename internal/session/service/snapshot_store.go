// Package service implements the master-key session manager and its volatile
// snapshot store.
package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	apperrors "github.com/allisson/docvault/internal/errors"
	sessionDomain "github.com/allisson/docvault/internal/session/domain"
)

// SnapshotStore abstracts the volatile, tab-scoped storage used to persist the
// encrypted session snapshot across a process reload. Implementations must be
// non-durable: the snapshot must not survive the hosting tab or process group.
type SnapshotStore interface {
	// Load returns the stored snapshot or ErrNotFound.
	Load(ctx context.Context) (*sessionDomain.SessionSnapshot, error)
	// Save stores the snapshot, replacing any existing one.
	Save(ctx context.Context, snapshot *sessionDomain.SessionSnapshot) error
	// Delete removes the snapshot. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context) error
}

// SnapshotKeyProvider supplies the ephemeral key the snapshot is encrypted
// under. The key is scoped to the hosting environment (one tab, one process
// group) and is never derived from the user secret, so a stolen snapshot blob
// is useless without the environment that created it.
type SnapshotKeyProvider interface {
	// Key returns the 32-byte ephemeral snapshot key.
	Key(ctx context.Context) ([]byte, error)
}

// MemorySnapshotStore is an in-process SnapshotStore. It models tab-scoped
// session storage: the snapshot lives exactly as long as the store value.
type MemorySnapshotStore struct {
	mu       sync.Mutex
	snapshot *sessionDomain.SessionSnapshot
}

// NewMemorySnapshotStore creates an empty MemorySnapshotStore.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{}
}

// Load returns the stored snapshot or ErrNotFound.
func (m *MemorySnapshotStore) Load(_ context.Context) (*sessionDomain.SessionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == nil {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "session snapshot")
	}
	return m.snapshot, nil
}

// Save stores the snapshot.
func (m *MemorySnapshotStore) Save(_ context.Context, snapshot *sessionDomain.SessionSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snapshot
	return nil
}

// Delete removes the snapshot and scrubs the wrapped key material.
func (m *MemorySnapshotStore) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot != nil {
		cryptoDomain.Zero(m.snapshot.WrappedKeyMaterial)
		m.snapshot = nil
	}
	return nil
}

// EphemeralKeyProvider is a SnapshotKeyProvider backed by a random key
// generated at construction time. Constructing a new provider models a fresh
// environment: snapshots written under the old provider can no longer be opened.
type EphemeralKeyProvider struct {
	key []byte
}

// NewEphemeralKeyProvider generates a fresh random snapshot key.
func NewEphemeralKeyProvider() (*EphemeralKeyProvider, error) {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate snapshot key: %w", err)
	}
	return &EphemeralKeyProvider{key: key}, nil
}

// Key returns the ephemeral snapshot key.
func (e *EphemeralKeyProvider) Key(_ context.Context) ([]byte, error) {
	return e.key, nil
}

// Zeroize scrubs the snapshot key. The provider must not be used afterwards.
func (e *EphemeralKeyProvider) Zeroize() {
	cryptoDomain.Zero(e.key)
}
