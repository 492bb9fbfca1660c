// Package storage defines the document storage boundary.
//
// The store holds opaque ciphertext plus the encrypted document record; it is
// never asked to decrypt anything and never sees key material in usable form.
package storage

import (
	"context"

	"github.com/google/uuid"

	documentDomain "github.com/allisson/docvault/internal/document/domain"
)

// DocumentStore is the consumed document storage service boundary.
type DocumentStore interface {
	// Put stores a new document's ciphertext and record. Records are
	// immutable: storing an existing document ID returns ErrConflict.
	Put(ctx context.Context, record *documentDomain.EncryptedDocumentRecord, ciphertext []byte) error

	// Get returns the record and ciphertext for a document or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*documentDomain.EncryptedDocumentRecord, []byte, error)

	// List returns all stored records, without ciphertext.
	List(ctx context.Context) ([]*documentDomain.EncryptedDocumentRecord, error)

	// UpdateRecord replaces a document's record in place. Only the wrapped
	// DEK legitimately changes after upload (master key rotation); the
	// payload ciphertext is immutable.
	UpdateRecord(ctx context.Context, record *documentDomain.EncryptedDocumentRecord) error

	// Delete removes a document's record and ciphertext.
	Delete(ctx context.Context, id uuid.UUID) error
}
