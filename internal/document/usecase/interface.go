// Package usecase defines the interfaces and implementations for document
// encryption use cases. Use cases orchestrate the session manager, the DEK
// lifecycle, the segment codec, and document storage to implement the
// upload and download pipelines.
package usecase

import (
	"context"

	"github.com/google/uuid"

	documentDomain "github.com/allisson/docvault/internal/document/domain"
	"github.com/allisson/docvault/internal/progress"
	sessionDomain "github.com/allisson/docvault/internal/session/domain"
)

// SessionManager is the session surface the document pipeline consumes. The
// pipeline borrows the master key per operation and reports successful use
// back; it never stores the key.
type SessionManager interface {
	// ActiveKey returns the current master key, ErrNoActiveSession when none
	// is held, or ErrSessionExpired when the held key has expired.
	ActiveKey() (*sessionDomain.MasterKey, error)
	// Extend resets the session inactivity clock after a successful operation.
	Extend()
}

// DocumentUseCase defines the interface for document encryption business logic.
//
// Cryptographic failures are terminal for the attempted operation: the
// pipeline never retries an encrypt or decrypt that failed, it surfaces the
// error to the caller.
type DocumentUseCase interface {
	// EncryptForUpload encrypts plaintext under a fresh per-document DEK and
	// returns the durable record plus the payload ciphertext, without storing
	// either. The plaintext slice is not retained.
	EncryptForUpload(
		ctx context.Context,
		plaintext []byte,
		mimeType string,
		reporter progress.Reporter,
	) (*documentDomain.EncryptedDocumentRecord, []byte, error)

	// DecryptDocument authenticates and decrypts a payload using its record.
	//
	// Security Note: the returned plaintext is owned by the caller, who MUST
	// zero it after use with cryptoDomain.Zero.
	DecryptDocument(
		ctx context.Context,
		record *documentDomain.EncryptedDocumentRecord,
		ciphertext []byte,
		reporter progress.Reporter,
	) ([]byte, error)

	// Upload encrypts plaintext and stores the resulting record and ciphertext.
	Upload(
		ctx context.Context,
		plaintext []byte,
		mimeType string,
		reporter progress.Reporter,
	) (*documentDomain.EncryptedDocumentRecord, error)

	// Download fetches a stored document and decrypts it.
	//
	// Security Note: the returned plaintext must be zeroed by the caller.
	Download(
		ctx context.Context,
		id uuid.UUID,
		reporter progress.Reporter,
	) (*documentDomain.EncryptedDocumentRecord, []byte, error)

	// List returns the records of all stored documents.
	List(ctx context.Context) ([]*documentDomain.EncryptedDocumentRecord, error)

	// Delete removes a stored document.
	Delete(ctx context.Context, id uuid.UUID) error

	// RewrapDocuments re-wraps every stored document's DEK from the old master
	// key to the new one and returns the number of documents updated. Payload
	// ciphertext is untouched; only the wrapped DEKs change.
	RewrapDocuments(
		ctx context.Context,
		oldKey, newKey *sessionDomain.MasterKey,
	) (int, error)
}
