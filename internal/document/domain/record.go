// Package domain defines the durable document encryption model.
//
// Every document is encrypted under its own Data Encryption Key (DEK); the
// DEK is stored only in wrapped form, encrypted under the session master key.
// The durable record carries everything needed to decrypt the payload later
// except the keys themselves.
package domain

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	apperrors "github.com/allisson/docvault/internal/errors"
)

// WrappedDEK is a per-document DEK encrypted under the master key.
//
// Created at document creation time, one per document. Re-wrapped whenever the
// master key rotates. The unwrapped DEK exists only inside the scope of a
// single encrypt/decrypt call and is zeroed before that call returns.
type WrappedDEK struct {
	// Ciphertext is the DEK encrypted under the master key, with the document
	// ID as AAD so a wrapped DEK cannot be transplanted between documents.
	Ciphertext []byte `json:"ciphertext"`
	// Nonce is the wrap nonce.
	Nonce []byte `json:"nonce"`
	// Algorithm is the wrap algorithm.
	Algorithm cryptoDomain.Algorithm `json:"algorithm"`
	// DocumentID is the document this DEK belongs to.
	DocumentID uuid.UUID `json:"document_id"`
}

// EncryptedDocumentRecord is the durable representation of a protected payload.
//
// Records are immutable after upload with one exception: the WrappedDEK is
// replaced when the master key rotates. New document versions create new
// records. The IV is unique per encryption operation under a given DEK; reuse
// is a fatal precondition violation, prevented by generating a fresh DEK and a
// fresh random nonce prefix for every upload.
type EncryptedDocumentRecord struct {
	// ID is the document identifier (UUIDv7).
	ID uuid.UUID `json:"id"`
	// CiphertextRef is an opaque storage handle for the payload bytes. The
	// core never examines it.
	CiphertextRef string `json:"ciphertext_ref"`
	// IV is the base nonce of the segment stream (counter bytes zeroed).
	IV []byte `json:"iv"`
	// AuthTag is the detached authentication tag covering the final segment
	// of the stream.
	AuthTag []byte `json:"auth_tag"`
	// WrappedDEK is the document's wrapped Data Encryption Key.
	WrappedDEK WrappedDEK `json:"wrapped_dek"`
	// Algorithm is the payload encryption algorithm.
	Algorithm cryptoDomain.Algorithm `json:"algorithm"`
	// MIMEType is the plaintext content type.
	MIMEType string `json:"mime_type"`
	// OriginalSize is the plaintext size in bytes.
	OriginalSize int `json:"original_size"`
	// SegmentSize is the plaintext segment size the payload was sealed with.
	SegmentSize int `json:"segment_size"`
	// CreatedAt is the upload timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the record for structural problems before decryption work.
func (r EncryptedDocumentRecord) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required, validation.By(uuidNotNil)),
		validation.Field(&r.IV, validation.Required, validation.Length(12, 12)),
		validation.Field(&r.AuthTag, validation.Required, validation.Length(cryptoDomain.TagSize, cryptoDomain.TagSize)),
		validation.Field(&r.Algorithm, validation.Required, validation.In(cryptoDomain.AESGCM, cryptoDomain.ChaCha20)),
		validation.Field(&r.MIMEType, validation.Required),
		validation.Field(&r.OriginalSize, validation.Min(0)),
		validation.Field(&r.SegmentSize, validation.Required, validation.Min(1)),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}

	if len(r.WrappedDEK.Ciphertext) == 0 || len(r.WrappedDEK.Nonce) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "wrapped DEK is incomplete")
	}
	if r.WrappedDEK.DocumentID != r.ID {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "wrapped DEK belongs to a different document")
	}
	return nil
}

func uuidNotNil(value interface{}) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return validation.NewError("validation_uuid", "must be a non-nil UUID")
	}
	return nil
}
