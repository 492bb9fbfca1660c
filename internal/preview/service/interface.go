// Package service implements streaming preview decryption: bounded, sequential
// chunk decryption feeding a type-specific processor, with no complete
// plaintext buffer ever materialized or handed to calling code.
package service

import (
	"context"

	documentDomain "github.com/allisson/docvault/internal/document/domain"
	previewDomain "github.com/allisson/docvault/internal/preview/domain"
	sessionDomain "github.com/allisson/docvault/internal/session/domain"
)

// KeySource is the session surface the preview pipeline consumes. The master
// key is borrowed per chunk and never stored; its expiry invalidates the
// preview even when the preview's own expiry has not elapsed.
type KeySource interface {
	ActiveKey() (*sessionDomain.MasterKey, error)
	Extend()
}

// ChunkProcessor consumes decrypted chunks in strict index order.
//
// The chunk slice is only valid for the duration of the ProcessChunk call and
// is zeroed as soon as it returns; processors must paint or interpret the
// bytes immediately, never retain them. A processor absorbs per-unit render
// problems itself (painting a placeholder); returning an error aborts the
// whole stream.
type ChunkProcessor interface {
	ProcessChunk(index int, chunk []byte) error

	// Scrub discards everything rendered so far. Called on any abort.
	Scrub()

	// FullyRendered reports whether every unit rendered without a placeholder.
	FullyRendered() bool
}

// InspectionMonitor is a best-effort hardening hook, not a security boundary.
// When it reports active inspection tooling the stream aborts through the
// same scrub path as normal expiry.
type InspectionMonitor interface {
	InspectionActive() bool
}

// NopMonitor never reports inspection activity.
type NopMonitor struct{}

// InspectionActive always returns false.
func (NopMonitor) InspectionActive() bool {
	return false
}

// PreviewDecryptor defines the interface for the preview decryption pipeline.
type PreviewDecryptor interface {
	// NewSession creates an idle preview session with the configured TTL.
	NewSession() *previewDomain.PreviewSession

	// DecryptForPreview decrypts the payload chunk by chunk into the
	// processor. Forward-only and not restartable: a failed or cancelled
	// stream cannot be resumed, a fresh decrypt needs a fresh session.
	DecryptForPreview(
		ctx context.Context,
		session *previewDomain.PreviewSession,
		record *documentDomain.EncryptedDocumentRecord,
		ciphertext []byte,
		processor ChunkProcessor,
	) (*previewDomain.SecurePreviewPayload, error)
}
