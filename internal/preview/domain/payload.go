package domain

import (
	"time"

	"github.com/google/uuid"
)

// SecurePreviewPayload is the result handed to preview consumers.
//
// It carries only render metadata: the decrypted content lives exclusively
// inside the locked render surface and is never addressable as a whole object
// through this type. The payload is bound to its preview session; consumers
// must call Valid before use and reject expired payloads.
type SecurePreviewPayload struct {
	// SessionID is the preview session this payload belongs to.
	SessionID uuid.UUID `json:"session_id"`
	// ExpiresAt is the payload expiry, inherited from the session.
	ExpiresAt time.Time `json:"expires_at"`
	// Kind is the content kind that was rendered.
	Kind ContentKind `json:"kind"`
	// Chunks is the number of chunks decrypted and consumed.
	Chunks int `json:"chunks"`
	// FullyRendered reports whether every unit rendered without a placeholder.
	// A per-unit render failure leaves the preview usable but not fully
	// successful.
	FullyRendered bool `json:"fully_rendered"`
}

// Valid reports whether the payload may still be consumed.
func (p *SecurePreviewPayload) Valid(now time.Time) error {
	if !now.Before(p.ExpiresAt) {
		return ErrPreviewExpired
	}
	return nil
}
