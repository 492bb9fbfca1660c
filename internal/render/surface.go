// Package render implements the locked render target preview content is
// painted into.
//
// The surface is the only place decrypted preview content accumulates. It
// refuses to export its pixel data once locked, carries an attribution
// watermark, and scrubs its backing buffer with random data on expiry, view
// hide, or cancellation. Disabling export and copy affordances is a
// deterrent, not a cryptographic guarantee; the hard boundary is that no
// caller is ever handed the full plaintext as one addressable object.
package render

import (
	"github.com/google/uuid"

	previewDomain "github.com/allisson/docvault/internal/preview/domain"
)

// PageContext describes the unit being painted.
type PageContext struct {
	// Page is the zero-based unit index within the preview.
	Page int
	// Kind is the content kind being rendered.
	Kind previewDomain.ContentKind
}

// Surface is a paint-only render target.
type Surface interface {
	// RenderChunk paints interpreted content into the unit's band.
	RenderChunk(unit int, content []byte, pageCtx PageContext) error

	// RenderPlaceholder paints a visible placeholder for a unit that failed
	// to render. Never fails; an out-of-range unit is ignored.
	RenderPlaceholder(unit int)

	// Lock binds the surface to a preview session: export operations start
	// returning a fixed placeholder and the watermark is painted across the
	// rendered area.
	Lock(sessionID uuid.UUID, watermark string)

	// Export returns the surface image encoding, or the fixed placeholder
	// once the surface is locked.
	Export() ([]byte, error)

	// Scrub overwrites the backing pixel buffer with random data and
	// releases it. Idempotent.
	Scrub()
}
