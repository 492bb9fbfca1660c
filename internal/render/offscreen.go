package render

import (
	"bytes"
	"crypto/rand"
	"image"
	"image/color"
	"image/png"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/docvault/internal/errors"
)

// lockedPlaceholder is the fixed, non-informative value Export returns once
// the surface is locked.
var lockedPlaceholder = []byte("docvault:surface-locked")

// Surface error definitions.
var (
	// ErrSurfaceScrubbed indicates the surface's backing buffer has been
	// released; the surface cannot be painted or exported again.
	ErrSurfaceScrubbed = errors.New("surface scrubbed")

	// ErrUnitOutOfRange indicates the unit index does not fit the surface.
	ErrUnitOutOfRange = errors.New("render unit out of range")

	// ErrSurfaceNotLocked indicates a host presentation was requested before
	// the surface was locked to a session.
	ErrSurfaceNotLocked = errors.New("surface not locked")
)

// OffscreenSurface is an in-memory Surface backed by an RGBA pixel buffer.
//
// The surface is divided into horizontal bands, one per render unit. Painting
// interprets content bytes into the unit's band; the bytes themselves are not
// retained. Lock and Scrub may be called from lifecycle goroutines while a
// decrypt stream paints, so all access is guarded.
type OffscreenSurface struct {
	mu         sync.Mutex
	img        *image.RGBA
	width      int
	unitHeight int
	units      int

	locked    bool
	sessionID uuid.UUID
	watermark string
	scrubbed  bool
}

// NewOffscreenSurface creates a surface with the given width and capacity for
// units bands of unitHeight pixels each.
func NewOffscreenSurface(width, unitHeight, units int) *OffscreenSurface {
	if width <= 0 {
		width = 640
	}
	if unitHeight <= 0 {
		unitHeight = 32
	}
	if units <= 0 {
		units = 1
	}
	return &OffscreenSurface{
		img:        image.NewRGBA(image.Rect(0, 0, width, unitHeight*units)),
		width:      width,
		unitHeight: unitHeight,
		units:      units,
	}
}

// CopyEnabled reports whether copy/drag affordances are available. They are
// disabled for good once the surface is locked to a session.
func (s *OffscreenSurface) CopyEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.locked
}

// Locked reports whether the surface has been locked.
func (s *OffscreenSurface) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Scrubbed reports whether the backing buffer has been released.
func (s *OffscreenSurface) Scrubbed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrubbed
}

// RenderChunk paints the content bytes into the unit's band.
func (s *OffscreenSurface) RenderChunk(unit int, content []byte, pageCtx PageContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scrubbed {
		return ErrSurfaceScrubbed
	}
	if unit < 0 || unit >= s.units {
		return errors.Wrapf(ErrUnitOutOfRange, "unit %d of %d", unit, s.units)
	}

	s.paintBand(unit, func(x, y int) color.RGBA {
		if len(content) == 0 {
			return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
		}
		v := content[(y*s.width+x)%len(content)]
		return color.RGBA{R: v, G: v, B: v, A: 0xff}
	})
	return nil
}

// RenderPlaceholder paints a hatched placeholder band for a failed unit.
func (s *OffscreenSurface) RenderPlaceholder(unit int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scrubbed || unit < 0 || unit >= s.units {
		return
	}

	s.paintBand(unit, func(x, y int) color.RGBA {
		if (x+y)%8 < 4 {
			return color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
		}
		return color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
	})
}

// Lock binds the surface to a session and paints the watermark overlay.
func (s *OffscreenSurface) Lock(sessionID uuid.UUID, watermark string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scrubbed || s.locked {
		return
	}
	s.locked = true
	s.sessionID = sessionID
	s.watermark = watermark
	s.paintWatermark()
}

// Export returns the PNG encoding of the surface, or the fixed placeholder
// once the surface is locked.
func (s *OffscreenSurface) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scrubbed {
		return nil, ErrSurfaceScrubbed
	}
	if s.locked {
		return append([]byte(nil), lockedPlaceholder...), nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, s.img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Present returns the PNG encoding of the locked surface for the hosting
// view. The surface must be locked first: pixels leave the surface only with
// the session watermark painted over them.
func (s *OffscreenSurface) Present() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scrubbed {
		return nil, ErrSurfaceScrubbed
	}
	if !s.locked {
		return nil, ErrSurfaceNotLocked
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, s.img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Scrub overwrites the backing pixels with random data and releases the
// buffer. Idempotent; safe from lifecycle goroutines.
func (s *OffscreenSurface) Scrub() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scrubbed {
		return
	}
	_, _ = rand.Read(s.img.Pix)
	s.img = nil
	s.scrubbed = true
}

// ViewHidden is the lifecycle edge for the hosting view becoming hidden or
// backgrounded; it scrubs immediately rather than waiting for expiry.
func (s *OffscreenSurface) ViewHidden() {
	s.Scrub()
}

// ScheduleScrub arranges a scrub when expiry is reached. Returns a timer the
// caller stops if the surface is scrubbed earlier through another edge.
func ScheduleScrub(surface Surface, expiry time.Time, now func() time.Time) *time.Timer {
	if now == nil {
		now = time.Now
	}
	return time.AfterFunc(expiry.Sub(now()), surface.Scrub)
}

// paintBand fills the unit's rows from a per-pixel color function.
// Caller holds the lock.
func (s *OffscreenSurface) paintBand(unit int, at func(x, y int) color.RGBA) {
	top := unit * s.unitHeight
	for y := top; y < top+s.unitHeight; y++ {
		for x := 0; x < s.width; x++ {
			s.img.SetRGBA(x, y, at(x, y-top))
		}
	}
}

// paintWatermark overlays a low-opacity diagonal pattern derived from the
// watermark text across the whole surface. An empty watermark falls back to
// the bound session ID so a locked surface always carries a mark.
// Caller holds the lock.
func (s *OffscreenSurface) paintWatermark() {
	text := []byte(s.watermark)
	if len(text) == 0 {
		text = []byte(s.sessionID.String())
	}

	bounds := s.img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 4 {
		for x := bounds.Min.X; x < bounds.Max.X; x += 4 {
			v := text[(x/4+y/4)%len(text)]
			base := s.img.RGBAAt(x, y)
			// Blend at roughly 12% opacity so the mark is visible but does
			// not obscure content.
			base.R = blend(base.R, v)
			base.G = blend(base.G, v)
			base.B = blend(base.B, v)
			s.img.SetRGBA(x, y, base)
		}
	}
}

func blend(base, mark uint8) uint8 {
	return uint8((uint16(base)*7 + uint16(mark)) / 8)
}
