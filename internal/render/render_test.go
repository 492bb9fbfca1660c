package render

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	previewDomain "github.com/allisson/docvault/internal/preview/domain"
)

func TestOffscreenSurface_PaintAndExport(t *testing.T) {
	surface := NewOffscreenSurface(64, 16, 4)

	require.NoError(t, surface.RenderChunk(0, []byte("first band"), PageContext{Page: 0, Kind: previewDomain.KindProtectedText}))
	require.NoError(t, surface.RenderChunk(1, []byte("second band"), PageContext{Page: 1, Kind: previewDomain.KindProtectedText}))

	exported, err := surface.Export()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(exported, []byte("\x89PNG")))

	t.Run("unit out of range", func(t *testing.T) {
		err := surface.RenderChunk(4, []byte("x"), PageContext{Page: 4})
		assert.ErrorIs(t, err, ErrUnitOutOfRange)
	})
}

func TestOffscreenSurface_Lock(t *testing.T) {
	surface := NewOffscreenSurface(64, 16, 2)
	require.NoError(t, surface.RenderChunk(0, []byte("content"), PageContext{}))

	assert.True(t, surface.CopyEnabled())

	sessionID := uuid.Must(uuid.NewV7())
	surface.Lock(sessionID, "preview abc 2026")

	t.Run("export returns the fixed placeholder", func(t *testing.T) {
		exported, err := surface.Export()
		require.NoError(t, err)
		assert.Equal(t, lockedPlaceholder, exported)

		again, err := surface.Export()
		require.NoError(t, err)
		assert.Equal(t, exported, again)
	})

	t.Run("copy affordances are disabled", func(t *testing.T) {
		assert.False(t, surface.CopyEnabled())
		assert.True(t, surface.Locked())
	})

	t.Run("painting still works while locked", func(t *testing.T) {
		assert.NoError(t, surface.RenderChunk(1, []byte("more"), PageContext{Page: 1}))
	})
}

func TestOffscreenSurface_Present(t *testing.T) {
	content := []byte("salary ledger row 1")

	t.Run("refuses before lock", func(t *testing.T) {
		surface := NewOffscreenSurface(64, 16, 1)
		require.NoError(t, surface.RenderChunk(0, content, PageContext{}))

		_, err := surface.Present()
		assert.ErrorIs(t, err, ErrSurfaceNotLocked)
	})

	t.Run("watermark prevents byte recovery from pixels", func(t *testing.T) {
		surface := NewOffscreenSurface(64, 16, 1)
		require.NoError(t, surface.RenderChunk(0, content, PageContext{}))
		surface.Lock(uuid.Must(uuid.NewV7()), "preview abc 2026")

		rendering, err := surface.Present()
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(rendering))
		require.NoError(t, err)

		// The painter stores content[x%len] as the gray value of row zero, so
		// an unwatermarked surface would let this loop recover every byte.
		recovered := make([]byte, len(content))
		for x := range recovered {
			r, _, _, _ := img.At(x, 0).RGBA()
			recovered[x] = byte(r >> 8)
		}
		assert.NotEqual(t, content, recovered)
	})

	t.Run("empty watermark falls back to the session id", func(t *testing.T) {
		surface := NewOffscreenSurface(64, 16, 1)
		require.NoError(t, surface.RenderChunk(0, content, PageContext{}))

		plain, err := surface.Export()
		require.NoError(t, err)

		surface.Lock(uuid.Must(uuid.NewV7()), "")
		marked, err := surface.Present()
		require.NoError(t, err)
		assert.NotEqual(t, plain, marked)
	})

	t.Run("scrubbed surface refuses presentation", func(t *testing.T) {
		surface := NewOffscreenSurface(64, 16, 1)
		surface.Lock(uuid.Must(uuid.NewV7()), "mark")
		surface.Scrub()

		_, err := surface.Present()
		assert.ErrorIs(t, err, ErrSurfaceScrubbed)
	})
}

func TestOffscreenSurface_Scrub(t *testing.T) {
	surface := NewOffscreenSurface(64, 16, 2)
	require.NoError(t, surface.RenderChunk(0, []byte("content"), PageContext{}))

	surface.Scrub()
	assert.True(t, surface.Scrubbed())

	t.Run("scrubbed surface refuses paint and export", func(t *testing.T) {
		assert.ErrorIs(t, surface.RenderChunk(0, []byte("x"), PageContext{}), ErrSurfaceScrubbed)
		_, err := surface.Export()
		assert.ErrorIs(t, err, ErrSurfaceScrubbed)
	})

	t.Run("scrub is idempotent", func(t *testing.T) {
		surface.Scrub()
		assert.True(t, surface.Scrubbed())
	})
}

func TestOffscreenSurface_Lifecycle(t *testing.T) {
	t.Run("hidden view scrubs immediately", func(t *testing.T) {
		surface := NewOffscreenSurface(32, 8, 1)
		surface.ViewHidden()
		assert.True(t, surface.Scrubbed())
	})

	t.Run("scheduled scrub fires at expiry", func(t *testing.T) {
		surface := NewOffscreenSurface(32, 8, 1)
		timer := ScheduleScrub(surface, time.Now().Add(10*time.Millisecond), nil)
		defer timer.Stop()

		assert.Eventually(t, surface.Scrubbed, time.Second, 5*time.Millisecond)
	})

	t.Run("stopped timer does not scrub", func(t *testing.T) {
		surface := NewOffscreenSurface(32, 8, 1)
		timer := ScheduleScrub(surface, time.Now().Add(time.Hour), nil)
		timer.Stop()
		assert.False(t, surface.Scrubbed())
	})
}

func TestProcessor(t *testing.T) {
	t.Run("valid chunks render fully", func(t *testing.T) {
		surface := NewOffscreenSurface(64, 16, 4)
		processor := NewProcessor(previewDomain.KindProtectedText, surface)

		require.NoError(t, processor.ProcessChunk(0, []byte("hello")))
		require.NoError(t, processor.ProcessChunk(1, []byte("world")))
		assert.Equal(t, 2, processor.Units())
		assert.True(t, processor.FullyRendered())
	})

	t.Run("invalid text unit gets a placeholder and does not abort", func(t *testing.T) {
		surface := NewOffscreenSurface(64, 16, 4)
		processor := NewProcessor(previewDomain.KindProtectedText, surface)

		require.NoError(t, processor.ProcessChunk(0, []byte("ok")))
		require.NoError(t, processor.ProcessChunk(1, []byte{0xff, 0xfe}))
		require.NoError(t, processor.ProcessChunk(2, []byte("still ok")))

		assert.Equal(t, 3, processor.Units())
		assert.False(t, processor.FullyRendered())
	})

	t.Run("unit beyond surface capacity gets a placeholder", func(t *testing.T) {
		surface := NewOffscreenSurface(64, 16, 1)
		processor := NewProcessor(previewDomain.KindRasterImage, surface)

		require.NoError(t, processor.ProcessChunk(0, []byte("fits")))
		require.NoError(t, processor.ProcessChunk(1, []byte("does not fit")))
		assert.False(t, processor.FullyRendered())
	})

	t.Run("scrubbed surface aborts the stream", func(t *testing.T) {
		surface := NewOffscreenSurface(64, 16, 2)
		processor := NewProcessor(previewDomain.KindPagedDocument, surface)

		processor.Scrub()
		assert.ErrorIs(t, processor.ProcessChunk(0, []byte("late")), ErrSurfaceScrubbed)
	})
}
