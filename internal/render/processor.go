package render

import (
	"unicode/utf8"

	"github.com/allisson/docvault/internal/errors"
	previewDomain "github.com/allisson/docvault/internal/preview/domain"
)

// Processor feeds decrypted preview chunks into a Surface, one render unit per
// chunk. A unit that fails to interpret or paint gets a placeholder and the
// stream continues; the preview is then not marked fully rendered. The chunk
// bytes are painted immediately and never retained.
type Processor struct {
	surface      Surface
	kind         previewDomain.ContentKind
	units        int
	placeholders int
}

// NewProcessor creates a chunk processor for the given content kind.
func NewProcessor(kind previewDomain.ContentKind, surface Surface) *Processor {
	return &Processor{surface: surface, kind: kind}
}

// ProcessChunk interprets and paints one chunk. Per-unit render problems are
// absorbed as placeholders; only a scrubbed surface aborts the stream.
func (p *Processor) ProcessChunk(index int, chunk []byte) error {
	pageCtx := PageContext{Page: index, Kind: p.kind}

	if err := p.interpret(chunk); err != nil {
		p.surface.RenderPlaceholder(index)
		p.placeholders++
		p.units++
		return nil
	}

	if err := p.surface.RenderChunk(index, chunk, pageCtx); err != nil {
		if errors.Is(err, ErrSurfaceScrubbed) {
			return err
		}
		p.surface.RenderPlaceholder(index)
		p.placeholders++
		p.units++
		return nil
	}

	p.units++
	return nil
}

// Scrub releases the surface's backing buffer.
func (p *Processor) Scrub() {
	p.surface.Scrub()
}

// FullyRendered reports whether every unit painted without a placeholder.
func (p *Processor) FullyRendered() bool {
	return p.placeholders == 0
}

// Units returns the number of units processed so far.
func (p *Processor) Units() int {
	return p.units
}

// interpret validates a chunk for the processor's content kind before it is
// painted. Interpretation is chunk-local: no bytes are carried between calls.
func (p *Processor) interpret(chunk []byte) error {
	switch p.kind {
	case previewDomain.KindProtectedText:
		if !utf8.Valid(chunk) {
			return previewDomain.ErrUnsupportedContentKind
		}
		return nil
	case previewDomain.KindPagedDocument, previewDomain.KindRasterImage:
		return nil
	default:
		return previewDomain.ErrUnsupportedContentKind
	}
}
