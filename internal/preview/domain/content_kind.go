// Package domain defines the preview pipeline model: content kinds, the
// preview session state machine, and the session-bound payload handed to
// consumers. Nothing in this package ever holds plaintext.
package domain

import (
	"strings"

	"github.com/allisson/docvault/internal/errors"
)

// ContentKind selects the type-specific processor a preview stream feeds.
type ContentKind string

const (
	// KindPagedDocument renders page-oriented formats such as PDF.
	KindPagedDocument ContentKind = "paged-document"
	// KindRasterImage renders bitmap image formats.
	KindRasterImage ContentKind = "raster-image"
	// KindProtectedText renders plain and structured text.
	KindProtectedText ContentKind = "protected-text"
)

// KindForMIME maps a plaintext MIME type to its preview content kind.
// Returns ErrUnsupportedContentKind for types without a processor.
func KindForMIME(mimeType string) (ContentKind, error) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))

	switch {
	case mimeType == "application/pdf":
		return KindPagedDocument, nil
	case strings.HasPrefix(mimeType, "image/"):
		return KindRasterImage, nil
	case strings.HasPrefix(mimeType, "text/"), mimeType == "application/json":
		return KindProtectedText, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedContentKind, "mime type %q", mimeType)
	}
}
