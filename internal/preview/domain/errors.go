package domain

import (
	"github.com/allisson/docvault/internal/errors"
)

// Preview pipeline error definitions.
var (
	// ErrUnsupportedContentKind indicates the document's content type has no
	// preview processor.
	ErrUnsupportedContentKind = errors.Wrap(errors.ErrInvalidInput, "unsupported content kind")

	// ErrPreviewExpired indicates a preview session or payload passed its
	// expiry. Consumers must reject expired payloads.
	ErrPreviewExpired = errors.Wrap(errors.ErrExpired, "preview expired")

	// ErrPreviewCancelled indicates the preview was cancelled before the
	// stream completed. Buffers have been scrubbed when this is returned.
	ErrPreviewCancelled = errors.New("preview cancelled")

	// ErrInvalidTransition indicates a preview session state transition that
	// the state machine does not allow.
	ErrInvalidTransition = errors.New("invalid preview state transition")
)
