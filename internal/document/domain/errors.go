package domain

import (
	"github.com/allisson/docvault/internal/errors"
)

// Document encryption error definitions.
var (
	// ErrKeyMismatch indicates the document's DEK could not be unwrapped with
	// the current master key: the document was wrapped under a different key,
	// or the wrapped DEK was tampered with.
	ErrKeyMismatch = errors.Wrap(errors.ErrUnauthorized, "wrapped DEK does not match the current master key")
)
