package domain

import (
	"github.com/allisson/docvault/internal/errors"
)

// Session lifecycle error definitions.
var (
	// ErrInvalidSecret indicates the supplied secret failed key-derivation
	// validation. Deliberately uniform: it does not reveal which part of the
	// validation failed, to avoid oracle behavior.
	ErrInvalidSecret = errors.Wrap(errors.ErrUnauthorized, "invalid secret")

	// ErrNoActiveSession indicates an operation required a live master key and
	// none is held.
	ErrNoActiveSession = errors.Wrap(errors.ErrUnauthorized, "no active session")

	// ErrSessionExpired indicates the master key session passed its expiry.
	// The key material has already been scrubbed when this is returned.
	ErrSessionExpired = errors.Wrap(errors.ErrExpired, "session expired")

	// ErrIntegrityCheckFailed indicates the persisted session snapshot is
	// missing required fields, malformed, or failed its integrity check.
	// Restore fails closed; a key is never fabricated.
	ErrIntegrityCheckFailed = errors.Wrap(errors.ErrIntegrity, "session snapshot rejected")

	// ErrTooManyAttempts indicates unlock attempts are being throttled.
	ErrTooManyAttempts = errors.Wrap(errors.ErrUnauthorized, "too many unlock attempts")
)
