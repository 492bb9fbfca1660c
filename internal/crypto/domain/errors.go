package domain

import (
	"github.com/allisson/docvault/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors to
// provide context for cryptographic failures. Per the propagation policy,
// cryptographic failures are never retried and never downgraded: they reach the
// caller as one of these typed errors.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	//
	// Supported algorithms: AESGCM (AES-256-GCM), ChaCha20 (ChaCha20-Poly1305).
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the cryptographic key size is invalid.
	//
	// All keys (master keys and DEKs) must be exactly 32 bytes (256 bits) for
	// both AES-256-GCM and ChaCha20-Poly1305.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrAuthenticationFailed indicates ciphertext failed its authentication check.
	//
	// This can occur due to:
	//   - Wrong decryption key
	//   - Ciphertext, nonce, or tag tampered with
	//   - Ciphertext bound to a different context (AAD mismatch)
	//
	// The specific cause is deliberately not disclosed to avoid giving an
	// attacker an oracle. Callers must treat this as tampering or a wrong key,
	// never as corrupt-but-usable data.
	ErrAuthenticationFailed = errors.Wrap(errors.ErrUnauthorized, "authentication failed")

	// ErrWeakIterations indicates a key-parameter set advertised an iteration
	// count below the accepted floor. The client refuses to weaken derivation.
	ErrWeakIterations = errors.Wrap(errors.ErrInvalidInput, "iteration count below minimum")
)
