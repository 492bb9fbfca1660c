package domain

import (
	"time"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
)

// SessionSnapshot is the encrypted, volatile representation of an unlock
// session used to survive a process reload without re-prompting for the secret.
//
// WrappedKeyMaterial is the master key plus its derivation metadata, encrypted
// under an ephemeral snapshot key that never leaves the hosting tab. Integrity
// is provided by the AEAD tag inside WrappedKeyMaterial; the plaintext fields
// below are bound into the AAD, so editing them in storage breaks the
// integrity check and the restore fails closed.
type SessionSnapshot struct {
	WrappedKeyMaterial []byte                 `json:"wrapped_key_material"`
	Nonce              []byte                 `json:"nonce"`
	Algorithm          cryptoDomain.Algorithm `json:"algorithm"`
	ExpiresAt          time.Time              `json:"expires_at"`
}
