package service

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
)

// masterKeyInfo is the HKDF info label binding derived master keys to their purpose.
const masterKeyInfo = "docvault:master-key:v1"

// KeyDeriverService implements the KeyDeriver interface using PBKDF2-SHA256
// followed by an HKDF-SHA256 expand step.
//
// PBKDF2 stretches the low-entropy user secret into intermediate key material;
// HKDF then binds the result to a purpose label so that keys derived for
// different uses from the same secret can never collide. The derivation is
// fully deterministic, which is what makes password verification against the
// stored validation payload possible without ever transmitting the secret.
type KeyDeriverService struct{}

// NewKeyDeriver creates a new KeyDeriverService.
func NewKeyDeriver() *KeyDeriverService {
	return &KeyDeriverService{}
}

// DeriveKey derives a 32-byte master key from secret using PBKDF2-SHA256 with
// the supplied salt and iteration count, then expands it with HKDF.
//
// The iteration count comes from server-advertised parameters and is never
// weakened by the client: counts below MinPBKDF2Iterations are rejected with
// ErrWeakIterations. The intermediate PBKDF2 output is zeroed before return.
func (k *KeyDeriverService) DeriveKey(secret, salt []byte, iterations int) ([]byte, error) {
	if iterations < cryptoDomain.MinPBKDF2Iterations {
		return nil, cryptoDomain.ErrWeakIterations
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: empty salt", cryptoDomain.ErrInvalidKeySize)
	}

	ikm := pbkdf2.Key(secret, salt, iterations, cryptoDomain.KeySize, sha256.New)
	defer cryptoDomain.Zero(ikm)

	return k.ExpandKey(ikm, masterKeyInfo)
}

// ExpandKey derives a purpose-bound 32-byte subkey from key using HKDF-SHA256
// with the given info label.
func (k *KeyDeriverService) ExpandKey(key []byte, info string) ([]byte, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	r := hkdf.New(sha256.New, key, nil, []byte(info))
	out := make([]byte, cryptoDomain.KeySize)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("HKDF derive: %w", err)
	}
	return out, nil
}
