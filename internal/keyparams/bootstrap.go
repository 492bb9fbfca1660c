package keyparams

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	cryptoService "github.com/allisson/docvault/internal/crypto/service"
)

// validationPrefix is the canonical check-string prefix. The full plaintext is
// predictable and tied to the account, which is what makes the payload usable
// for verifying a derived key without storing anything derived from the secret
// in recoverable form.
const validationPrefix = "docvault:key-check:v1:"

// ValidationPlaintext returns the canonical check string for an account.
func ValidationPlaintext(accountID string) []byte {
	return []byte(validationPrefix + accountID)
}

// Bootstrap generates a fresh parameter set for an account: random salt, the
// requested iteration count, and the validation payload encrypted under the
// key derived from secret. Used by local development tooling; in production
// the parameter service performs the equivalent at account creation.
func Bootstrap(
	deriver cryptoService.KeyDeriver,
	aeadManager cryptoService.AEADManager,
	accountID string,
	secret []byte,
	iterations int,
	alg cryptoDomain.Algorithm,
) (*Params, error) {
	if iterations <= 0 {
		iterations = cryptoDomain.DefaultPBKDF2Iterations
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := deriver.DeriveKey(secret, salt, iterations)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	cipher, err := aeadManager.CreateCipher(key, alg)
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, err := cipher.Encrypt(ValidationPlaintext(accountID), []byte(accountID))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt validation payload: %w", err)
	}

	params := &Params{
		AccountID:            accountID,
		Salt:                 salt,
		Iterations:           iterations,
		KDFAlgorithm:         cryptoDomain.PBKDF2SHA256,
		Algorithm:            alg,
		ValidationCiphertext: ciphertext,
		ValidationNonce:      nonce,
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return params, nil
}
