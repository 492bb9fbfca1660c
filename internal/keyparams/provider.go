// Package keyparams defines the key-parameter service boundary.
//
// The provider returns, for an authenticated account, the derivation salt,
// iteration count, derivation algorithm, and a validation payload: a value
// computable only from the correct master key. The core never sends the raw
// secret or the derived key across this boundary.
package keyparams

import (
	"context"

	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	appvalidation "github.com/allisson/docvault/internal/validation"
)

// Params holds the server-advertised key derivation parameters for an account.
type Params struct {
	// AccountID identifies the account the parameters belong to.
	AccountID string `json:"account_id"`
	// Salt is the PBKDF2 salt.
	Salt []byte `json:"salt"`
	// Iterations is the PBKDF2 iteration count. The client never honors a
	// count below the accepted floor.
	Iterations int `json:"iterations"`
	// KDFAlgorithm identifies the derivation algorithm.
	KDFAlgorithm cryptoDomain.KDFAlgorithm `json:"kdf_algorithm"`
	// Algorithm is the AEAD algorithm used with keys derived from these parameters.
	Algorithm cryptoDomain.Algorithm `json:"algorithm"`
	// ValidationCiphertext is the canonical check string for this account,
	// encrypted under the correct master key with the account ID as AAD.
	ValidationCiphertext []byte `json:"validation_ciphertext"`
	// ValidationNonce is the nonce for ValidationCiphertext.
	ValidationNonce []byte `json:"validation_nonce"`
}

// Validate checks the parameter set for structural problems before any
// derivation work is attempted.
func (p Params) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.AccountID, validation.Required, appvalidation.AccountID),
		validation.Field(&p.Salt, validation.Required, validation.Length(16, 64)),
		validation.Field(&p.Iterations, validation.Required, validation.Min(cryptoDomain.MinPBKDF2Iterations)),
		validation.Field(&p.KDFAlgorithm, validation.Required, validation.In(cryptoDomain.PBKDF2SHA256)),
		validation.Field(&p.Algorithm, validation.Required, validation.In(cryptoDomain.AESGCM, cryptoDomain.ChaCha20)),
		validation.Field(&p.ValidationCiphertext, validation.Required),
		validation.Field(&p.ValidationNonce, validation.Required, validation.Length(12, 12)),
	)
	if err != nil {
		return appvalidation.WrapValidationError(err)
	}
	return nil
}

// Provider is the consumed key-parameter service boundary.
type Provider interface {
	// Params returns the key derivation parameters for the account.
	Params(ctx context.Context, accountID string) (*Params, error)
}
