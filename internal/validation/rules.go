// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/docvault/internal/errors"
)

var (
	// accountIDRegex constrains account identifiers to a safe, predictable
	// shape: they are bound into AEAD associated data and used as storage keys.
	accountIDRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{1,62}[a-z0-9]$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// SecretStrength validates an unlock secret meets minimum requirements.
// Applied when a secret is first chosen (key-parameter bootstrap), never on
// unlock: unlock failures must stay uniform.
type SecretStrength struct {
	MinLength     int
	RequireLetter bool
	RequireNumber bool
}

// Validate checks if the secret meets the configured requirements
func (s SecretStrength) Validate(value interface{}) error {
	secret, ok := value.(string)
	if !ok {
		return validation.NewError("validation_secret_strength", "secret must be a string")
	}

	if len(secret) < s.MinLength {
		return validation.NewError("validation_secret_min_length", "secret is too short")
	}

	if s.RequireLetter && !hasLetter(secret) {
		return validation.NewError("validation_secret_letter", "secret must contain at least one letter")
	}

	if s.RequireNumber && !hasNumber(secret) {
		return validation.NewError("validation_secret_number", "secret must contain at least one number")
	}

	return nil
}

// hasLetter checks if string contains letters
func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// hasNumber checks if string contains numbers
func hasNumber(s string) bool {
	for _, r := range s {
		if unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// AccountID validates account identifier format
var AccountID = validation.NewStringRuleWithError(
	func(s string) bool {
		return accountIDRegex.MatchString(s)
	},
	validation.NewError(
		"validation_account_id",
		"must be 3-64 lowercase letters, digits, dots, dashes, or underscores",
	),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
