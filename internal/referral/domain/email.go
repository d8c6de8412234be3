package domain

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const maxEmailLength = 254

// NormalizeEmail trims and lower-cases an email address and validates its format.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.Validate(email,
		validation.Required.Error("email is required"),
		validation.Length(0, maxEmailLength),
		is.EmailFormat,
	); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return email, nil
}

// SameEmail compares two addresses the way NormalizeEmail would.
func SameEmail(a, b string) bool {
	return a != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// CheckSelfReferral rejects a conversion whose referred email belongs to the referrer.
func CheckSelfReferral(referrer AccountRef, referredEmail string) error {
	if SameEmail(referrer.Email, referredEmail) {
		return ErrSelfReferral
	}
	return nil
}
