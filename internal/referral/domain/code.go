package domain

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// Lowercase only: codes are normalized to lower case before every lookup.
	codeAlphabet      = "abcdefghijklmnopqrstuvwxyz0123456789"
	DefaultCodeLength = 8
	MinCodeLength     = 3
	MaxCodeLength     = 32
)

var codeRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)

// NormalizeCode trims and lower-cases a referral code and validates its shape.
func NormalizeCode(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if err := validation.Validate(code,
		validation.Required.Error("referral code is required"),
		validation.Length(MinCodeLength, MaxCodeLength).Error("referral code must be 3-32 characters"),
		validation.Match(codeRegex).Error("referral code must contain only letters, digits, underscores, and hyphens"),
	); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return code, nil
}

// CodeLengthRules bound a configured code length. Zero means the default.
var CodeLengthRules = []validation.Rule{
	validation.Min(MinCodeLength),
	validation.Max(MaxCodeLength),
}

// GenerateCode returns a random candidate code. Uniqueness is not checked here.
func GenerateCode(length int) (string, error) {
	if length == 0 {
		length = DefaultCodeLength
	}
	if err := validation.Validate(length, CodeLengthRules...); err != nil {
		return "", fmt.Errorf("%w: code length %d: %v", ErrInvalidInput, length, err)
	}
	code, err := gonanoid.Generate(codeAlphabet, length)
	if err != nil {
		return "", fmt.Errorf("failed to generate referral code: %w", err)
	}
	return code, nil
}
