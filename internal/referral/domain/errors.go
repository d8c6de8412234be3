package domain

import "errors"

var (
	// ErrInvalidInput is returned for a missing or malformed code or email, before any lookup.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned for an unknown code or account.
	ErrNotFound = errors.New("not found")
	// ErrSelfReferral is returned when a code's owner converts on their own code.
	ErrSelfReferral = errors.New("self-referral is not allowed")
	// ErrGenerationExhausted is returned when no unique code could be produced; retryable.
	ErrGenerationExhausted = errors.New("referral code generation failed after max attempts")
	// ErrStoreUnavailable wraps any durable-store failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)
