package domain

import "fmt"

// AccountKind tags which account store an account lives in.
type AccountKind string

const (
	AccountKindProfile    AccountKind = "profile"
	AccountKindNewsletter AccountKind = "newsletter"
)

// ParseAccountKind validates a kind received from a caller.
func ParseAccountKind(s string) (AccountKind, error) {
	switch AccountKind(s) {
	case AccountKindProfile, AccountKindNewsletter:
		return AccountKind(s), nil
	default:
		return "", fmt.Errorf("%w: unknown account kind %q", ErrInvalidInput, s)
	}
}

// AccountRef identifies an account across both stores.
type AccountRef struct {
	Kind  AccountKind `json:"kind"`
	ID    string      `json:"id"`
	Email string      `json:"email"`
}

func (r AccountRef) String() string {
	return string(r.Kind) + ":" + r.ID
}

// Account is the slice of an account record the engine reads and writes.
// ReferralCode is empty when no code has been issued yet.
type Account struct {
	Ref          AccountRef
	ReferralCode string
}

// HasCode reports whether a code has already been issued to the account.
func (a *Account) HasCode() bool {
	return a.ReferralCode != ""
}
