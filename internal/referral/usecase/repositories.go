package usecase

import (
	"context"
	"time"

	"go-referral/internal/referral/domain"
	"go-referral/internal/referral/domain/event"
)

// AccountStore is the read side of one account kind plus the single write the
// engine performs on it. Lookups return domain.ErrNotFound on a miss.
type AccountStore interface {
	Kind() domain.AccountKind
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByCode(ctx context.Context, code string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// SetReferralCode writes code only if the account has none yet. It
	// reports false when the row already carried a code.
	SetReferralCode(ctx context.Context, id, code string) (bool, error)
}

// ProfileStore is the primary account store.
type ProfileStore AccountStore

// NewsletterStore is the secondary account store.
type NewsletterStore AccountStore

// CodeRegistry owns the shared code namespace across both account kinds.
type CodeRegistry interface {
	// Claim reserves code for the account. It reports false when the code is
	// taken or the account already holds another code.
	Claim(ctx context.Context, code string, owner domain.AccountRef, at time.Time) (bool, error)
	// FindByAccount returns the registered code or domain.ErrNotFound.
	FindByAccount(ctx context.Context, owner domain.AccountRef) (string, error)
}

// EventLedger is the durable referral event store.
type EventLedger interface {
	HasRecentClick(ctx context.Context, ipHash string, since time.Time) (bool, error)
	// InsertClick reports false when a click with the same ip hash already
	// exists in the same dedup bucket.
	InsertClick(ctx context.Context, ev *domain.ReferralEvent, bucket int64) (bool, error)
	// ConvertLatestClick upgrades the most recent unmatched click for the code.
	// It returns nil, nil when no such click exists.
	ConvertLatestClick(ctx context.Context, c domain.Conversion) (*domain.ReferralEvent, error)
	InsertConversion(ctx context.Context, ev *domain.ReferralEvent) error
	CountByStatus(ctx context.Context, code string) (map[domain.Status]int64, error)
}

// UnitOfWork runs fn in one transaction and stores the returned events in
// the outbox before commit.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) ([]event.Event, error)) error
}
