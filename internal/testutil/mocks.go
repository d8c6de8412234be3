package testutil

import (
	"context"
	"time"

	"go-referral/internal/referral/domain"
	"go-referral/internal/referral/domain/event"

	"github.com/stretchr/testify/mock"
)

// MockAccountStore is a testify mock for one account kind.
type MockAccountStore struct {
	mock.Mock
	kind domain.AccountKind
}

func NewMockAccountStore(kind domain.AccountKind) *MockAccountStore {
	return &MockAccountStore{kind: kind}
}

func (m *MockAccountStore) Kind() domain.AccountKind {
	return m.kind
}

func (m *MockAccountStore) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountStore) FindByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountStore) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountStore) SetReferralCode(ctx context.Context, id, code string) (bool, error) {
	args := m.Called(ctx, id, code)
	return args.Bool(0), args.Error(1)
}

// MockCodeRegistry is a testify mock for the code registry.
type MockCodeRegistry struct {
	mock.Mock
}

func (m *MockCodeRegistry) Claim(ctx context.Context, code string, owner domain.AccountRef, at time.Time) (bool, error) {
	args := m.Called(ctx, code, owner, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockCodeRegistry) FindByAccount(ctx context.Context, owner domain.AccountRef) (string, error) {
	args := m.Called(ctx, owner)
	return args.String(0), args.Error(1)
}

// MockEventLedger is a testify mock for the referral ledger.
type MockEventLedger struct {
	mock.Mock
}

func (m *MockEventLedger) HasRecentClick(ctx context.Context, ipHash string, since time.Time) (bool, error) {
	args := m.Called(ctx, ipHash, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventLedger) InsertClick(ctx context.Context, ev *domain.ReferralEvent, bucket int64) (bool, error) {
	args := m.Called(ctx, ev, bucket)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventLedger) ConvertLatestClick(ctx context.Context, c domain.Conversion) (*domain.ReferralEvent, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferralEvent), args.Error(1)
}

func (m *MockEventLedger) InsertConversion(ctx context.Context, ev *domain.ReferralEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockEventLedger) CountByStatus(ctx context.Context, code string) (map[domain.Status]int64, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.Status]int64), args.Error(1)
}

// InlineUnitOfWork runs fn without a transaction and records emitted events.
type InlineUnitOfWork struct {
	Err    error
	Events []event.Event
}

func (u *InlineUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) ([]event.Event, error)) error {
	if u.Err != nil {
		return u.Err
	}
	events, err := fn(ctx)
	if err != nil {
		return err
	}
	u.Events = append(u.Events, events...)
	return nil
}

// EventNames lists recorded event names in emission order.
func (u *InlineUnitOfWork) EventNames() []string {
	names := make([]string, 0, len(u.Events))
	for _, e := range u.Events {
		names = append(names, e.EventName())
	}
	return names
}
