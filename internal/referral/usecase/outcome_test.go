package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-referral/internal/referral/domain"
	"go-referral/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "recorded", OutcomeRecorded.String())
	assert.Equal(t, "self_referral", OutcomeSelfReferral.String())
	assert.Equal(t, "outcome(99)", Outcome(99).String())
}

func TestOutcome_Wrote(t *testing.T) {
	assert.True(t, OutcomeRecorded.Wrote())
	assert.True(t, OutcomeUpgraded.Wrote())
	assert.True(t, OutcomeOrphan.Wrote())
	assert.False(t, OutcomeDuplicate.Wrote())
	assert.False(t, OutcomeFailed.Wrote())
}

func TestAcknowledge_LogLevelFollowsOutcome(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		err     error
		message string
		level   zapcore.Level
	}{
		{"recorded click", OutcomeRecorded, nil, "referral ledger updated", zapcore.InfoLevel},
		{"orphan conversion", OutcomeOrphan, nil, "referral ledger updated", zapcore.InfoLevel},
		{"duplicate click", OutcomeDuplicate, nil, "referral operation done", zapcore.DebugLevel},
		{"unknown code", OutcomeUnknownCode, domain.ErrNotFound, "referral operation skipped", zapcore.DebugLevel},
		{"store failure", OutcomeFailed, domain.ErrStoreUnavailable, "referral operation failed", zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)

			acknowledge(context.Background(), zap.New(core), "test_op", time.Second, func(context.Context) (Outcome, error) {
				return tt.outcome, tt.err
			})

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.message, entries[0].Message)
			assert.Equal(t, tt.level, entries[0].Level)
			assert.Equal(t, tt.outcome.String(), entries[0].ContextMap()["outcome"])
		})
	}
}

func TestOutcomeFor(t *testing.T) {
	assert.Equal(t, OutcomeInvalidInput, outcomeFor(domain.ErrInvalidInput))
	assert.Equal(t, OutcomeUnknownCode, outcomeFor(domain.ErrNotFound))
	assert.Equal(t, OutcomeSelfReferral, outcomeFor(domain.ErrSelfReferral))
	assert.Equal(t, OutcomeFailed, outcomeFor(domain.ErrStoreUnavailable))
	assert.Equal(t, OutcomeFailed, outcomeFor(errors.New("unexpected")))
}

func newClickRecorderWithMocks(logger *zap.Logger) (*ClickRecorder, *testutil.MockAccountStore, *testutil.MockEventLedger) {
	resolver, profiles, _ := newResolverWithMocks()
	ledger := &testutil.MockEventLedger{}
	sut := NewClickRecorder(resolver, ledger, &testutil.InlineUnitOfWork{}, Options{
		IPHashSalt:       "salt",
		OperationTimeout: 50 * time.Millisecond,
	}, logger)
	return sut, profiles, ledger
}

func TestTrackClick_RecoversPanicAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sut, profiles, ledger := newClickRecorderWithMocks(zap.New(core))
	profiles.On("FindByCode", mock.Anything, "abc123").Return(&domain.Account{Ref: profileRef, ReferralCode: "abc123"}, nil)
	ledger.On("HasRecentClick", mock.Anything, mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("driver bug")
	})

	assert.NotPanics(t, func() {
		sut.TrackClick(context.Background(), "abc123", "1.2.3.4")
	})

	entries := logs.FilterMessage("referral operation panicked").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "track_click", entries[0].ContextMap()["op"])
}

func TestTrackClick_StoreFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sut, profiles, ledger := newClickRecorderWithMocks(zap.New(core))
	profiles.On("FindByCode", mock.Anything, "abc123").Return(&domain.Account{Ref: profileRef, ReferralCode: "abc123"}, nil)
	ledger.On("HasRecentClick", mock.Anything, mock.Anything, mock.Anything).Return(false, domain.ErrStoreUnavailable)

	sut.TrackClick(context.Background(), "abc123", "1.2.3.4")

	entries := logs.FilterMessage("referral operation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "failed", entries[0].ContextMap()["outcome"])
	ledger.AssertNotCalled(t, "InsertClick", mock.Anything, mock.Anything, mock.Anything)
}

func TestTrackClick_AppliesOperationTimeout(t *testing.T) {
	sut, profiles, ledger := newClickRecorderWithMocks(zap.NewNop())
	profiles.On("FindByCode", mock.Anything, "abc123").Return(&domain.Account{Ref: profileRef, ReferralCode: "abc123"}, nil)

	var deadline time.Time
	ledger.On("HasRecentClick", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		deadline, _ = args.Get(0).(context.Context).Deadline()
	}).Return(true, nil)

	start := time.Now()
	sut.TrackClick(context.Background(), "abc123", "1.2.3.4")

	require.False(t, deadline.IsZero())
	assert.WithinDuration(t, start.Add(50*time.Millisecond), deadline, 40*time.Millisecond)
}

func TestAttemptClick_HashesIPWithCode(t *testing.T) {
	sut, profiles, ledger := newClickRecorderWithMocks(zap.NewNop())
	profiles.On("FindByCode", mock.Anything, "abc123").Return(&domain.Account{Ref: profileRef, ReferralCode: "abc123"}, nil)
	wantHash := domain.HashIP("salt", "1.2.3.4", "abc123")
	ledger.On("HasRecentClick", mock.Anything, wantHash, mock.Anything).Return(false, nil)
	ledger.On("InsertClick", mock.Anything, mock.MatchedBy(func(ev *domain.ReferralEvent) bool {
		return ev.IPHash == wantHash && ev.Code == "abc123" && ev.ReferrerID == "p1"
	}), mock.Anything).Return(true, nil)

	outcome, err := sut.AttemptClick(context.Background(), "ABC123", "1.2.3.4")

	require.NoError(t, err)
	assert.Equal(t, OutcomeRecorded, outcome)
	ledger.AssertExpectations(t)
}

func TestAttemptClick_MissingIP(t *testing.T) {
	sut, profiles, _ := newClickRecorderWithMocks(zap.NewNop())

	outcome, err := sut.AttemptClick(context.Background(), "abc123", " ")

	assert.Equal(t, OutcomeInvalidInput, outcome)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	profiles.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
}

func TestAttemptConversion_ReferredLookupFailure(t *testing.T) {
	resolver, profiles, newsletters := newResolverWithMocks()
	ledger := &testutil.MockEventLedger{}
	sut := NewConversionAttributor(resolver, ledger, &testutil.InlineUnitOfWork{}, Options{}, zap.NewNop())

	profiles.On("FindByCode", mock.Anything, "abc123").Return(&domain.Account{Ref: profileRef, ReferralCode: "abc123"}, nil)
	profiles.On("FindByID", mock.Anything, "p1").Return(&domain.Account{Ref: profileRef, ReferralCode: "abc123"}, nil)
	profiles.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, domain.ErrNotFound)
	newsletters.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, domain.ErrStoreUnavailable)

	outcome, err := sut.AttemptConversion(context.Background(), "abc123", "new@example.com")

	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	ledger.AssertNotCalled(t, "ConvertLatestClick", mock.Anything, mock.Anything)
}
