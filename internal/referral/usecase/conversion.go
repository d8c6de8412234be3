package usecase

import (
	"context"
	"errors"
	"time"

	"go-referral/internal/referral/domain"
	"go-referral/internal/referral/domain/event"

	"go.uber.org/zap"
)

// ConversionAttributor links a signup to the latest unmatched click for the
// code, or records a direct conversion when there is none.
type ConversionAttributor struct {
	resolver *AccountResolver
	ledger   EventLedger
	uow      UnitOfWork
	opts     Options
	logger   *zap.Logger
}

func NewConversionAttributor(resolver *AccountResolver, ledger EventLedger, uow UnitOfWork, opts Options, logger *zap.Logger) *ConversionAttributor {
	return &ConversionAttributor{
		resolver: resolver,
		ledger:   ledger,
		uow:      uow,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// RecordConversion records a conversion and never reports failure.
func (a *ConversionAttributor) RecordConversion(ctx context.Context, code, referredEmail string) {
	acknowledge(ctx, a.logger, "record_conversion", a.opts.OperationTimeout, func(ctx context.Context) (Outcome, error) {
		return a.AttemptConversion(ctx, code, referredEmail)
	}, zap.String("code", code))
}

// AttemptConversion runs the conversion algorithm and reports what happened.
func (a *ConversionAttributor) AttemptConversion(ctx context.Context, code, referredEmail string) (Outcome, error) {
	normalizedCode, err := domain.NormalizeCode(code)
	if err != nil {
		return OutcomeInvalidInput, err
	}
	email, err := domain.NormalizeEmail(referredEmail)
	if err != nil {
		return OutcomeInvalidInput, err
	}

	referrer, err := a.resolver.accountByCode(ctx, normalizedCode)
	if err != nil {
		return outcomeFor(err), err
	}

	// The owner's email is read by id from the store, not from the code lookup,
	// so a cached entry cannot hide an email change.
	owner, err := a.resolver.ResolveByID(ctx, referrer.Ref.Kind, referrer.Ref.ID)
	if err != nil {
		return outcomeFor(err), err
	}
	if err := domain.CheckSelfReferral(owner.Ref, email); err != nil {
		return OutcomeSelfReferral, err
	}

	conv := domain.Conversion{
		Code:          normalizedCode,
		ReferredEmail: email,
		ConvertedAt:   a.opts.Now().UTC(),
	}
	referred, err := a.resolver.ResolveByEmail(ctx, email)
	switch {
	case err == nil:
		conv.Referred = &referred
	case !errors.Is(err, domain.ErrNotFound):
		return OutcomeFailed, err
	}

	outcome := OutcomeFailed
	err = a.uow.Do(ctx, func(ctx context.Context) ([]event.Event, error) {
		ev, err := a.ledger.ConvertLatestClick(ctx, conv)
		if err != nil {
			return nil, err
		}
		outcome = OutcomeUpgraded
		if ev == nil {
			ev = domain.NewDirectConversion(owner.Ref, conv)
			if err := a.ledger.InsertConversion(ctx, ev); err != nil {
				return nil, err
			}
			outcome = OutcomeOrphan
		}
		return []event.Event{convertedEvent(ev, conv)}, nil
	})
	if err != nil {
		return OutcomeFailed, err
	}
	return outcome, nil
}

func convertedEvent(ev *domain.ReferralEvent, conv domain.Conversion) event.ReferralConverted {
	var clickToConvert time.Duration
	if ev.ClickedAt != nil {
		clickToConvert = conv.ConvertedAt.Sub(*ev.ClickedAt)
	}
	return event.NewReferralConverted(
		ev.ID, ev.Code, string(ev.ReferrerKind), ev.ReferrerID,
		ev.ReferredEmail, string(ev.ReferredKind), ev.ReferredID,
		ev.ClickedAt != nil, clickToConvert, conv.ConvertedAt,
	)
}
