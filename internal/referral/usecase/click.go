package usecase

import (
	"context"
	"fmt"
	"strings"

	"go-referral/internal/referral/domain"
	"go-referral/internal/referral/domain/event"

	"go.uber.org/zap"
)

// ClickRecorder writes at most one clicked event per (ip hash, code) per
// dedup window.
type ClickRecorder struct {
	resolver *AccountResolver
	ledger   EventLedger
	uow      UnitOfWork
	opts     Options
	logger   *zap.Logger
}

func NewClickRecorder(resolver *AccountResolver, ledger EventLedger, uow UnitOfWork, opts Options, logger *zap.Logger) *ClickRecorder {
	return &ClickRecorder{
		resolver: resolver,
		ledger:   ledger,
		uow:      uow,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// TrackClick records a click and never reports failure.
func (c *ClickRecorder) TrackClick(ctx context.Context, code, clientIP string) {
	acknowledge(ctx, c.logger, "track_click", c.opts.OperationTimeout, func(ctx context.Context) (Outcome, error) {
		return c.AttemptClick(ctx, code, clientIP)
	}, zap.String("code", code))
}

// AttemptClick runs the click algorithm and reports what happened.
func (c *ClickRecorder) AttemptClick(ctx context.Context, code, clientIP string) (Outcome, error) {
	normalized, err := domain.NormalizeCode(code)
	if err != nil {
		return OutcomeInvalidInput, err
	}
	clientIP = strings.TrimSpace(clientIP)
	if clientIP == "" {
		return OutcomeInvalidInput, fmt.Errorf("%w: client ip is required", domain.ErrInvalidInput)
	}

	referrer, err := c.resolver.accountByCode(ctx, normalized)
	if err != nil {
		return outcomeFor(err), err
	}

	now := c.opts.Now().UTC()
	ipHash := domain.HashIP(c.opts.IPHashSalt, clientIP, normalized)

	recent, err := c.ledger.HasRecentClick(ctx, ipHash, now.Add(-c.opts.DedupWindow))
	if err != nil {
		return OutcomeFailed, err
	}
	if recent {
		return OutcomeDuplicate, nil
	}

	inserted := false
	err = c.uow.Do(ctx, func(ctx context.Context) ([]event.Event, error) {
		ev := domain.NewClick(normalized, referrer.Ref, ipHash, now)
		ok, err := c.ledger.InsertClick(ctx, ev, domain.DedupBucket(now, c.opts.DedupWindow))
		if err != nil || !ok {
			return nil, err
		}
		inserted = true
		return []event.Event{
			event.NewReferralClicked(ev.ID, normalized, string(referrer.Ref.Kind), referrer.Ref.ID, now),
		}, nil
	})
	if err != nil {
		return OutcomeFailed, err
	}
	if !inserted {
		return OutcomeDuplicate, nil
	}
	return OutcomeRecorded, nil
}
