package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-referral/internal/referral/domain"

	"go.uber.org/zap"
)

// Outcome is the internal result of a click or conversion attempt. The public
// TrackClick and RecordConversion collapse every outcome into an ack.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	// OutcomeRecorded is a new clicked row.
	OutcomeRecorded
	OutcomeDuplicate
	// OutcomeUpgraded is an existing click moved to converted.
	OutcomeUpgraded
	// OutcomeOrphan is a converted row inserted with no matching click.
	OutcomeOrphan
	OutcomeUnknownCode
	OutcomeInvalidInput
	OutcomeSelfReferral
)

var outcomeNames = map[Outcome]string{
	OutcomeFailed:       "failed",
	OutcomeRecorded:     "recorded",
	OutcomeDuplicate:    "duplicate",
	OutcomeUpgraded:     "upgraded",
	OutcomeOrphan:       "orphan",
	OutcomeUnknownCode:  "unknown_code",
	OutcomeInvalidInput: "invalid_input",
	OutcomeSelfReferral: "self_referral",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Wrote reports whether the ledger changed.
func (o Outcome) Wrote() bool {
	return o == OutcomeRecorded || o == OutcomeUpgraded || o == OutcomeOrphan
}

// outcomeFor classifies an error returned by a step of an attempt.
func outcomeFor(err error) Outcome {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return OutcomeInvalidInput
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeUnknownCode
	case errors.Is(err, domain.ErrSelfReferral):
		return OutcomeSelfReferral
	default:
		return OutcomeFailed
	}
}

// acknowledge is the fire-and-forget boundary. Nothing an attempt does,
// including a panic, reaches the caller except through the log.
func acknowledge(ctx context.Context, logger *zap.Logger, op string, timeout time.Duration, attempt func(ctx context.Context) (Outcome, error), fields ...zap.Field) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			logger.Error("referral operation panicked", append(fields, zap.String("op", op), zap.Any("panic", p))...)
		}
	}()

	outcome, err := attempt(ctx)
	fields = append(fields, zap.String("op", op), zap.Stringer("outcome", outcome))
	switch {
	case outcome == OutcomeFailed:
		logger.Error("referral operation failed", append(fields, zap.Error(err))...)
	case err != nil:
		logger.Debug("referral operation skipped", append(fields, zap.Error(err))...)
	case outcome.Wrote():
		logger.Info("referral ledger updated", fields...)
	default:
		logger.Debug("referral operation done", fields...)
	}
}
