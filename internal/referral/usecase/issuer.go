package usecase

import (
	"context"
	"errors"
	"fmt"

	"go-referral/internal/referral/domain"
	"go-referral/internal/referral/domain/event"

	"go.uber.org/zap"
)

// CodeIssuer lazily assigns referral codes. The registry's unique keys
// decide races: a caller whose claim loses re-reads the winner's code.
type CodeIssuer struct {
	resolver *AccountResolver
	registry CodeRegistry
	uow      UnitOfWork
	opts     Options
	logger   *zap.Logger
	generate func(length int) (string, error)
}

func NewCodeIssuer(resolver *AccountResolver, registry CodeRegistry, uow UnitOfWork, opts Options, logger *zap.Logger) *CodeIssuer {
	return &CodeIssuer{
		resolver: resolver,
		registry: registry,
		uow:      uow,
		opts:     opts.withDefaults(),
		logger:   logger,
		generate: domain.GenerateCode,
	}
}

// EnsureCode returns the account's code, issuing one first if it has none.
func (i *CodeIssuer) EnsureCode(ctx context.Context, ref domain.AccountRef) (string, error) {
	acc, err := i.resolver.ResolveByID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return "", err
	}
	if acc.HasCode() {
		return acc.ReferralCode, nil
	}

	code, err := i.registry.FindByAccount(ctx, acc.Ref)
	switch {
	case err == nil:
		// Registered by an earlier call that did not finish persisting.
		return i.persist(ctx, acc, code)
	case !errors.Is(err, domain.ErrNotFound):
		return "", err
	}

	for attempt := 0; attempt < i.opts.CodeMaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}

		candidate, err := i.generate(i.opts.CodeLength)
		if err != nil {
			return "", err
		}

		// Codes assigned before the registry existed live only on account rows.
		_, err = i.resolver.accountByCode(ctx, candidate)
		if err == nil {
			i.logger.Debug("referral code collision", zap.String("code", candidate), zap.Int("attempt", attempt+1))
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return "", err
		}

		claimed, err := i.registry.Claim(ctx, candidate, acc.Ref, i.opts.Now())
		if err != nil {
			return "", err
		}
		if !claimed {
			winner, err := i.registry.FindByAccount(ctx, acc.Ref)
			if err == nil {
				return i.persist(ctx, acc, winner)
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return "", err
			}
			i.logger.Debug("referral code collision", zap.String("code", candidate), zap.Int("attempt", attempt+1))
			continue
		}

		return i.persist(ctx, acc, candidate)
	}

	i.logger.Warn("referral code generation exhausted",
		zap.Stringer("account", acc.Ref),
		zap.Int("attempts", i.opts.CodeMaxAttempts),
	)
	return "", domain.ErrGenerationExhausted
}

// persist writes code onto the account unless it already has one, in which
// case the stored value is authoritative and is returned instead.
func (i *CodeIssuer) persist(ctx context.Context, acc *domain.Account, code string) (string, error) {
	store, err := i.resolver.storeFor(acc.Ref.Kind)
	if err != nil {
		return "", err
	}

	applied := false
	err = i.uow.Do(ctx, func(ctx context.Context) ([]event.Event, error) {
		ok, err := store.SetReferralCode(ctx, acc.Ref.ID, code)
		if err != nil || !ok {
			return nil, err
		}
		applied = true
		return []event.Event{
			event.NewCodeIssued(code, string(acc.Ref.Kind), acc.Ref.ID, i.opts.Now()),
		}, nil
	})
	if err != nil {
		return "", err
	}
	if applied {
		i.logger.Info("referral code issued", zap.String("code", code), zap.Stringer("account", acc.Ref))
		return code, nil
	}

	current, err := store.FindByID(ctx, acc.Ref.ID)
	if err != nil {
		return "", err
	}
	if !current.HasCode() {
		return "", fmt.Errorf("%w: referral code for %s was not persisted", domain.ErrStoreUnavailable, acc.Ref)
	}
	return current.ReferralCode, nil
}
