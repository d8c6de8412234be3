package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-referral/internal/referral/domain"
)

// AccountResolver translates a code or an email into an account reference
// by checking the profile store first and the newsletter store second.
type AccountResolver struct {
	stores []AccountStore
}

func NewAccountResolver(profiles ProfileStore, newsletters NewsletterStore) *AccountResolver {
	return &AccountResolver{stores: []AccountStore{profiles, newsletters}}
}

// ResolveByCode normalizes code and returns its owner.
func (r *AccountResolver) ResolveByCode(ctx context.Context, code string) (domain.AccountRef, error) {
	normalized, err := domain.NormalizeCode(code)
	if err != nil {
		return domain.AccountRef{}, err
	}
	acc, err := r.accountByCode(ctx, normalized)
	if err != nil {
		return domain.AccountRef{}, err
	}
	return acc.Ref, nil
}

// ResolveByEmail normalizes email and returns the matching account.
func (r *AccountResolver) ResolveByEmail(ctx context.Context, email string) (domain.AccountRef, error) {
	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		return domain.AccountRef{}, err
	}
	acc, err := r.first(ctx, func(s AccountStore) (*domain.Account, error) {
		return s.FindByEmail(ctx, normalized)
	})
	if err != nil {
		return domain.AccountRef{}, err
	}
	return acc.Ref, nil
}

// Resolve accepts either form; anything containing "@" is treated as an email.
func (r *AccountResolver) Resolve(ctx context.Context, codeOrEmail string) (domain.AccountRef, error) {
	if strings.Contains(codeOrEmail, "@") {
		return r.ResolveByEmail(ctx, codeOrEmail)
	}
	return r.ResolveByCode(ctx, codeOrEmail)
}

// ResolveByID loads the account from the store of its kind.
func (r *AccountResolver) ResolveByID(ctx context.Context, kind domain.AccountKind, id string) (*domain.Account, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: account id is required", domain.ErrInvalidInput)
	}
	store, err := r.storeFor(kind)
	if err != nil {
		return nil, err
	}
	return store.FindByID(ctx, id)
}

// accountByCode expects an already normalized code.
func (r *AccountResolver) accountByCode(ctx context.Context, code string) (*domain.Account, error) {
	return r.first(ctx, func(s AccountStore) (*domain.Account, error) {
		return s.FindByCode(ctx, code)
	})
}

func (r *AccountResolver) storeFor(kind domain.AccountKind) (AccountStore, error) {
	for _, s := range r.stores {
		if s.Kind() == kind {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown account kind %q", domain.ErrInvalidInput, kind)
}

func (r *AccountResolver) first(ctx context.Context, find func(AccountStore) (*domain.Account, error)) (*domain.Account, error) {
	for _, s := range r.stores {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		acc, err := find(s)
		if err == nil {
			return acc, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return nil, domain.ErrNotFound
}
