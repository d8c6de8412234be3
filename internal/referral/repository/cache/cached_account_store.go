package cache

import (
	"context"

	"go-referral/internal/referral/domain"
	"go-referral/internal/referral/usecase"
)

var _ usecase.AccountStore = (*CachedAccountStore)(nil)

// CachedAccountStore puts AccountCache in front of FindByCode. Codes never
// move between accounts, so an entry stays valid until the account's email
// changes; the TTL bounds that staleness. Lookups by id and email, which feed
// the self-referral guard, always hit the store.
type CachedAccountStore struct {
	usecase.AccountStore
	cache AccountCache
}

func NewCachedAccountStore(store usecase.AccountStore, cache AccountCache) *CachedAccountStore {
	return &CachedAccountStore{AccountStore: store, cache: cache}
}

func (s *CachedAccountStore) FindByCode(ctx context.Context, code string) (*domain.Account, error) {
	if cached, _ := s.cache.Get(ctx, code); cached != nil && cached.Ref.Kind == s.Kind() {
		return cached, nil
	}

	acc, err := s.AccountStore.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, acc)
	return acc, nil
}

func (s *CachedAccountStore) SetReferralCode(ctx context.Context, id, code string) (bool, error) {
	applied, err := s.AccountStore.SetReferralCode(ctx, id, code)
	if err != nil {
		return false, err
	}
	if applied {
		_ = s.cache.Invalidate(ctx, code)
	}
	return applied, nil
}
