package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-referral/internal/referral/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	accountCachePrefix = "referral:account:code:"
	accountCacheTTL    = 10 * time.Minute
)

// AccountCache caches code-to-account lookups. Get returns nil, nil on a miss;
// cache failures are logged and never surfaced.
type AccountCache interface {
	Get(ctx context.Context, code string) (*domain.Account, error)
	Set(ctx context.Context, acc *domain.Account) error
	Invalidate(ctx context.Context, code string) error
}

var (
	_ AccountCache = (*RedisAccountCache)(nil)
	_ AccountCache = (*noopAccountCache)(nil)
)

type RedisAccountCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisAccountCache returns a no-op cache when rdb is nil.
func NewRedisAccountCache(rdb *redis.Client, logger *zap.Logger) AccountCache {
	if rdb == nil {
		return &noopAccountCache{}
	}
	return &RedisAccountCache{
		rdb:    rdb,
		ttl:    accountCacheTTL,
		logger: logger,
	}
}

type cachedAccount struct {
	Kind         string `json:"kind"`
	ID           string `json:"id"`
	Email        string `json:"email"`
	ReferralCode string `json:"referral_code"`
}

func cacheKey(code string) string {
	return accountCachePrefix + code
}

func (c *RedisAccountCache) Get(ctx context.Context, code string) (*domain.Account, error) {
	data, err := c.rdb.Get(ctx, cacheKey(code)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("failed to get account from cache", zap.String("code", code), zap.Error(err))
		}
		return nil, nil
	}

	var cached cachedAccount
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Warn("failed to unmarshal cached account", zap.String("code", code), zap.Error(err))
		return nil, nil
	}
	kind, err := domain.ParseAccountKind(cached.Kind)
	if err != nil || cached.ReferralCode != code {
		return nil, nil
	}

	return &domain.Account{
		Ref:          domain.AccountRef{Kind: kind, ID: cached.ID, Email: cached.Email},
		ReferralCode: cached.ReferralCode,
	}, nil
}

func (c *RedisAccountCache) Set(ctx context.Context, acc *domain.Account) error {
	if !acc.HasCode() {
		return nil
	}
	data, err := json.Marshal(cachedAccount{
		Kind:         string(acc.Ref.Kind),
		ID:           acc.Ref.ID,
		Email:        acc.Ref.Email,
		ReferralCode: acc.ReferralCode,
	})
	if err != nil {
		return nil
	}

	if err := c.rdb.Set(ctx, cacheKey(acc.ReferralCode), data, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache account", zap.String("code", acc.ReferralCode), zap.Error(err))
	}
	return nil
}

func (c *RedisAccountCache) Invalidate(ctx context.Context, code string) error {
	if err := c.rdb.Del(ctx, cacheKey(code)).Err(); err != nil {
		c.logger.Warn("failed to invalidate account cache", zap.String("code", code), zap.Error(err))
	}
	return nil
}

type noopAccountCache struct{}

func (noopAccountCache) Get(context.Context, string) (*domain.Account, error) { return nil, nil }
func (noopAccountCache) Set(context.Context, *domain.Account) error           { return nil }
func (noopAccountCache) Invalidate(context.Context, string) error             { return nil }
