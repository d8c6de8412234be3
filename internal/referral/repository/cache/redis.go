package cache

import (
	"context"
	"time"

	"go-referral/internal/conf"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to the configured redis. It returns a nil client
// when no address is configured, which disables caching.
func NewRedisClient(c *conf.Data, logger *zap.Logger) (*redis.Client, func(), error) {
	if c.Redis.Addr == "" {
		logger.Info("redis not configured, account cache disabled")
		return nil, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         c.Redis.Addr,
		Password:     c.Redis.Password,
		DB:           c.Redis.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// The cache is optional; lookups fall through to the database.
		logger.Warn("redis unreachable at startup", zap.String("addr", c.Redis.Addr), zap.Error(err))
	}

	cleanup := func() {
		if err := rdb.Close(); err != nil {
			logger.Error("failed to close redis", zap.Error(err))
		}
	}
	return rdb, cleanup, nil
}
