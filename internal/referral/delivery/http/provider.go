package http

import (
	"context"
	"time"

	"go-referral/internal/conf"
	"go-referral/internal/database"
	"go-referral/internal/referral/usecase"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// ProviderSet is the HTTP delivery providers.
var ProviderSet = wire.NewSet(ProvideHandler, ProvideServiceAuth, ProvideRateLimiter, NewRouter)

const drainTimeout = 5 * time.Second

// ProvideHandler builds the handler. The cleanup waits for in-flight landing
// clicks, and runs before the database is closed.
func ProvideHandler(engine *usecase.Engine, c *conf.Referral, db *database.DB, logger *zap.Logger) (*Handler, func()) {
	h := NewHandler(engine, c.LandingURL, db, logger.Named("http"))
	return h, func() {
		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := h.Drain(ctx); err != nil {
			logger.Warn("landing clicks still in flight at shutdown", zap.Error(err))
		}
	}
}

func ProvideServiceAuth(c *conf.Auth, logger *zap.Logger) *ServiceAuth {
	if c.ServiceTokenSecret == "" {
		logger.Warn("service token secret not configured, admin endpoints are unauthenticated")
	}
	return NewServiceAuth(c.ServiceTokenSecret, logger.Named("auth"))
}

// ProvideRateLimiter starts the idle-limiter cleanup; the returned cleanup stops it.
func ProvideRateLimiter(c *conf.Server) (*RateLimiter, func()) {
	rl := NewRateLimiter(c.HTTP.RateLimit)
	ctx, cancel := context.WithCancel(context.Background())
	rl.StartCleanup(ctx, 10*time.Minute, time.Hour)
	return rl, cancel
}
