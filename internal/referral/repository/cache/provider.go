package cache

import (
	"go-referral/internal/database"
	"go-referral/internal/referral/repository/sqlstore"
	"go-referral/internal/referral/usecase"

	"github.com/google/wire"
)

// ProviderSet is the cached account store providers.
var ProviderSet = wire.NewSet(
	NewRedisClient,
	NewRedisAccountCache,
	ProvideProfileStore,
	ProvideNewsletterStore,
)

func ProvideProfileStore(db *database.DB, cache AccountCache) usecase.ProfileStore {
	return NewCachedAccountStore(sqlstore.NewProfileRepository(db), cache)
}

func ProvideNewsletterStore(db *database.DB, cache AccountCache) usecase.NewsletterStore {
	return NewCachedAccountStore(sqlstore.NewNewsletterRepository(db), cache)
}
