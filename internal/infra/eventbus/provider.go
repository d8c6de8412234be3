package eventbus

import (
	"go-referral/internal/conf"
	"go-referral/internal/database"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/wire"
)

// ProviderSet is eventbus providers.
var ProviderSet = wire.NewSet(
	NewZapLoggerAdapter,
	NewEventBus,
	NewRouter,
	NewOutboxPublisher,
	ProvideForwarder,
)

// ProvideForwarder creates a Forwarder from the outbox config.
func ProvideForwarder(db *database.DB, eventBus *EventBus, logger watermill.LoggerAdapter, c *conf.Data) *Forwarder {
	return NewForwarder(db, eventBus, logger, c.Outbox.PollInterval.Std(defaultPollInterval), c.Outbox.BatchSize)
}
