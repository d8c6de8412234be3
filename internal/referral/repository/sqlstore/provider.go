package sqlstore

import (
	"go-referral/internal/referral/usecase"

	"github.com/google/wire"
)

// ProviderSet is the SQL persistence providers. Account stores are provided
// by the cache package, which wraps them.
var ProviderSet = wire.NewSet(
	NewData,
	NewCodeRegistry,
	NewEventRepository,
	NewUnitOfWork,
	wire.Bind(new(usecase.EventLedger), new(*EventRepository)),
)
