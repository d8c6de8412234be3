package usecase

import "github.com/google/wire"

// ProviderSet is usecase providers.
var ProviderSet = wire.NewSet(
	NewOptions,
	NewAccountResolver,
	NewCodeIssuer,
	NewClickRecorder,
	NewConversionAttributor,
	NewStatsReader,
	NewEngine,
)
