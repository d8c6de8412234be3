//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"go-referral/internal/conf"
	"go-referral/internal/infra/eventbus"
	referralhttp "go-referral/internal/referral/delivery/http"
	"go-referral/internal/referral/repository/cache"
	"go-referral/internal/referral/repository/sqlstore"
	"go-referral/internal/referral/usecase"
	"go-referral/internal/server"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"go.uber.org/zap"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Data, *conf.Referral, *conf.Auth, *zap.Logger, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		server.ProviderSet,
		sqlstore.ProviderSet,
		cache.ProviderSet,
		usecase.ProviderSet,
		referralhttp.ProviderSet,
		eventbus.ProviderSet,
		newApp,
	))
}
