package main

import (
	"context"
	"flag"
	"os"

	"go-referral/internal/conf"
	"go-referral/internal/infra/eventbus"
	"go-referral/internal/logging"
	"go-referral/internal/referral/usecase"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/env"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/grpc"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	_ "github.com/go-kratos/kratos/v2/encoding/yaml"
	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name = "referral-service"
	// Version is the version of the compiled software.
	Version string
	// flagconf is the config flag.
	flagconf string

	id, _ = os.Hostname()
)

const envPrefix = "REFERRAL_"

func init() {
	flag.StringVar(&flagconf, "conf", "../../configs", "config path, eg: -conf config.yaml")
}

func newApp(
	logger log.Logger,
	zl *zap.Logger,
	gs *grpc.Server,
	hs *http.Server,
	eventBus *eventbus.EventBus,
	router *eventbus.Router,
	forwarder *eventbus.Forwarder,
) *kratos.App {
	usecase.RegisterEventHandlers(router, zl)

	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(
			gs,
			hs,
		),
		kratos.BeforeStart(func(ctx context.Context) error {
			if err := forwarder.Start(ctx); err != nil {
				return err
			}
			go func() {
				if err := router.Run(ctx); err != nil {
					zl.Error("event router stopped", zap.Error(err))
				}
			}()
			return nil
		}),
		kratos.BeforeStop(func(ctx context.Context) error {
			if err := forwarder.Stop(); err != nil {
				zl.Error("failed to stop outbox forwarder", zap.Error(err))
			}
			if err := router.Close(); err != nil {
				zl.Error("failed to close event router", zap.Error(err))
			}
			if err := eventBus.Close(); err != nil {
				zl.Error("failed to close event bus", zap.Error(err))
			}
			return nil
		}),
	)
}

func loadConfig(path string) (*conf.Bootstrap, error) {
	c := config.New(
		config.WithSource(
			env.NewSource(envPrefix),
			file.NewSource(path),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		return nil, err
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		return nil, err
	}
	return &bc, nil
}

func main() {
	flag.Parse()

	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	bc, err := loadConfig(flagconf)
	if err != nil {
		panic(err)
	}

	zl, err := logging.NewLogger(&bc.Log)
	if err != nil {
		panic(err)
	}
	defer zl.Sync()

	zl = zl.With(
		zap.String("service.id", id),
		zap.String("service.name", Name),
		zap.String("service.version", Version),
	)
	logger := logging.NewKratosLogger(zl)

	app, cleanup, err := wireApp(&bc.Server, &bc.Data, &bc.Referral, &bc.Auth, zl, logger)
	if err != nil {
		zl.Fatal("failed to assemble application", zap.Error(err))
	}
	defer cleanup()

	// start and wait for stop signal
	if err := app.Run(); err != nil {
		zl.Error("application stopped with error", zap.Error(err))
	}
}
