package sqlstore_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go-referral/internal/conf"
	"go-referral/internal/database"
	"go-referral/internal/infra/eventbus"
	"go-referral/internal/referral/domain"
	"go-referral/internal/referral/repository/cache"
	"go-referral/internal/referral/repository/sqlstore"
	"go-referral/internal/referral/usecase"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// IntegrationTestSuite runs the engine against real PostgreSQL and Redis.
type IntegrationTestSuite struct {
	suite.Suite
	ctx            context.Context
	pgContainer    *postgres.PostgresContainer
	redisContainer *tcredis.RedisContainer
	db             *database.DB
	closeDB        func()
	redisClient    *redis.Client

	ledger *sqlstore.EventRepository
	engine *usecase.Engine
}

func TestIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	pgContainer, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("referrals"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.pgContainer = pgContainer

	redisContainer, err := tcredis.Run(s.ctx,
		"redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.redisContainer = redisContainer

	pgConnStr, err := pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)
	redisEndpoint, err := redisContainer.Endpoint(s.ctx, "")
	s.Require().NoError(err)

	cfg := &conf.Data{
		Database: conf.Database{Driver: database.DriverPostgres, Source: pgConnStr},
		Redis:    conf.Redis{Addr: redisEndpoint},
	}
	logger := zap.NewNop()

	s.db, s.closeDB, err = sqlstore.NewData(cfg, logger)
	s.Require().NoError(err)
	s.redisClient, _, err = cache.NewRedisClient(cfg, logger)
	s.Require().NoError(err)

	accountCache := cache.NewRedisAccountCache(s.redisClient, logger)
	resolver := usecase.NewAccountResolver(
		cache.ProvideProfileStore(s.db, accountCache),
		cache.ProvideNewsletterStore(s.db, accountCache),
	)
	s.ledger = sqlstore.NewEventRepository(s.db)
	uow := sqlstore.NewUnitOfWork(s.db, eventbus.NewOutboxPublisher(s.db), logger)
	opts := usecase.Options{IPHashSalt: "integration"}

	s.engine = usecase.NewEngine(
		resolver,
		usecase.NewCodeIssuer(resolver, sqlstore.NewCodeRegistry(s.db), uow, opts, logger),
		usecase.NewClickRecorder(resolver, s.ledger, uow, opts, logger),
		usecase.NewConversionAttributor(resolver, s.ledger, uow, opts, logger),
		usecase.NewStatsReader(resolver, s.ledger),
	)
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.closeDB != nil {
		s.closeDB()
	}
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	if s.pgContainer != nil {
		s.pgContainer.Terminate(s.ctx)
	}
	if s.redisContainer != nil {
		s.redisContainer.Terminate(s.ctx)
	}
}

func (s *IntegrationTestSuite) SetupTest() {
	for _, table := range []string{"referral_events", "referral_codes", "outbox_messages", "profiles", "newsletter_subscribers"} {
		_, err := s.db.ExecContext(s.ctx, "DELETE FROM "+table)
		s.Require().NoError(err)
	}
	s.Require().NoError(s.redisClient.FlushAll(s.ctx).Err())

	s.seed("profiles", "created_at", "p1", "owner@example.com")
	s.seed("newsletter_subscribers", "subscribed_at", "n1", "reader@example.com")
}

func (s *IntegrationTestSuite) seed(table, timeColumn, id, email string) {
	_, err := s.db.ExecContext(s.ctx,
		s.db.Rebind(fmt.Sprintf("INSERT INTO %s (id, email, %s) VALUES (?, ?, ?)", table, timeColumn)),
		id, email, time.Now().UnixMilli(),
	)
	s.Require().NoError(err)
}

func (s *IntegrationTestSuite) TestFullReferralFlow() {
	code, err := s.engine.IssueCode(s.ctx, domain.AccountRef{Kind: domain.AccountKindProfile, ID: "p1"})
	s.Require().NoError(err)

	s.engine.TrackClick(s.ctx, code, "10.0.0.1")
	s.engine.TrackClick(s.ctx, code, "10.0.0.1")
	s.engine.TrackClick(s.ctx, code, "10.0.0.2")
	s.engine.RecordConversion(s.ctx, code, "reader@example.com")
	s.engine.RecordConversion(s.ctx, code, "owner@example.com")

	stats, err := s.engine.Stats(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(int64(1), stats.Clicked)
	s.Equal(int64(1), stats.Converted)
	s.Equal(int64(2), stats.Total)

	events, err := s.ledger.ListByCode(s.ctx, code)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	converted := events[1]
	s.Equal(domain.StatusConverted, converted.Status)
	s.Equal(domain.AccountKindNewsletter, converted.ReferredKind)
	s.Equal("n1", converted.ReferredID)
	s.NotNil(converted.ClickedAt)
}

func (s *IntegrationTestSuite) TestIssueCode_ConcurrentCallersAgree() {
	ref := domain.AccountRef{Kind: domain.AccountKindNewsletter, ID: "n1"}

	const callers = 10
	codes := make([]string, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i], errs[i] = s.engine.IssueCode(s.ctx, ref)
		}()
	}
	wg.Wait()

	for i := range callers {
		s.Require().NoError(errs[i])
		s.Equal(codes[0], codes[i])
	}

	var registered int
	s.Require().NoError(s.db.QueryRowContext(s.ctx, "SELECT COUNT(*) FROM referral_codes").Scan(&registered))
	s.Equal(1, registered)
}

func (s *IntegrationTestSuite) TestTrackClick_ConcurrentDuplicatesKeepOneRow() {
	code, err := s.engine.IssueCode(s.ctx, domain.AccountRef{Kind: domain.AccountKindProfile, ID: "p1"})
	s.Require().NoError(err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.engine.TrackClick(s.ctx, code, "10.0.0.9")
		}()
	}
	wg.Wait()

	events, err := s.ledger.ListByCode(s.ctx, code)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *IntegrationTestSuite) TestResolve_PopulatesRedisCache() {
	code, err := s.engine.IssueCode(s.ctx, domain.AccountRef{Kind: domain.AccountKindProfile, ID: "p1"})
	s.Require().NoError(err)

	ref, err := s.engine.Resolve(s.ctx, code)
	s.Require().NoError(err)
	s.Equal("p1", ref.ID)

	keys, err := s.redisClient.Keys(s.ctx, "referral:account:code:*").Result()
	s.Require().NoError(err)
	s.Contains(keys, "referral:account:code:"+code)

	// Served from the cache once the row is gone.
	_, err = s.db.ExecContext(s.ctx, s.db.Rebind("DELETE FROM profiles WHERE id = ?"), "p1")
	s.Require().NoError(err)
	ref, err = s.engine.Resolve(s.ctx, code)
	s.Require().NoError(err)
	s.Equal("p1", ref.ID)
}
