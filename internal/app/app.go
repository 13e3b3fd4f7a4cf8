package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/utafrali/marketplace/internal/auth"
	"github.com/utafrali/marketplace/internal/config"
	"github.com/utafrali/marketplace/internal/event"
	handler "github.com/utafrali/marketplace/internal/handler/http"
	"github.com/utafrali/marketplace/internal/repository"
	"github.com/utafrali/marketplace/internal/repository/memory"
	"github.com/utafrali/marketplace/internal/repository/postgres"
	lookupcache "github.com/utafrali/marketplace/internal/repository/redis"
	"github.com/utafrali/marketplace/internal/service"
	"github.com/utafrali/marketplace/migrations"
	"github.com/utafrali/marketplace/pkg/database"
	"github.com/utafrali/marketplace/pkg/health"
	pkgkafka "github.com/utafrali/marketplace/pkg/kafka"
	"github.com/utafrali/marketplace/pkg/tracing"
)

const serviceName = "marketplace"

// idempotencyTTL bounds how long processed event ids are remembered.
const idempotencyTTL = 24 * time.Hour

// App wires together all dependencies and runs the marketplace service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *goredis.Client
	consumers      []*pkgkafka.Consumer
	dlq            *pkgkafka.DLQProducer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

type repositories struct {
	catalog  repository.CatalogRepository
	lookups  repository.LookupRepository
	shipping repository.ShippingRepository
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx := context.Background()
	a := &App{cfg: cfg, logger: logger}

	tcfg := tracing.DefaultConfig(serviceName)
	tcfg.Environment = cfg.Environment
	tcfg.OTLPEndpoint = cfg.OTELEndpoint
	tcfg.SampleRate = cfg.OTELSampleRate
	tcfg.Enabled = cfg.OTELEnabled
	shutdown, err := tracing.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = shutdown

	healthHandler := health.NewHandler()

	repos, err := a.initStorage(ctx, healthHandler)
	if err != nil {
		return nil, err
	}

	if cfg.LookupCacheEnabled {
		a.initLookupCache(ctx, &repos, healthHandler)
	}

	catalogService := service.NewCatalogService(repos.catalog, repos.lookups, cfg.PageLimits(), logger)
	shippingService := service.NewShippingService(repos.catalog, repos.lookups, repos.shipping, logger)

	// Consumers only invalidate cached lookups, so without the cache there
	// is nothing for them to do.
	if cache, ok := repos.lookups.(*lookupcache.LookupCache); ok && cfg.KafkaConsumersEnabled {
		a.initConsumers(cache, healthHandler)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, 15*time.Minute)

	router := handler.NewRouter(catalogService, shippingService, jwtManager.Actor, healthHandler, handler.RouterConfig{
		ServiceName:    serviceName,
		CORS:           cfg.CORS(),
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		DefaultCountry: cfg.DefaultCountry(),
		Limits:         cfg.PageLimits(),
		RequestTimeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		CacheMaxAge:    cfg.CatalogCacheMaxAgeSeconds,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

func (a *App) initStorage(ctx context.Context, healthHandler *health.Handler) (repositories, error) {
	if a.cfg.StorageBackend == config.StorageMemory {
		repo := memory.Demo()
		a.logger.Info("in-memory storage initialized with demo catalog")
		return repositories{catalog: repo, lookups: repo, shipping: repo}, nil
	}

	pool, err := database.NewPostgresPool(ctx, a.cfg.Postgres(), a.logger)
	if err != nil {
		return repositories{}, fmt.Errorf("init postgres: %w", err)
	}
	a.pool = pool
	a.logger.Info("postgres connection pool established",
		slog.String("host", a.cfg.PostgresHost),
		slog.String("database", a.cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
		pool.Close()
		return repositories{}, fmt.Errorf("run migrations: %w", err)
	}

	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, serviceName); err != nil {
		a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}
	database.SetSlowQueryLogging(time.Duration(a.cfg.SlowQueryThresholdMs)*time.Millisecond, a.logger)

	healthHandler.RegisterCritical("postgres", pool.Ping)

	return repositories{
		catalog:  postgres.NewCatalogRepository(pool),
		lookups:  postgres.NewLookupRepository(pool),
		shipping: postgres.NewShippingRepository(pool),
	}, nil
}

// initLookupCache wraps the lookup repository in the redis read-through
// cache. An unreachable redis at startup leaves lookups uncached.
func (a *App) initLookupCache(ctx context.Context, repos *repositories, healthHandler *health.Handler) {
	client, err := database.NewRedisClient(ctx, a.cfg.Redis())
	if err != nil {
		a.logger.Error("redis unavailable, serving lookups uncached",
			slog.String("addr", a.cfg.Redis().Addr()),
			slog.String("error", err.Error()),
		)
		return
	}
	a.redis = client

	repos.lookups = lookupcache.NewLookupCache(repos.lookups, client, a.cfg.LookupCacheTTL(), a.logger,
		lookupcache.WithNegativeTTL(a.cfg.LookupCacheNegativeTTL()),
	)
	healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	a.logger.Info("lookup cache enabled",
		slog.String("addr", a.cfg.Redis().Addr()),
		slog.Duration("ttl", a.cfg.LookupCacheTTL()),
	)
}

func (a *App) initConsumers(cache *lookupcache.LookupCache, healthHandler *health.Handler) {
	eventConsumer := event.NewConsumer(cache, a.logger)
	idempotency := pkgkafka.NewRedisIdempotencyStore(a.redis, "marketplace:events:", idempotencyTTL)
	handle := pkgkafka.IdempotentHandler(idempotency, a.cfg.KafkaConsumerGroup, eventConsumer.Handle, a.logger)

	a.dlq = pkgkafka.NewDLQProducer(a.cfg.KafkaBrokers, a.logger)

	consumerCfg := pkgkafka.ConsumerConfig{
		Brokers:  a.cfg.KafkaBrokers,
		GroupID:  a.cfg.KafkaConsumerGroup,
		Topics:   event.Topics(),
		MinBytes: 1,
		MaxBytes: 10e6, // 10 MB
	}
	a.consumers = append(a.consumers, pkgkafka.NewConsumer(consumerCfg, handle, a.logger, pkgkafka.WithDeadLetter(a.dlq)))

	brokers := a.cfg.KafkaBrokers
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, brokers)
	})
	a.logger.Info("kafka consumers initialized",
		slog.Any("brokers", brokers),
		slog.Any("topics", consumerCfg.Topics),
	)
}

// Run starts the HTTP server and Kafka consumers, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			a.logger.Error("dlq producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
