package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/goppob/internal/adapter/http"
	"github.com/iho/goppob/internal/adapter/http/handler"
	"github.com/iho/goppob/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/goppob/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/goppob/internal/adapter/repository/redis"
	"github.com/iho/goppob/internal/infrastructure/auth"
	"github.com/iho/goppob/internal/infrastructure/config"
	"github.com/iho/goppob/internal/infrastructure/eventpublisher"
	"github.com/iho/goppob/internal/infrastructure/logger"
	"github.com/iho/goppob/internal/infrastructure/metrics"
	"github.com/iho/goppob/internal/infrastructure/postgres"
	"github.com/iho/goppob/internal/infrastructure/redis"
	"github.com/iho/goppob/internal/usecase"
)

const rateLimiterIdle = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	l := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.SetGlobal(l)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, l zerolog.Logger) error {
	loc, err := cfg.InvoiceLocation()
	if err != nil {
		return err
	}

	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		l.Info().Msg("migrations applied")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:      cfg.DatabaseURL,
		MaxConns:         cfg.DatabaseMaxConns,
		MinConns:         cfg.DatabaseMinConns,
		LockTimeout:      cfg.DatabaseLockTimeout,
		StatementTimeout: cfg.DatabaseStatementTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	l.Info().Msg("connected to postgres")

	// Redis is optional; without it idempotency keys are ignored.
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		l.Info().Msg("connected to redis")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier(
		postgresRepo.WithMaxRetries(cfg.LedgerMaxRetries),
		postgresRepo.WithRetryLogger(l),
		postgresRepo.WithRetryObserver(m),
	)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	serviceRepo := postgresRepo.NewServiceRepository(pool)
	bannerRepo := postgresRepo.NewBannerRepository(pool)
	historyRepo := postgresRepo.NewHistoryRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	var outboxRepo usecase.OutboxRepository = postgresRepo.NewNullOutboxRepository()
	var natsConn *nats.Conn
	if cfg.OutboxEnabled {
		pgOutbox := postgresRepo.NewOutboxRepository(pool)
		outboxRepo = pgOutbox

		publisher, conn, err := newPublisher(cfg.NATSURL, &l)
		if err != nil {
			return err
		}
		if conn != nil {
			natsConn = conn
			defer conn.Close()
			l.Info().Msg("connected to nats")
		}

		worker := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: pgOutbox,
			Publisher:  publisher,
			Observer:   m,
			Logger:     &l,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxPollInterval,
			Retention:  cfg.OutboxRetention,
		})
		go func() {
			if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				l.Error().Err(err).Msg("outbox publisher stopped")
			}
		}()
	}

	// Use cases
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	membershipUC := usecase.NewMembershipUseCase(userRepo, idGen, jwtManager)
	catalogUC := usecase.NewCatalogUseCase(serviceRepo, bannerRepo)
	ledgerUC := usecase.NewLedgerUseCase(
		txManager, retrier, accountRepo, serviceRepo, historyRepo, outboxRepo, idGen,
		usecase.WithInvoiceLocation(loc),
		usecase.WithLedgerMetrics(m),
		usecase.WithTransactionTimeout(cfg.DatabaseTimeout),
	)
	consistencyUC := usecase.NewConsistencyUseCase(ledgerRepo, m)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
	go sweepLimiters(ctx, rateLimiter, rateLimiterIdle)

	routerCfg := httpAdapter.RouterConfig{
		MembershipHandler:   handler.NewMembershipHandler(membershipUC),
		CatalogHandler:      handler.NewCatalogHandler(catalogUC),
		LedgerHandler:       handler.NewLedgerHandler(ledgerUC),
		ConsistencyHandler:  handler.NewConsistencyHandler(consistencyUC),
		HealthHandler:       handler.NewHealthHandler(readinessChecks(pool, redisClient, natsConn)),
		TokenVerifier:       jwtManager,
		Logger:              l,
		IdempotencyTTL:      cfg.IdempotencyTTL,
		IdempotencyObserver: m,
		RateLimiter:         rateLimiter,
		MetricsGatherer:     prometheus.DefaultGatherer,
	}
	if redisClient != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	l.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// newPublisher returns a NATS publisher when url is set and a log publisher
// otherwise. The returned connection is nil for the log publisher.
func newPublisher(url string, l *zerolog.Logger) (eventpublisher.Publisher, *nats.Conn, error) {
	if url == "" {
		return eventpublisher.NewLogPublisher(l), nil, nil
	}
	publisher, conn, err := eventpublisher.Connect(url)
	if err != nil {
		return nil, nil, err
	}
	return publisher, conn, nil
}

// readinessChecks builds the readiness probes for the dependencies that are
// configured. Missing dependencies are left out.
func readinessChecks(pool *pgxpool.Pool, redisClient *goredis.Client, natsConn *nats.Conn) map[string]handler.Pinger {
	checks := make(map[string]handler.Pinger)
	if pool != nil {
		checks["postgres"] = pool
	}
	if redisClient != nil {
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	if natsConn != nil {
		checks["nats"] = handler.PingerFunc(func(ctx context.Context) error {
			if !natsConn.IsConnected() {
				return fmt.Errorf("nats status %s", natsConn.Status())
			}
			return nil
		})
	}
	return checks
}

func sweepLimiters(ctx context.Context, rl *middleware.RateLimiter, maxIdle time.Duration) {
	ticker := time.NewTicker(maxIdle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupLimiters(maxIdle)
		}
	}
}
