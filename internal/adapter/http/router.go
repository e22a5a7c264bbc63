package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/goppob/internal/adapter/http/handler"
	"github.com/iho/goppob/internal/adapter/http/middleware"
	"github.com/iho/goppob/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	MembershipHandler  *handler.MembershipHandler
	CatalogHandler     *handler.CatalogHandler
	LedgerHandler      *handler.LedgerHandler
	ConsistencyHandler *handler.ConsistencyHandler
	HealthHandler      *handler.HealthHandler

	TokenVerifier middleware.TokenVerifier
	Logger        zerolog.Logger

	// Optional
	IdempotencyStore    usecase.IdempotencyStore
	IdempotencyTTL      time.Duration
	IdempotencyObserver middleware.IdempotencyObserver
	RateLimiter         *middleware.RateLimiter
	MetricsGatherer     prometheus.Gatherer
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	gatherer := cfg.MetricsGatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/api/v1/ledger/consistency", cfg.ConsistencyHandler.CheckConsistency)

	// Public membership and information
	r.Post("/registration", cfg.MembershipHandler.Register)
	r.Post("/register", cfg.MembershipHandler.Register)
	r.Post("/login", cfg.MembershipHandler.Login)
	r.Get("/banner", cfg.CatalogHandler.Banners)

	// Member endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))

		r.Get("/profile", cfg.MembershipHandler.Profile)
		r.Put("/profile/update", cfg.MembershipHandler.UpdateProfile)

		r.Get("/services", cfg.CatalogHandler.Services)
		r.Get("/service", cfg.CatalogHandler.Services)

		r.Get("/balance", cfg.LedgerHandler.Balance)
		r.Get("/getBalance", cfg.LedgerHandler.Balance)
		r.Get("/transaction/history", cfg.LedgerHandler.History)

		r.Group(func(r chi.Router) {
			// Idempotency keys are scoped to the member, so this runs after auth.
			if cfg.IdempotencyStore != nil {
				idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.IdempotencyObserver)
				r.Use(idempotency.Wrap)
			}

			r.Post("/topup", cfg.LedgerHandler.TopUp)
			r.Post("/transaction", cfg.LedgerHandler.Pay)
		})
	})

	return r
}
