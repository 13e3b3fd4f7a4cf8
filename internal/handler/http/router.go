package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/marketplace/internal/auth"
	"github.com/utafrali/marketplace/internal/service"
	"github.com/utafrali/marketplace/pkg/health"
	"github.com/utafrali/marketplace/pkg/middleware"
	"github.com/utafrali/marketplace/pkg/pagination"
)

// RouterConfig carries the HTTP-facing settings of the service.
type RouterConfig struct {
	ServiceName    string
	CORS           middleware.CORSConfig
	PprofCIDRs     []string
	DefaultCountry middleware.CountryHint
	Limits         pagination.Limits
	RequestTimeout time.Duration

	// CacheMaxAge is the max-age of catalog and quote responses, in
	// seconds. Zero disables caching.
	CacheMaxAge int

	// Per-IP request rate on /api/v1. Zero RateLimitRPS disables it.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a chi router with all marketplace routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	shippingService *service.ShippingService,
	validateToken middleware.TokenValidator,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	catalogHandler := NewCatalogHandler(catalogService, cfg.Limits, logger)
	shippingHandler := NewShippingHandler(shippingService, logger)
	storeHandler := NewStoreHandler(shippingService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		r.Use(middleware.Authenticate(validateToken, logger))
		r.Use(middleware.Country(cfg.DefaultCountry))
		r.Use(middleware.RequestLogger(logger))

		r.With(middleware.CacheControl(cfg.CacheMaxAge)).
			Get("/products", catalogHandler.ListProducts)

		// Quotes depend on the destination, which may come from the
		// userCountry cookie.
		r.With(middleware.PrivateCacheControl(cfg.CacheMaxAge,
			middleware.CountryCodeHeader, middleware.CountryNameHeader, "Cookie")).
			Get("/products/{slug}/shipping", shippingHandler.Quote)

		r.Route("/seller/stores/{storeUrl}", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(middleware.RequireRole(logger, auth.RoleSeller))

			r.Get("/shipping", storeHandler.GetShipping)
			r.Get("/shipping-rates", storeHandler.ListShippingRates)
		})
	})

	return r
}
