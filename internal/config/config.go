package config

import (
	"errors"
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/marketplace/pkg/config"
	"github.com/utafrali/marketplace/pkg/database"
	"github.com/utafrali/marketplace/pkg/middleware"
	"github.com/utafrali/marketplace/pkg/pagination"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all configuration for the marketplace service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort              int `env:"MARKETPLACE_HTTP_PORT" envDefault:"8080"`
	RequestTimeoutSeconds int `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`

	// "memory" serves the built-in demo catalog without a database.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"postgres"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"marketplace"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"marketplace_secret"`
	PostgresDB   string `env:"MARKETPLACE_DB_NAME" envDefault:"marketplace"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis lookup cache
	RedisHost                string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort                int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword            string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB                  int    `env:"REDIS_DB" envDefault:"0"`
	LookupCacheEnabled       bool   `env:"LOOKUP_CACHE_ENABLED" envDefault:"true"`
	LookupCacheTTLSeconds    int    `env:"LOOKUP_CACHE_TTL_SECONDS" envDefault:"600"`
	LookupCacheNegTTLSeconds int    `env:"LOOKUP_CACHE_NEGATIVE_TTL_SECONDS" envDefault:"30"`

	// Kafka
	KafkaBrokers          []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaConsumerGroup    string   `env:"KAFKA_CONSUMER_GROUP" envDefault:"marketplace-service"`
	KafkaConsumersEnabled bool     `env:"KAFKA_CONSUMERS_ENABLED" envDefault:"true"`

	// JWT
	JWTSecret string `env:"JWT_SECRET" envDefault:"change-me-in-production"`

	// Catalog
	CatalogDefaultPageSize    int `env:"CATALOG_DEFAULT_PAGE_SIZE" envDefault:"10"`
	CatalogMaxPageSize        int `env:"CATALOG_MAX_PAGE_SIZE" envDefault:"100"`
	CatalogCacheMaxAgeSeconds int `env:"CATALOG_CACHE_MAX_AGE_SECONDS" envDefault:"60"`

	// Per-IP limit on the public API. Zero RPS disables it.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"100"`

	// Fallback destination when the request carries no country.
	DefaultCountryCode string `env:"DEFAULT_COUNTRY_CODE" envDefault:"US"`
	DefaultCountryName string `env:"DEFAULT_COUNTRY_NAME" envDefault:"United States"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load marketplace config: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints. pkgconfig.Load calls it after
// parsing.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.StorageBackend {
	case StoragePostgres:
		if c.PostgresHost == "" {
			return errors.New("POSTGRES_HOST is required")
		}
		if c.PostgresUser == "" {
			return errors.New("POSTGRES_USER is required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StoragePostgres, StorageMemory, c.StorageBackend)
	}
	if c.LookupCacheEnabled && c.LookupCacheTTLSeconds <= 0 {
		return fmt.Errorf("LOOKUP_CACHE_TTL_SECONDS must be positive, got %d", c.LookupCacheTTLSeconds)
	}
	if c.KafkaConsumersEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when consumers are enabled")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.CatalogDefaultPageSize < 1 {
		return fmt.Errorf("CATALOG_DEFAULT_PAGE_SIZE must be positive, got %d", c.CatalogDefaultPageSize)
	}
	if c.CatalogMaxPageSize < c.CatalogDefaultPageSize {
		return fmt.Errorf("CATALOG_MAX_PAGE_SIZE (%d) must not be below CATALOG_DEFAULT_PAGE_SIZE (%d)",
			c.CatalogMaxPageSize, c.CatalogDefaultPageSize)
	}
	if c.CatalogCacheMaxAgeSeconds < 0 {
		return fmt.Errorf("CATALOG_CACHE_MAX_AGE_SECONDS must not be negative, got %d", c.CatalogCacheMaxAgeSeconds)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %f", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive when rate limiting is enabled, got %d", c.RateLimitBurst)
	}
	if c.DefaultCountryCode == "" && c.DefaultCountryName == "" {
		return errors.New("DEFAULT_COUNTRY_CODE or DEFAULT_COUNTRY_NAME is required")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// Postgres returns the pool settings for database.NewPostgresPool.
func (c *Config) Postgres() *database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	pg.MaxConns = c.DBMaxConns
	pg.MinConns = c.DBMinConns
	pg.MaxConnLifetime = time.Duration(c.DBMaxConnLifetimeMins) * time.Minute
	pg.MaxConnIdleTime = time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute
	return &pg
}

// Redis returns the client settings for database.NewRedisClient.
func (c *Config) Redis() database.RedisConfig {
	rc := database.DefaultRedisConfig()
	rc.Host = c.RedisHost
	rc.Port = c.RedisPort
	rc.Password = c.RedisPassword
	rc.DB = c.RedisDB
	return rc
}

// PageLimits returns the catalog page-size bounds.
func (c *Config) PageLimits() pagination.Limits {
	return pagination.Limits{
		DefaultPageSize: c.CatalogDefaultPageSize,
		MaxPageSize:     c.CatalogMaxPageSize,
	}
}

// DefaultCountry is the destination used when a request names none.
func (c *Config) DefaultCountry() middleware.CountryHint {
	return middleware.CountryHint{Code: c.DefaultCountryCode, Name: c.DefaultCountryName}
}

// CORS returns the CORS settings for the storefront.
func (c *Config) CORS() middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = c.CORSAllowedOrigins
	cors.Environment = c.Environment
	return cors
}

// LookupCacheTTL is how long resolved lookups stay cached.
func (c *Config) LookupCacheTTL() time.Duration {
	return time.Duration(c.LookupCacheTTLSeconds) * time.Second
}

// LookupCacheNegativeTTL is how long unresolvable lookups stay cached.
func (c *Config) LookupCacheNegativeTTL() time.Duration {
	return time.Duration(c.LookupCacheNegTTLSeconds) * time.Second
}
