package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, StoragePostgres, cfg.StorageBackend)
	assert.Equal(t, "marketplace", cfg.PostgresDB)
	assert.True(t, cfg.LookupCacheEnabled)
	assert.Equal(t, 10*time.Minute, cfg.LookupCacheTTL())
	assert.Equal(t, 30*time.Second, cfg.LookupCacheNegativeTTL())
	assert.Equal(t, "marketplace-service", cfg.KafkaConsumerGroup)
	assert.Equal(t, 10, cfg.PageLimits().DefaultPageSize)
	assert.Equal(t, 100, cfg.PageLimits().MaxPageSize)
	assert.Equal(t, "US", cfg.DefaultCountry().Code)
	assert.Equal(t, "United States", cfg.DefaultCountry().Name)
	assert.Equal(t, 50.0, cfg.RateLimitRPS)
	assert.Equal(t, 100, cfg.RateLimitBurst)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("MARKETPLACE_HTTP_PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CATALOG_DEFAULT_PAGE_SIZE", "24")
	t.Setenv("CATALOG_MAX_PAGE_SIZE", "48")
	t.Setenv("DEFAULT_COUNTRY_CODE", "DE")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 24, cfg.PageLimits().DefaultPageSize)
	assert.Equal(t, "DE", cfg.DefaultCountry().Code)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "port out of range",
			env:     map[string]string{"MARKETPLACE_HTTP_PORT": "70000"},
			wantErr: "invalid HTTP port",
		},
		{
			name:    "unknown storage backend",
			env:     map[string]string{"STORAGE_BACKEND": "sqlite"},
			wantErr: "STORAGE_BACKEND",
		},
		{
			name:    "non-positive cache ttl",
			env:     map[string]string{"LOOKUP_CACHE_TTL_SECONDS": "0"},
			wantErr: "LOOKUP_CACHE_TTL_SECONDS",
		},
		{
			name:    "max page size below default",
			env:     map[string]string{"CATALOG_DEFAULT_PAGE_SIZE": "50", "CATALOG_MAX_PAGE_SIZE": "20"},
			wantErr: "CATALOG_MAX_PAGE_SIZE",
		},
		{
			name:    "negative cache max age",
			env:     map[string]string{"CATALOG_CACHE_MAX_AGE_SECONDS": "-1"},
			wantErr: "CATALOG_CACHE_MAX_AGE_SECONDS",
		},
		{
			name:    "negative rate limit",
			env:     map[string]string{"RATE_LIMIT_RPS": "-1"},
			wantErr: "RATE_LIMIT_RPS",
		},
		{
			name:    "zero burst with rate limit",
			env:     map[string]string{"RATE_LIMIT_RPS": "5", "RATE_LIMIT_BURST": "0"},
			wantErr: "RATE_LIMIT_BURST",
		},
		{
			name:    "sample rate above one",
			env:     map[string]string{"OTEL_SAMPLE_RATE": "1.5"},
			wantErr: "OTEL_SAMPLE_RATE",
		},
		{
			name:    "malformed port",
			env:     map[string]string{"MARKETPLACE_HTTP_PORT": "abc"},
			wantErr: "parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_DisabledCacheIgnoresTTL(t *testing.T) {
	t.Setenv("LOOKUP_CACHE_ENABLED", "false")
	t.Setenv("LOOKUP_CACHE_TTL_SECONDS", "0")

	_, err := Load()
	assert.NoError(t, err)
}

func TestConfig_Postgres(t *testing.T) {
	cfg := &Config{
		PostgresHost:          "db",
		PostgresPort:          5433,
		PostgresUser:          "u",
		PostgresPass:          "p",
		PostgresDB:            "shop",
		PostgresSSL:           "require",
		DBMaxConns:            10,
		DBMinConns:            2,
		DBMaxConnLifetimeMins: 15,
		DBMaxConnIdleTimeMins: 5,
	}

	pg := cfg.Postgres()

	assert.Equal(t, "db", pg.Host)
	assert.Equal(t, 5433, pg.Port)
	assert.Equal(t, "shop", pg.DBName)
	assert.Equal(t, int32(10), pg.MaxConns)
	assert.Equal(t, 15*time.Minute, pg.MaxConnLifetime)
	assert.Equal(t, 5*time.Minute, pg.MaxConnIdleTime)
	assert.Equal(t, "marketplace", pg.ApplicationName)
}

func TestConfig_RedisAndCORS(t *testing.T) {
	cfg := &Config{
		RedisHost:          "cache",
		RedisPort:          6380,
		RedisDB:            2,
		Environment:        "production",
		CORSAllowedOrigins: []string{"https://shop.example.com"},
	}

	rc := cfg.Redis()
	assert.Equal(t, "cache:6380", rc.Addr())
	assert.Equal(t, 2, rc.DB)
	assert.Equal(t, 200*time.Millisecond, rc.ReadTimeout)

	cors := cfg.CORS()
	assert.Equal(t, []string{"https://shop.example.com"}, cors.AllowedOrigins)
	assert.Equal(t, "production", cors.Environment)
	assert.NotEmpty(t, cors.AllowedHeaders)
}
