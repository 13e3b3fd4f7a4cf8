package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/utafrali/marketplace/internal/domain"
	"github.com/utafrali/marketplace/internal/repository"
	apperrors "github.com/utafrali/marketplace/pkg/errors"
)

const (
	keyPrefix = "lookup:"

	// missMarker records that a key resolved to nothing.
	missMarker = "\x00"

	DefaultTTL         = 10 * time.Minute
	DefaultNegativeTTL = 30 * time.Second
)

var cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "marketplace_lookup_cache_requests_total",
	Help: "Lookup cache reads by kind and result (hit, miss, negative_hit, error).",
}, []string{"kind", "result"})

// Cache keys. Country keys are normalised the way the repository matches
// them, case-insensitively.
func CategoryKey(url string) string { return keyPrefix + "category:" + url }

func SubCategoryKey(url string) string { return keyPrefix + "subcategory:" + url }

func OfferTagKey(url string) string { return keyPrefix + "offer:" + url }

func StoreKey(url string) string { return keyPrefix + "store:" + url }

func CountryCodeKey(code string) string { return keyPrefix + "country:code:" + strings.ToUpper(code) }

func CountryNameKey(name string) string { return keyPrefix + "country:name:" + strings.ToLower(name) }

// LookupCache is a read-through cache in front of a LookupRepository.
// Concurrent misses for the same key share one repository call, and a key
// that resolves to nothing is remembered for the negative TTL. Redis
// failures are logged and the call falls through to the repository.
type LookupCache struct {
	inner       repository.LookupRepository
	client      redis.UniversalClient
	ttl         time.Duration
	negativeTTL time.Duration
	group       singleflight.Group
	logger      *slog.Logger
}

// Option configures a LookupCache.
type Option func(*LookupCache)

// WithNegativeTTL overrides how long unresolvable keys are remembered.
func WithNegativeTTL(ttl time.Duration) Option {
	return func(c *LookupCache) { c.negativeTTL = ttl }
}

// NewLookupCache wraps inner. A non-positive ttl selects DefaultTTL.
func NewLookupCache(inner repository.LookupRepository, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger, opts ...Option) *LookupCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &LookupCache{
		inner:       inner,
		client:      client,
		ttl:         ttl,
		negativeTTL: DefaultNegativeTTL,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *LookupCache) CategoryIDByURL(ctx context.Context, url string) (string, error) {
	return c.cached(ctx, "category", CategoryKey(url), func(ctx context.Context) (string, error) {
		return c.inner.CategoryIDByURL(ctx, url)
	})
}

func (c *LookupCache) SubCategoryIDByURL(ctx context.Context, url string) (string, error) {
	return c.cached(ctx, "subcategory", SubCategoryKey(url), func(ctx context.Context) (string, error) {
		return c.inner.SubCategoryIDByURL(ctx, url)
	})
}

func (c *LookupCache) OfferTagIDByURL(ctx context.Context, url string) (string, error) {
	return c.cached(ctx, "offer", OfferTagKey(url), func(ctx context.Context) (string, error) {
		return c.inner.OfferTagIDByURL(ctx, url)
	})
}

func (c *LookupCache) StoreIDByURL(ctx context.Context, url string) (string, error) {
	return c.cached(ctx, "store", StoreKey(url), func(ctx context.Context) (string, error) {
		return c.inner.StoreIDByURL(ctx, url)
	})
}

func (c *LookupCache) CountryByCode(ctx context.Context, code string) (*domain.Country, error) {
	return c.country(ctx, CountryCodeKey(code), func(ctx context.Context) (*domain.Country, error) {
		return c.inner.CountryByCode(ctx, code)
	})
}

func (c *LookupCache) CountryByName(ctx context.Context, name string) (*domain.Country, error) {
	return c.country(ctx, CountryNameKey(name), func(ctx context.Context) (*domain.Country, error) {
		return c.inner.CountryByName(ctx, name)
	})
}

func (c *LookupCache) country(ctx context.Context, key string, load func(context.Context) (*domain.Country, error)) (*domain.Country, error) {
	raw, err := c.cached(ctx, "country", key, func(ctx context.Context) (string, error) {
		country, err := load(ctx)
		if err != nil {
			return "", err
		}
		data, err := json.Marshal(country)
		if err != nil {
			return "", fmt.Errorf("marshal country: %w", err)
		}
		return string(data), nil
	})
	if err != nil {
		return nil, err
	}

	var country domain.Country
	if err := json.Unmarshal([]byte(raw), &country); err != nil {
		return nil, fmt.Errorf("unmarshal cached country: %w", err)
	}
	return &country, nil
}

// cached returns the value stored under key, loading and storing it on a
// miss.
func (c *LookupCache) cached(ctx context.Context, kind, key string, load func(context.Context) (string, error)) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil && val == missMarker:
		cacheRequests.WithLabelValues(kind, "negative_hit").Inc()
		return "", apperrors.ErrNotFound
	case err == nil:
		cacheRequests.WithLabelValues(kind, "hit").Inc()
		return val, nil
	case !errors.Is(err, redis.Nil):
		cacheRequests.WithLabelValues(kind, "error").Inc()
		c.logger.ErrorContext(ctx, "lookup cache read failed, using repository",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return load(ctx)
	}

	cacheRequests.WithLabelValues(kind, "miss").Inc()
	// The load is shared by every caller waiting on key, so it must outlive
	// whichever caller started it.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		val, err := load(shared)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.store(shared, key, missMarker, c.negativeTTL)
			return "", err
		case err != nil:
			return "", err
		}
		c.store(shared, key, val, c.ttl)
		return val, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *LookupCache) store(ctx context.Context, key, val string, ttl time.Duration) {
	if err := c.client.Set(ctx, key, val, ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "lookup cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// Invalidate removes keys from the cache.
func (c *LookupCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del lookup keys: %w", err)
	}
	return nil
}

var _ repository.LookupRepository = (*LookupCache)(nil)
