package redis

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/marketplace/internal/domain"
	"github.com/utafrali/marketplace/internal/repository"
	"github.com/utafrali/marketplace/internal/repository/memory"
	apperrors "github.com/utafrali/marketplace/pkg/errors"
)

type countingLookup struct {
	repository.LookupRepository
	calls atomic.Int32
}

func (c *countingLookup) CategoryIDByURL(ctx context.Context, url string) (string, error) {
	c.calls.Add(1)
	return c.LookupRepository.CategoryIDByURL(ctx, url)
}

func (c *countingLookup) CountryByCode(ctx context.Context, code string) (*domain.Country, error) {
	c.calls.Add(1)
	return c.LookupRepository.CountryByCode(ctx, code)
}

// gatedLookup blocks category loads until release is closed and fails them
// if the load context is cancelled first.
type gatedLookup struct {
	repository.LookupRepository
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (g *gatedLookup) CategoryIDByURL(ctx context.Context, url string) (string, error) {
	if g.calls.Add(1) == 1 {
		close(g.started)
	}
	select {
	case <-g.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return g.LookupRepository.CategoryIDByURL(ctx, url)
}

func setupCache(t *testing.T) (*LookupCache, *countingLookup, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := memory.New()
	repo.AddCategory("men", "cat-men")
	repo.AddCountry(domain.Country{ID: "country-us", Name: "United States", Code: "US"})

	inner := &countingLookup{LookupRepository: repo}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLookupCache(inner, client, time.Minute, logger), inner, mr
}

func TestLookupCache_ReadThrough(t *testing.T) {
	cache, inner, mr := setupCache(t)
	ctx := context.Background()

	id, err := cache.CategoryIDByURL(ctx, "men")
	require.NoError(t, err)
	assert.Equal(t, "cat-men", id)
	assert.True(t, mr.Exists(CategoryKey("men")))

	id, err = cache.CategoryIDByURL(ctx, "men")
	require.NoError(t, err)
	assert.Equal(t, "cat-men", id)
	assert.Equal(t, int32(1), inner.calls.Load())

	mr.FastForward(2 * time.Minute)

	_, err = cache.CategoryIDByURL(ctx, "men")
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestLookupCache_NegativeEntries(t *testing.T) {
	cache, inner, mr := setupCache(t)
	ctx := context.Background()

	_, err := cache.CategoryIDByURL(ctx, "kids")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = cache.CategoryIDByURL(ctx, "kids")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, int32(1), inner.calls.Load())

	mr.FastForward(DefaultNegativeTTL + time.Second)

	_, err = cache.CategoryIDByURL(ctx, "kids")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestLookupCache_CountryByCode(t *testing.T) {
	cache, inner, mr := setupCache(t)
	ctx := context.Background()

	c, err := cache.CountryByCode(ctx, "us")
	require.NoError(t, err)
	assert.Equal(t, "United States", c.Name)
	assert.True(t, mr.Exists("lookup:country:code:US"))

	c, err = cache.CountryByCode(ctx, "US")
	require.NoError(t, err)
	assert.Equal(t, domain.Country{ID: "country-us", Name: "United States", Code: "US"}, *c)
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestLookupCache_RedisDownFallsThrough(t *testing.T) {
	cache, inner, mr := setupCache(t)
	mr.Close()

	id, err := cache.CategoryIDByURL(context.Background(), "men")
	require.NoError(t, err)
	assert.Equal(t, "cat-men", id)

	_, err = cache.CategoryIDByURL(context.Background(), "men")
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestLookupCache_Invalidate(t *testing.T) {
	cache, inner, mr := setupCache(t)
	ctx := context.Background()

	_, err := cache.CategoryIDByURL(ctx, "men")
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(ctx, CategoryKey("men"), CountryCodeKey("us")))
	assert.False(t, mr.Exists(CategoryKey("men")))

	_, err = cache.CategoryIDByURL(ctx, "men")
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())

	assert.NoError(t, cache.Invalidate(ctx))
}

func TestLookupCache_SharedLoadSurvivesCallerCancel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := memory.New()
	repo.AddCategory("men", "cat-men")
	inner := &gatedLookup{LookupRepository: repo, started: make(chan struct{}), release: make(chan struct{})}
	cache := NewLookupCache(inner, client, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.CategoryIDByURL(firstCtx, "men")
		firstErr <- err
	}()
	<-inner.started

	type result struct {
		id  string
		err error
	}
	second := make(chan result, 1)
	go func() {
		id, err := cache.CategoryIDByURL(context.Background(), "men")
		second <- result{id, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(inner.release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, "cat-men", res.id)
	assert.Equal(t, int32(1), inner.calls.Load())
	assert.True(t, mr.Exists(CategoryKey("men")))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "lookup:store:acme", StoreKey("acme"))
	assert.Equal(t, "lookup:offer:summer", OfferTagKey("summer"))
	assert.Equal(t, "lookup:subcategory:jackets", SubCategoryKey("jackets"))
	assert.Equal(t, "lookup:country:name:germany", CountryNameKey("Germany"))
	assert.Equal(t, "lookup:country:code:DE", CountryCodeKey("de"))
}
