package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/marketplace/internal/domain"
	"github.com/utafrali/marketplace/internal/repository"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock Repositories ---

type mockLookupRepository struct {
	mock.Mock
}

func (m *mockLookupRepository) CategoryIDByURL(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

func (m *mockLookupRepository) SubCategoryIDByURL(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

func (m *mockLookupRepository) OfferTagIDByURL(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

func (m *mockLookupRepository) StoreIDByURL(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

func (m *mockLookupRepository) CountryByCode(ctx context.Context, code string) (*domain.Country, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Country), args.Error(1)
}

func (m *mockLookupRepository) CountryByName(ctx context.Context, name string) (*domain.Country, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Country), args.Error(1)
}

type mockCatalogRepository struct {
	mock.Mock
}

func (m *mockCatalogRepository) ListProducts(ctx context.Context, q repository.ProductQuery) ([]domain.Product, int, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockCatalogRepository) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}
