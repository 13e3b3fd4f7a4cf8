package repository

import (
	"context"

	"github.com/utafrali/marketplace/internal/domain"
)

// ProductQuery is a catalog filter with every reference resolved to an
// internal id. Empty ids impose no constraint.
type ProductQuery struct {
	Search           string
	CategoryID       string
	SubCategoryID    string
	OfferTagID       string
	StoreID          string
	ExcludeProductID string
	Variant          domain.VariantCriteria
	Sort             domain.SortKey
	Limit            int
	Offset           int
}

// CatalogRepository reads products together with their variant graph.
type CatalogRepository interface {
	// ListProducts returns one page of matching products, fully loaded, and
	// the total number of matches. Without an explicit sort products are
	// ordered newest first.
	ListProducts(ctx context.Context, q ProductQuery) ([]domain.Product, int, error)

	// GetProductBySlug returns the product with its variants and free
	// shipping override, or apperrors.ErrNotFound.
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
}

// LookupRepository resolves human-readable keys to ids. Every method
// returns apperrors.ErrNotFound when the key matches nothing.
type LookupRepository interface {
	CategoryIDByURL(ctx context.Context, url string) (string, error)
	SubCategoryIDByURL(ctx context.Context, url string) (string, error)
	OfferTagIDByURL(ctx context.Context, url string) (string, error)
	StoreIDByURL(ctx context.Context, url string) (string, error)
	CountryByCode(ctx context.Context, code string) (*domain.Country, error)
	CountryByName(ctx context.Context, name string) (*domain.Country, error)
}

// ShippingRepository reads store shipping configuration.
type ShippingRepository interface {
	GetStore(ctx context.Context, id string) (*domain.Store, error)
	GetStoreByURL(ctx context.Context, url string) (*domain.Store, error)

	// GetShippingRate returns nil without error when the store has no rate
	// for the country.
	GetShippingRate(ctx context.Context, storeID, countryID string) (*domain.ShippingRate, error)

	ListShippingRates(ctx context.Context, storeID string) ([]domain.ShippingRate, error)

	// ListCountries returns every country ordered by name.
	ListCountries(ctx context.Context) ([]domain.Country, error)
}
