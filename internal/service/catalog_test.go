package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/marketplace/internal/domain"
	"github.com/utafrali/marketplace/internal/repository"
	"github.com/utafrali/marketplace/internal/repository/memory"
	apperrors "github.com/utafrali/marketplace/pkg/errors"
	"github.com/utafrali/marketplace/pkg/pagination"
)

func newDemoCatalog() *CatalogService {
	repo := memory.Demo()
	return NewCatalogService(repo, repo, pagination.DefaultLimits(), newTestLogger())
}

func cardIDs(page *domain.ProductPage) []string {
	ids := make([]string, len(page.Products))
	for i, c := range page.Products {
		ids[i] = c.ID
	}
	return ids
}

func TestListProducts_SizeFilterIsExistential(t *testing.T) {
	svc := newDemoCatalog()

	page, err := svc.ListProducts(context.Background(),
		domain.CatalogFilter{Sizes: []string{"M"}, Category: "men"},
		domain.SortDefault, pagination.Params{Page: 1, PageSize: 10})
	require.NoError(t, err)

	assert.Equal(t, []string{"prod-socks", "prod-tee"}, cardIDs(page))

	tee := page.Products[1]
	require.Len(t, tee.Variants, 1)
	assert.Equal(t, "var-tee-black", tee.Variants[0].VariantID)
	require.Len(t, tee.Variants[0].Sizes, 1)
	assert.Equal(t, "M", tee.Variants[0].Sizes[0].Size)
	assert.Equal(t, "15", tee.Variants[0].Sizes[0].EffectivePrice.String())
	assert.Equal(t, []domain.CardImage{{URL: "/product/classic-tee/classic-tee-black", Image: "/images/classic-tee-black.jpg"}}, tee.VariantImages)
}

func TestListProducts_Pagination(t *testing.T) {
	svc := newDemoCatalog()
	ctx := context.Background()

	page, err := svc.ListProducts(ctx, domain.CatalogFilter{}, domain.SortDefault, pagination.Params{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Products, 2)

	page, err = svc.ListProducts(ctx, domain.CatalogFilter{}, domain.SortDefault, pagination.Params{Page: 9, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Products)
	assert.NotNil(t, page.Products)
	assert.Equal(t, 9, page.CurrentPage)
	assert.Equal(t, 3, page.TotalCount)
}

func TestListProducts_PageDefaults(t *testing.T) {
	svc := newDemoCatalog()

	page, err := svc.ListProducts(context.Background(), domain.CatalogFilter{}, domain.SortDefault, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 1, page.TotalPages)
}

func TestListProducts_EmptyResult(t *testing.T) {
	svc := newDemoCatalog()

	page, err := svc.ListProducts(context.Background(),
		domain.CatalogFilter{Search: "nothing matches this"},
		domain.SortDefault, pagination.Params{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalCount)
	assert.Equal(t, 0, page.TotalPages)
	assert.Empty(t, page.Products)
}

func TestListProducts_PageFarBeyondEnd(t *testing.T) {
	svc := newDemoCatalog()

	page, err := svc.ListProducts(context.Background(), domain.CatalogFilter{}, domain.SortDefault,
		pagination.Params{Page: math.MaxInt64 / 5, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Products)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, math.MaxInt64/5, page.CurrentPage)
}

func TestListProducts_SizeAndPriceMayMatchDifferentRows(t *testing.T) {
	repo := memory.New()
	repo.AddProduct(domain.Product{
		ID:   "prod-shirt",
		Slug: "oxford-shirt",
		Name: "Oxford Shirt",
		Variants: []domain.ProductVariant{{
			ID:   "var-shirt-white",
			Slug: "oxford-shirt-white",
			Sizes: []domain.Size{
				{ID: "size-s", Size: "S", Price: decimal.NewFromInt(5)},
				{ID: "size-m", Size: "M", Price: decimal.NewFromInt(50)},
			},
		}},
	})
	svc := NewCatalogService(repo, repo, pagination.DefaultLimits(), newTestLogger())

	page, err := svc.ListProducts(context.Background(),
		domain.CatalogFilter{Sizes: []string{"M"}, MaxPrice: decimal.NewNullDecimal(decimal.NewFromInt(10))},
		domain.SortDefault, pagination.Params{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, []string{"prod-shirt"}, cardIDs(page))

	page, err = svc.ListProducts(context.Background(),
		domain.CatalogFilter{Sizes: []string{"M"}, MaxPrice: decimal.NewNullDecimal(decimal.NewFromInt(4))},
		domain.SortDefault, pagination.Params{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalCount)
}

func TestListProducts_UnresolvedReferenceIsDropped(t *testing.T) {
	svc := newDemoCatalog()

	page, err := svc.ListProducts(context.Background(),
		domain.CatalogFilter{Category: "kids", Store: "acme"},
		domain.SortDefault, pagination.Params{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
}

func TestListProducts_Idempotent(t *testing.T) {
	svc := newDemoCatalog()
	ctx := context.Background()

	for _, sort := range []domain.SortKey{
		domain.SortMostPopular, domain.SortNewArrivals, domain.SortTopRated,
		domain.SortPriceLowToHigh, domain.SortPriceHighToLow,
	} {
		first, err := svc.ListProducts(ctx, domain.CatalogFilter{}, sort, pagination.Params{Page: 1, PageSize: 10})
		require.NoError(t, err)
		second, err := svc.ListProducts(ctx, domain.CatalogFilter{}, sort, pagination.Params{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, first, second, "sort %s", sort)
	}
}

func TestListProducts_PriceSortPlacesSizelessLast(t *testing.T) {
	repo := memory.Demo()
	created := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.AddProduct(domain.Product{ID: "prod-empty", Slug: "empty", Name: "Empty", CreatedAt: created})
	svc := NewCatalogService(repo, repo, pagination.DefaultLimits(), newTestLogger())

	for _, sort := range []domain.SortKey{domain.SortPriceLowToHigh, domain.SortPriceHighToLow} {
		page, err := svc.ListProducts(context.Background(), domain.CatalogFilter{}, sort, pagination.Params{Page: 1, PageSize: 10})
		require.NoError(t, err)
		ids := cardIDs(page)
		assert.Equal(t, "prod-empty", ids[len(ids)-1], "sort %s", sort)
		assert.Nil(t, page.Products[len(ids)-1].Price)
	}
}

func TestListProducts_ResolvesReferences(t *testing.T) {
	lookups := new(mockLookupRepository)
	catalog := new(mockCatalogRepository)
	svc := NewCatalogService(catalog, lookups, pagination.DefaultLimits(), newTestLogger())

	lookups.On("CategoryIDByURL", mock.Anything, "men").Return("cat-men", nil)
	lookups.On("SubCategoryIDByURL", mock.Anything, "tees").Return("", apperrors.ErrNotFound)
	lookups.On("OfferTagIDByURL", mock.Anything, "sale").Return("offer-1", nil)
	lookups.On("StoreIDByURL", mock.Anything, "acme").Return("store-1", nil)

	maxPrice := decimal.NewNullDecimal(decimal.NewFromInt(50))
	want := repository.ProductQuery{
		Search:     "tee",
		CategoryID: "cat-men",
		OfferTagID: "offer-1",
		StoreID:    "store-1",
		Variant:    domain.VariantCriteria{Colors: []string{"Black"}, MaxPrice: maxPrice},
		Sort:       domain.SortTopRated,
		Limit:      5,
		Offset:     5,
	}
	catalog.On("ListProducts", mock.Anything, want).Return([]domain.Product{}, 0, nil)

	_, err := svc.ListProducts(context.Background(), domain.CatalogFilter{
		Search:      "tee",
		Category:    "men",
		SubCategory: "tees",
		Offer:       "sale",
		Store:       "acme",
		Colors:      []string{"Black"},
		MaxPrice:    maxPrice,
	}, domain.SortTopRated, pagination.Params{Page: 2, PageSize: 5})
	require.NoError(t, err)

	lookups.AssertExpectations(t)
	catalog.AssertExpectations(t)
}

func TestListProducts_LookupFailure(t *testing.T) {
	lookups := new(mockLookupRepository)
	catalog := new(mockCatalogRepository)
	svc := NewCatalogService(catalog, lookups, pagination.DefaultLimits(), newTestLogger())

	lookups.On("CategoryIDByURL", mock.Anything, "men").Return("", errors.New("connection refused"))

	_, err := svc.ListProducts(context.Background(), domain.CatalogFilter{Category: "men"},
		domain.SortDefault, pagination.Params{Page: 1, PageSize: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve category")
	catalog.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
}

func TestListProducts_RepositoryFailure(t *testing.T) {
	lookups := new(mockLookupRepository)
	catalog := new(mockCatalogRepository)
	svc := NewCatalogService(catalog, lookups, pagination.DefaultLimits(), newTestLogger())

	catalog.On("ListProducts", mock.Anything, mock.Anything).Return([]domain.Product(nil), 0, errors.New("timeout"))

	_, err := svc.ListProducts(context.Background(), domain.CatalogFilter{}, domain.SortDefault, pagination.Params{Page: 1, PageSize: 10})
	assert.ErrorContains(t, err, "list products")
}
