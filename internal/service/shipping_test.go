package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/marketplace/internal/domain"
	"github.com/utafrali/marketplace/internal/repository/memory"
	apperrors "github.com/utafrali/marketplace/pkg/errors"
)

func newDemoShipping() *ShippingService {
	repo := memory.Demo()
	return NewShippingService(repo, repo, repo, newTestLogger())
}

// widgetShipping builds a store with per-kg fee 3 and fixed fee 10 selling
// one product billed by method, with variants weighing 2 and 5.
func widgetShipping(method domain.ShippingFeeMethod) (*ShippingService, *memory.Repository) {
	repo := memory.New()
	repo.AddCountry(domain.Country{ID: "country-us", Name: "United States", Code: "US"})
	repo.AddCountry(domain.Country{ID: "country-ca", Name: "Canada", Code: "CA"})

	store := domain.NewStore("store-1", "seller-1", "Widgets", "widgets")
	store.DefaultShippingFeePerKg = decimal.NewFromInt(3)
	store.DefaultShippingFeeFixed = decimal.NewFromInt(10)
	repo.AddStore(store)

	repo.AddProduct(domain.Product{
		ID:                "prod-widget",
		Slug:              "widget",
		StoreID:           store.ID,
		ShippingFeeMethod: method,
		Variants: []domain.ProductVariant{
			{ID: "var-red", Slug: "widget-red", Weight: decimal.NewFromInt(2)},
			{ID: "var-blue", Slug: "widget-blue", Weight: decimal.NewFromInt(5)},
		},
	})
	return NewShippingService(repo, repo, repo, newTestLogger()), repo
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestQuote_FeeFormulas(t *testing.T) {
	tests := []struct {
		name    string
		method  domain.ShippingFeeMethod
		input   QuoteInput
		wantFee string
	}{
		{
			name:    "item with defaults",
			method:  domain.ShippingFeeMethodItem,
			input:   QuoteInput{Quantity: 3},
			wantFee: "9",
		},
		{
			name:    "weight uses first variant",
			method:  domain.ShippingFeeMethodWeight,
			input:   QuoteInput{Quantity: 4},
			wantFee: "24",
		},
		{
			name:    "weight of chosen variant",
			method:  domain.ShippingFeeMethodWeight,
			input:   QuoteInput{Quantity: 1, Variant: "widget-blue"},
			wantFee: "15",
		},
		{
			name:    "explicit weight wins",
			method:  domain.ShippingFeeMethodWeight,
			input:   QuoteInput{Quantity: 4, Variant: "var-blue", Weight: decPtr("1.5")},
			wantFee: "18",
		},
		{
			name:    "fixed ignores quantity",
			method:  domain.ShippingFeeMethodFixed,
			input:   QuoteInput{Quantity: 7, Weight: decPtr("40")},
			wantFee: "10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := widgetShipping(tt.method)
			tt.input.ProductSlug = "widget"
			tt.input.Destination = Destination{Code: "US"}

			q, err := svc.Quote(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFee, q.Fee.String())
			assert.False(t, q.IsFreeShipping)
			assert.Equal(t, tt.method, q.ShippingFeeMethod)
			assert.Equal(t, "US", q.Country.Code)
		})
	}
}

func TestQuote_FreeShippingOverride(t *testing.T) {
	svc := newDemoShipping()
	ctx := context.Background()

	us, err := svc.Quote(ctx, QuoteInput{ProductSlug: "classic-tee", Quantity: 2, Destination: Destination{Code: "US"}})
	require.NoError(t, err)
	assert.True(t, us.IsFreeShipping)
	assert.True(t, us.Fee.IsZero())

	de, err := svc.Quote(ctx, QuoteInput{ProductSlug: "classic-tee", Quantity: 2, Destination: Destination{Code: "DE"}})
	require.NoError(t, err)
	assert.False(t, de.IsFreeShipping)
	assert.Equal(t, "7", de.Fee.String())
	assert.Equal(t, domain.DefaultShippingService, de.Service)
}

func TestQuote_FreeForAllCountries(t *testing.T) {
	svc := newDemoShipping()

	for _, code := range []string{"US", "CA", "DE"} {
		q, err := svc.Quote(context.Background(), QuoteInput{ProductSlug: "wool-socks", Quantity: 3, Destination: Destination{Code: code}})
		require.NoError(t, err)
		assert.True(t, q.Fee.IsZero(), code)
		assert.True(t, q.IsFreeShipping, code)
	}
}

func TestQuote_RateFallsBackPerField(t *testing.T) {
	svc := newDemoShipping()

	// The Canada rate overrides the service, per-item fee and delivery window
	// only; the additional-item fee and return policy come from the store.
	q, err := svc.Quote(context.Background(), QuoteInput{ProductSlug: "classic-tee", Quantity: 3, Destination: Destination{Name: "canada"}})
	require.NoError(t, err)
	assert.Equal(t, "12", q.Fee.String())
	assert.Equal(t, "Express Courier", q.Service)
	assert.Equal(t, 3, q.DeliveryTimeMin)
	assert.Equal(t, 9, q.DeliveryTimeMax)
	assert.Equal(t, domain.DefaultReturnPolicy, q.ReturnPolicy)
}

func TestQuote_DeliveryOnlyRateKeepsDefaultFees(t *testing.T) {
	svc, repo := widgetShipping(domain.ShippingFeeMethodItem)
	repo.AddShippingRate(domain.ShippingRate{
		ID:              "rate-1",
		StoreID:         "store-1",
		CountryID:       "country-ca",
		DeliveryTimeMin: intPtr(1),
		DeliveryTimeMax: intPtr(2),
	})

	q, err := svc.Quote(context.Background(), QuoteInput{ProductSlug: "widget", Quantity: 2, Destination: Destination{Code: "CA"}})
	require.NoError(t, err)
	assert.Equal(t, "7", q.Fee.String())
	assert.Equal(t, 1, q.DeliveryTimeMin)
	assert.Equal(t, 2, q.DeliveryTimeMax)
}

func TestQuote_UnserviceableDestination(t *testing.T) {
	svc := newDemoShipping()

	q, err := svc.Quote(context.Background(), QuoteInput{ProductSlug: "classic-tee", Quantity: 1, Destination: Destination{Code: "FR", Name: "France"}})
	assert.Nil(t, q)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnserviceable)
	assert.Equal(t, 422, apperrors.HTTPStatus(err))
}

func TestQuote_CodeMissFallsBackToName(t *testing.T) {
	svc := newDemoShipping()

	q, err := svc.Quote(context.Background(), QuoteInput{ProductSlug: "classic-tee", Quantity: 1, Destination: Destination{Code: "XX", Name: "Germany"}})
	require.NoError(t, err)
	assert.Equal(t, "DE", q.Country.Code)
}

func TestQuote_InvalidInput(t *testing.T) {
	svc, _ := widgetShipping(domain.ShippingFeeMethodWeight)

	_, err := svc.Quote(context.Background(), QuoteInput{ProductSlug: "widget", Quantity: 0, Destination: Destination{Code: "US"}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.Quote(context.Background(), QuoteInput{ProductSlug: "widget", Quantity: 1, Weight: decPtr("-1"), Destination: Destination{Code: "US"}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestQuote_InvalidMethodIsInternal(t *testing.T) {
	svc, _ := widgetShipping(domain.ShippingFeeMethod("PIGEON"))

	_, err := svc.Quote(context.Background(), QuoteInput{ProductSlug: "widget", Quantity: 1, Destination: Destination{Code: "US"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidShippingMethod)
	assert.Equal(t, 500, apperrors.HTTPStatus(err))
}

func TestQuote_UnknownProduct(t *testing.T) {
	svc := newDemoShipping()

	_, err := svc.Quote(context.Background(), QuoteInput{ProductSlug: "missing", Quantity: 1, Destination: Destination{Code: "US"}})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResolveCountry_LookupError(t *testing.T) {
	lookups := new(mockLookupRepository)
	svc := NewShippingService(nil, lookups, nil, newTestLogger())

	lookups.On("CountryByCode", mock.Anything, "US").Return(nil, errors.New("redis and postgres down"))

	_, err := svc.ResolveCountry(context.Background(), Destination{Code: "US"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrUnserviceable)
}

func TestResolveCountry_EmptyDestination(t *testing.T) {
	svc := newDemoShipping()

	_, err := svc.ResolveCountry(context.Background(), Destination{})
	assert.ErrorIs(t, err, apperrors.ErrUnserviceable)
}

func TestGetStoreShipping(t *testing.T) {
	svc := newDemoShipping()
	ctx := context.Background()

	details, err := svc.GetStoreShipping(ctx, "seller-1", "acme")
	require.NoError(t, err)
	assert.Equal(t, "store-acme", details.StoreID)
	assert.Equal(t, domain.DefaultShippingService, details.Defaults.Service)
	assert.Equal(t, "5", details.Defaults.FeePerItem.String())
	assert.Equal(t, 31, details.Defaults.DeliveryTimeMax)

	_, err = svc.GetStoreShipping(ctx, "seller-2", "acme")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.GetStoreShipping(ctx, "seller-1", "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListCountryRates(t *testing.T) {
	svc := newDemoShipping()

	rates, err := svc.ListCountryRates(context.Background(), "seller-1", "acme")
	require.NoError(t, err)
	require.Len(t, rates, 3)

	assert.Equal(t, "Canada", rates[0].Country.Name)
	require.NotNil(t, rates[0].Rate)
	assert.Equal(t, "rate-acme-ca", rates[0].Rate.ID)
	assert.Equal(t, "Germany", rates[1].Country.Name)
	assert.Nil(t, rates[1].Rate)
	assert.Equal(t, "United States", rates[2].Country.Name)
	assert.Nil(t, rates[2].Rate)

	_, err = svc.ListCountryRates(context.Background(), "seller-9", "acme")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func intPtr(v int) *int { return &v }
