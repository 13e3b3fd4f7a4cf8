package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/marketplace/internal/domain"
	"github.com/utafrali/marketplace/internal/repository"
	apperrors "github.com/utafrali/marketplace/pkg/errors"
)

// ShippingService computes shipping quotes and exposes a store's shipping
// configuration to its seller.
type ShippingService struct {
	catalog  repository.CatalogRepository
	lookups  repository.LookupRepository
	shipping repository.ShippingRepository
	logger   *slog.Logger
}

// NewShippingService creates a new shipping service.
func NewShippingService(catalog repository.CatalogRepository, lookups repository.LookupRepository, shipping repository.ShippingRepository, logger *slog.Logger) *ShippingService {
	return &ShippingService{
		catalog:  catalog,
		lookups:  lookups,
		shipping: shipping,
		logger:   logger,
	}
}

// Destination is the caller's country as reported by the request. Code is
// tried first, then Name.
type Destination struct {
	Code string
	Name string
}

func (d Destination) String() string {
	if d.Code != "" {
		return d.Code
	}
	return d.Name
}

// QuoteInput holds the parameters for a shipping quote. Variant is an id or
// slug; when empty the first variant is used. Weight overrides the
// variant's weight.
type QuoteInput struct {
	ProductSlug string
	Variant     string
	Quantity    int
	Weight      *decimal.Decimal
	Destination Destination
}

// Quote is the shipping cost of a product to one destination.
type Quote struct {
	Fee               decimal.Decimal          `json:"fee"`
	ShippingFeeMethod domain.ShippingFeeMethod `json:"shippingFeeMethod"`
	IsFreeShipping    bool                     `json:"isFreeShipping"`
	Service           string                   `json:"service"`
	DeliveryTimeMin   int                      `json:"deliveryTimeMin"`
	DeliveryTimeMax   int                      `json:"deliveryTimeMax"`
	ReturnPolicy      string                   `json:"returnPolicy"`
	Quantity          int                      `json:"quantity"`
	Weight            decimal.Decimal          `json:"weight"`
	Country           domain.Country           `json:"country"`
}

// Quote prices shipping for input. A destination that matches no stored
// country is reported as unserviceable, never as a zero fee, and a product
// carrying an unknown fee method is an internal error.
func (s *ShippingService) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	product, err := s.catalog.GetProductBySlug(ctx, input.ProductSlug)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", input.ProductSlug)
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	method := string(product.ShippingFeeMethod)

	country, err := s.ResolveCountry(ctx, input.Destination)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnserviceable) {
			shippingQuotesTotal.WithLabelValues(method, "unserviceable").Inc()
			s.logger.InfoContext(ctx, "shipping quote for unserviceable destination",
				slog.String("product_slug", input.ProductSlug),
				slog.String("destination", input.Destination.String()),
			)
		}
		return nil, err
	}

	store, err := s.shipping.GetStore(ctx, product.StoreID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("get store %s of product %s: %w", product.StoreID, product.ID, err))
	}
	rate, err := s.shipping.GetShippingRate(ctx, store.ID, country.ID)
	if err != nil {
		return nil, fmt.Errorf("get shipping rate: %w", err)
	}
	params := domain.ResolveShippingParams(*store, rate)
	isFree := domain.IsFreeShipping(product.FreeShippingConfig(), country.ID)

	weight := decimal.Zero
	if input.Weight != nil {
		weight = *input.Weight
	} else if w, ok := product.WeightFor(input.Variant); ok {
		weight = w
	}

	fee, err := domain.ComputeFee(product.ShippingFeeMethod, params, isFree, weight, input.Quantity)
	if err != nil {
		shippingQuotesTotal.WithLabelValues(method, "rejected").Inc()
		switch {
		case errors.Is(err, domain.ErrInvalidShippingMethod):
			return nil, apperrors.Internal(fmt.Errorf("product %s has shipping fee method %q: %w", product.ID, method, err))
		case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidWeight):
			return nil, apperrors.InvalidInput(err.Error())
		default:
			return nil, fmt.Errorf("compute fee: %w", err)
		}
	}

	outcome := "charged"
	if isFree {
		outcome = "free"
	}
	shippingQuotesTotal.WithLabelValues(method, outcome).Inc()

	s.logger.DebugContext(ctx, "shipping quote computed",
		slog.String("product_id", product.ID),
		slog.String("country", country.Code),
		slog.String("method", method),
		slog.String("fee", fee.String()),
	)

	return &Quote{
		Fee:               fee,
		ShippingFeeMethod: product.ShippingFeeMethod,
		IsFreeShipping:    isFree,
		Service:           params.Service,
		DeliveryTimeMin:   params.DeliveryTimeMin,
		DeliveryTimeMax:   params.DeliveryTimeMax,
		ReturnPolicy:      params.ReturnPolicy,
		Quantity:          input.Quantity,
		Weight:            weight,
		Country:           *country,
	}, nil
}

// ResolveCountry finds the stored country for d by code, then by name.
func (s *ShippingService) ResolveCountry(ctx context.Context, d Destination) (*domain.Country, error) {
	code := strings.TrimSpace(d.Code)
	name := strings.TrimSpace(d.Name)

	if code != "" {
		c, err := s.lookups.CountryByCode(ctx, code)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("lookup country by code: %w", err)
		}
	}
	if name != "" {
		c, err := s.lookups.CountryByName(ctx, name)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("lookup country by name: %w", err)
		}
	}
	return nil, apperrors.UnserviceableDestination(d.String())
}

// StoreShipping is a store's default shipping configuration.
type StoreShipping struct {
	StoreID   string                `json:"storeId"`
	StoreURL  string                `json:"storeUrl"`
	StoreName string                `json:"storeName"`
	Defaults  domain.ShippingParams `json:"defaults"`
}

// GetStoreShipping returns the default shipping details of the store at
// storeURL. sellerID must own the store.
func (s *ShippingService) GetStoreShipping(ctx context.Context, sellerID, storeURL string) (*StoreShipping, error) {
	store, err := s.ownedStore(ctx, sellerID, storeURL)
	if err != nil {
		return nil, err
	}
	return &StoreShipping{
		StoreID:   store.ID,
		StoreURL:  store.URL,
		StoreName: store.Name,
		Defaults:  domain.ResolveShippingParams(*store, nil),
	}, nil
}

// ListCountryRates returns every country, ordered by name, paired with the
// store's rate for it or nil.
func (s *ShippingService) ListCountryRates(ctx context.Context, sellerID, storeURL string) ([]domain.CountryRate, error) {
	store, err := s.ownedStore(ctx, sellerID, storeURL)
	if err != nil {
		return nil, err
	}

	countries, err := s.shipping.ListCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	rates, err := s.shipping.ListShippingRates(ctx, store.ID)
	if err != nil {
		return nil, fmt.Errorf("list shipping rates: %w", err)
	}

	byCountry := make(map[string]*domain.ShippingRate, len(rates))
	for i := range rates {
		byCountry[rates[i].CountryID] = &rates[i]
	}

	out := make([]domain.CountryRate, 0, len(countries))
	for _, c := range countries {
		out = append(out, domain.CountryRate{Country: c, Rate: byCountry[c.ID]})
	}
	return out, nil
}

func (s *ShippingService) ownedStore(ctx context.Context, sellerID, storeURL string) (*domain.Store, error) {
	store, err := s.shipping.GetStoreByURL(ctx, storeURL)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("store", storeURL)
		}
		return nil, fmt.Errorf("get store by url: %w", err)
	}
	if store.UserID != sellerID {
		return nil, apperrors.Forbidden("store does not belong to the current seller")
	}
	return store, nil
}
