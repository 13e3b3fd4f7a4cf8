package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/marketplace/internal/domain"
	"github.com/utafrali/marketplace/internal/service"
	"github.com/utafrali/marketplace/pkg/httputil"
	"github.com/utafrali/marketplace/pkg/pagination"
	"github.com/utafrali/marketplace/pkg/validator"
)

// CatalogHandler handles HTTP requests for catalog browsing.
type CatalogHandler struct {
	service *service.CatalogService
	limits  pagination.Limits
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, limits pagination.Limits, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		limits:  limits,
		logger:  logger,
	}
}

// listProductsQuery holds the free-text parameters of a browse request.
type listProductsQuery struct {
	Search      string   `query:"search" validate:"max=200"`
	Category    string   `query:"category" validate:"max=200"`
	SubCategory string   `query:"subCategory" validate:"max=200"`
	Offer       string   `query:"offer" validate:"max=200"`
	Store       string   `query:"store" validate:"max=200"`
	ProductID   string   `query:"productId" validate:"max=200"`
	Sizes       []string `query:"size" validate:"max=50,dive,max=50"`
	Colors      []string `query:"color" validate:"max=50,dive,max=50"`
}

// ListProducts handles GET /api/v1/products
//
// Query parameters: search, category, subCategory, offer, store, productId
// (the product to leave out; exclude is accepted as an alias),
// size and color (repeated or comma separated), minPrice, maxPrice, sort,
// page, pageSize. Unparseable prices are ignored; an unknown sort is a 400.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	sort, err := domain.ParseSortKey(values.Get("sort"))
	if err != nil {
		httputil.WriteBadParameter(w, r, "sort must be one of: most-popular, new-arrivals, top-rated, price-low-to-high, price-high-to-low")
		return
	}

	q := listProductsQuery{
		Search:      strings.TrimSpace(values.Get("search")),
		Category:    values.Get("category"),
		SubCategory: values.Get("subCategory"),
		Offer:       values.Get("offer"),
		Store:       values.Get("store"),
		ProductID:   values.Get("productId"),
		Sizes:       multiValue(values, "size"),
		Colors:      multiValue(values, "color"),
	}
	if q.ProductID == "" {
		q.ProductID = values.Get("exclude")
	}
	if err := validator.Validate(q); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	filter := domain.CatalogFilter{
		Search:           q.Search,
		Category:         q.Category,
		SubCategory:      q.SubCategory,
		Offer:            q.Offer,
		Store:            q.Store,
		Sizes:            q.Sizes,
		Colors:           q.Colors,
		MinPrice:         minPrice(values.Get("minPrice")),
		MaxPrice:         maxPrice(values.Get("maxPrice")),
		ExcludeProductID: q.ProductID,
	}

	page, err := h.service.ListProducts(r.Context(), filter, sort, pagination.FromRequest(r, h.limits))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}

// multiValue collects key from repeated parameters and comma-separated
// lists, dropping blanks and duplicates.
func multiValue(values url.Values, key string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, raw := range values[key] {
		for _, v := range strings.Split(raw, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// minPrice defaults to zero when s is missing, malformed or negative.
func minPrice(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// maxPrice is unbounded when s is missing, malformed or negative.
func maxPrice(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
