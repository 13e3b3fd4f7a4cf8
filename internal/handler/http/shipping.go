package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/marketplace/internal/service"
	"github.com/utafrali/marketplace/pkg/httputil"
	"github.com/utafrali/marketplace/pkg/middleware"
)

// ShippingHandler handles shipping quote requests.
type ShippingHandler struct {
	service *service.ShippingService
	logger  *slog.Logger
}

// NewShippingHandler creates a new shipping HTTP handler.
func NewShippingHandler(svc *service.ShippingService, logger *slog.Logger) *ShippingHandler {
	return &ShippingHandler{
		service: svc,
		logger:  logger,
	}
}

// Quote handles GET /api/v1/products/{slug}/shipping
//
// The destination comes from the Country middleware. quantity defaults to
// 1 and weight to the selected variant's weight.
func (h *ShippingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	input := service.QuoteInput{
		ProductSlug: chi.URLParam(r, "slug"),
		Variant:     values.Get("variant"),
		Quantity:    1,
	}

	if v := values.Get("quantity"); v != "" {
		qty, err := strconv.Atoi(v)
		if err != nil {
			httputil.WriteBadParameter(w, r, "quantity must be a valid integer")
			return
		}
		input.Quantity = qty
	}
	if v := values.Get("weight"); v != "" {
		weight, err := decimal.NewFromString(v)
		if err != nil {
			httputil.WriteBadParameter(w, r, "weight must be a valid number")
			return
		}
		input.Weight = &weight
	}
	if hint, ok := middleware.CountryFromContext(r.Context()); ok {
		input.Destination = service.Destination{Code: hint.Code, Name: hint.Name}
	}

	quote, err := h.service.Quote(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: quote})
}
