package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/marketplace/internal/service"
	apperrors "github.com/utafrali/marketplace/pkg/errors"
	"github.com/utafrali/marketplace/pkg/httputil"
	"github.com/utafrali/marketplace/pkg/middleware"
)

// StoreHandler serves a seller's read-only view of their store's shipping
// configuration.
type StoreHandler struct {
	service *service.ShippingService
	logger  *slog.Logger
}

// NewStoreHandler creates a new store HTTP handler.
func NewStoreHandler(svc *service.ShippingService, logger *slog.Logger) *StoreHandler {
	return &StoreHandler{
		service: svc,
		logger:  logger,
	}
}

// GetShipping handles GET /api/v1/seller/stores/{storeUrl}/shipping
func (h *StoreHandler) GetShipping(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	details, err := h.service.GetStoreShipping(r.Context(), actor.ID, chi.URLParam(r, "storeUrl"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: details})
}

// ListShippingRates handles GET /api/v1/seller/stores/{storeUrl}/shipping-rates
func (h *StoreHandler) ListShippingRates(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	rates, err := h.service.ListCountryRates(r.Context(), actor.ID, chi.URLParam(r, "storeUrl"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: rates})
}
