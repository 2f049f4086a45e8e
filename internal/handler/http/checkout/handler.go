package checkout

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"storefront/internal/app/checkout"
	"storefront/internal/handler/http/api"
	"storefront/internal/handler/http/middleware"
)

type CheckoutHandler struct {
	service checkout.CheckoutService
	logger  *zap.Logger
}

func NewCheckoutHandler(s checkout.CheckoutService, l *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: s, logger: l}
}

func (h *CheckoutHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req checkout.InitiateCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for Initiate", zap.Error(err))
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.InitiateCheckout(r.Context(), userID, &req)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}
	api.Created(w, res)
}

func (h *CheckoutHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var req checkout.CaptureCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for Capture", zap.Error(err))
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.CaptureCheckout(r.Context(), &req)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}
	api.OK(w, res)
}

func (h *CheckoutHandler) writeCheckoutError(w http.ResponseWriter, err error) {
	var stockErr *checkout.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		api.Error(w, http.StatusConflict,
			fmt.Sprintf("insufficient stock for %q: requested %d, only %d available", stockErr.Title, stockErr.Requested, stockErr.Available))
	case errors.Is(err, checkout.ErrInvalidCheckout):
		api.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrProductNotFound), errors.Is(err, checkout.ErrOrderNotFound):
		api.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, checkout.ErrOrderNotCapturable):
		api.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrPaymentInitiationFailed), errors.Is(err, checkout.ErrPaymentCaptureFailed):
		api.Error(w, http.StatusBadGateway, "payment failed, please try again")
	default:
		h.logger.Error("Checkout error", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
