package carts

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/app/carts"
	"storefront/internal/handler/http/api"
	"storefront/internal/handler/http/middleware"
)

type CartHandler struct {
	service carts.CartService
	logger  *zap.Logger
}

func NewCartHandler(s carts.CartService, l *zap.Logger) *CartHandler {
	return &CartHandler{service: s, logger: l}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	view, err := h.service.Get(r.Context(), userID)
	if err != nil {
		h.writeCartError(w, err)
		return
	}
	api.OK(w, view)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req carts.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for AddItem", zap.Error(err))
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.service.AddItem(r.Context(), userID, &req)
	if err != nil {
		h.writeCartError(w, err)
		return
	}
	api.OK(w, view)
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	productID := chi.URLParam(r, "productID")

	var req carts.SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for SetQuantity", zap.Error(err))
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.service.SetItemQuantity(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		h.writeCartError(w, err)
		return
	}
	api.OK(w, view)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	productID := chi.URLParam(r, "productID")

	view, err := h.service.RemoveItem(r.Context(), userID, productID)
	if err != nil {
		h.writeCartError(w, err)
		return
	}
	api.OK(w, view)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if err := h.service.Clear(r.Context(), userID); err != nil {
		h.writeCartError(w, err)
		return
	}
	api.OK(w, map[string]string{"status": "cleared"})
}

func (h *CartHandler) writeCartError(w http.ResponseWriter, err error) {
	var stockErr *carts.StockExceededError
	switch {
	case errors.As(err, &stockErr):
		api.Error(w, http.StatusConflict,
			fmt.Sprintf("requested quantity %d exceeds available stock %d", stockErr.Requested, stockErr.Available))
	case errors.Is(err, carts.ErrInvalidCartInput):
		api.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, carts.ErrProductNotFound), errors.Is(err, carts.ErrItemNotFound):
		api.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, carts.ErrItemNotInCart):
		api.Error(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("Cart error", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
