package orders

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/app/orders"
	"storefront/internal/handler/http/api"
	"storefront/internal/handler/http/middleware"
)

type OrderHandler struct {
	service orders.OrderService
	logger  *zap.Logger
}

func NewOrderHandler(s orders.OrderService, l *zap.Logger) *OrderHandler {
	return &OrderHandler{service: s, logger: l}
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	orderID := chi.URLParam(r, "orderID")

	res, err := h.service.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			api.Error(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Error getting order", zap.String("order_id", orderID), zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	api.OK(w, res)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	status := r.URL.Query().Get("status")

	res, err := h.service.ListByUser(r.Context(), userID, page, pageSize, status)
	if err != nil {
		if errors.Is(err, orders.ErrInvalidListArgs) {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Error listing orders", zap.String("user_id", userID), zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	api.OKPaginated(w, res.Orders, res.Pagination)
}
