package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/app/catalog"
	"storefront/internal/handler/http/api"
)

type CatalogHandler struct {
	service catalog.CatalogService
	logger  *zap.Logger
}

func NewCatalogHandler(s catalog.CatalogService, l *zap.Logger) *CatalogHandler {
	return &CatalogHandler{service: s, logger: l}
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	res, err := h.service.ListProducts(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("Error listing products", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	api.OKPaginated(w, res.Products, res.Pagination)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	res, err := h.service.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			api.Error(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Error getting product", zap.String("product_id", productID), zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	api.OK(w, res)
}
