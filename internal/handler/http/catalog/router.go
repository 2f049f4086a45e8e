package catalog

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/app/catalog"
)

func RegisterRoutes(r chi.Router, s catalog.CatalogService, l *zap.Logger) {
	handler := NewCatalogHandler(s, l.With(zap.String("component", "CatalogHTTPHandler")))

	r.Route("/products", func(r chi.Router) {
		r.Get("/", handler.ListProducts)
		r.Get("/{productID}", handler.GetProduct)
	})
}
