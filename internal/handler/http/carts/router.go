package carts

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/app/carts"
)

func RegisterRoutes(r chi.Router, s carts.CartService, l *zap.Logger) {
	handler := NewCartHandler(s, l.With(zap.String("component", "CartHTTPHandler")))

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Post("/items", handler.AddItem)
		r.Put("/items/{productID}", handler.SetQuantity)
		r.Delete("/items/{productID}", handler.RemoveItem)
		r.Post("/clear", handler.Clear)
	})
}
