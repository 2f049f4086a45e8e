package checkout

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/app/checkout"
)

func RegisterRoutes(r chi.Router, s checkout.CheckoutService, l *zap.Logger) {
	handler := NewCheckoutHandler(s, l.With(zap.String("component", "CheckoutHTTPHandler")))

	r.Route("/checkout", func(r chi.Router) {
		r.Post("/", handler.Initiate)
		r.Post("/capture", handler.Capture)
	})
}
