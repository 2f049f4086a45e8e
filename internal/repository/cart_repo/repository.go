package cart_repo

import (
	"context"

	"storefront/internal/domain"
)

// CartRepository stores the raw per-user line items. Cart-level semantics
// (merge rules, stock limits) live in the carts service.
type CartRepository interface {
	// Get returns an empty cart when the user has none; "no cart" is never
	// an error.
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertItem(ctx context.Context, userID, productID string, quantity int) error
	// RemoveItem reports whether a line item was actually removed.
	RemoveItem(ctx context.Context, userID, productID string) (bool, error)
	Clear(ctx context.Context, userID string) error
}
