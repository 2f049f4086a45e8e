package carts

import "github.com/shopspring/decimal"

// CartItemView is a line item expanded with live product data. Prices are
// whatever the catalog says right now; nothing here is stored.
type CartItemView struct {
	ProductID      string          `json:"product_id"`
	Title          string          `json:"title"`
	ImageURL       string          `json:"image_url,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	InStock        bool            `json:"in_stock"`
}

type CartView struct {
	UserID    string          `json:"user_id"`
	Items     []CartItemView  `json:"items"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}
