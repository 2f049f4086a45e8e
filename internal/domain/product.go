package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string
	Title       string
	Description string
	ImageURL    string
	Price       decimal.Decimal
	SalePrice   decimal.Decimal
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EffectivePrice is the sale price when one is set, the list price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.IsPositive() {
		return p.SalePrice
	}
	return p.Price
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}
