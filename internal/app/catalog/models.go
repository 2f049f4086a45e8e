package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/paging"
)

type ProductResponse struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	ImageURL       string          `json:"image_url,omitempty"`
	Price          decimal.Decimal `json:"price"`
	SalePrice      decimal.Decimal `json:"sale_price,omitempty"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	InStock        bool            `json:"in_stock"`
	CreatedAt      time.Time       `json:"created_at"`
}

type ProductListResponse struct {
	Products   []*ProductResponse `json:"products"`
	Pagination paging.Pagination  `json:"pagination"`
}

func mapProductToResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		ImageURL:       p.ImageURL,
		Price:          p.Price,
		SalePrice:      p.SalePrice,
		EffectivePrice: p.EffectivePrice(),
		InStock:        p.InStock(),
		CreatedAt:      p.CreatedAt,
	}
}
