package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/paging"
)

type OrderItemResponse struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type AddressResponse struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type OrderResponse struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id"`
	Items     []OrderItemResponse `json:"items"`
	Address   AddressResponse     `json:"address"`
	Total     decimal.Decimal     `json:"total"`
	Status    string              `json:"status"`
	PaymentID string              `json:"payment_id,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type OrderListResponse struct {
	Orders     []*OrderResponse  `json:"orders"`
	Pagination paging.Pagination `json:"pagination"`
}

func mapOrderToResponse(order *domain.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		}
	}
	return &OrderResponse{
		ID:        order.ID,
		UserID:    order.UserID,
		Items:     items,
		Address:   AddressResponse(order.Address),
		Total:     order.Total,
		Status:    string(order.Status),
		PaymentID: order.PaymentID,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}
