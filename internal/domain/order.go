package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type OrderItem struct {
	ProductID string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Address struct {
	FullName   string
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Country    string
}

type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	Address         Address
	Total           decimal.Decimal
	Status          OrderStatus
	PaymentIntentID string
	PaymentID       string
	PayerID         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewOrder builds a PENDING order. The total is derived from the item
// snapshots here and never recomputed afterwards.
func NewOrder(id, userID string, items []OrderItem, address Address, paymentIntentID string) (*Order, error) {
	if id == "" || userID == "" || len(items) == 0 {
		return nil, errors.New("invalid order data")
	}
	total := decimal.Zero
	for _, item := range items {
		if item.ProductID == "" || item.Quantity <= 0 || item.UnitPrice.IsNegative() {
			return nil, errors.New("invalid order item")
		}
		total = total.Add(item.Subtotal())
	}
	now := time.Now()
	return &Order{
		ID:              id,
		UserID:          userID,
		Items:           items,
		Address:         address,
		Total:           total,
		Status:          OrderStatusPending,
		PaymentIntentID: paymentIntentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (o *Order) MarkAsPaid(paymentID, payerID string) error {
	if o.Status != OrderStatusPending {
		return errors.New("order must be PENDING to become PAID")
	}
	if paymentID == "" {
		return errors.New("payment id is required to mark an order paid")
	}
	o.Status = OrderStatusPaid
	o.PaymentID = paymentID
	o.PayerID = payerID
	o.UpdatedAt = time.Now()
	return nil
}

func (o *Order) MarkAsCancelled() error {
	if o.Status == OrderStatusPaid {
		return errors.New("cannot cancel a paid order")
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now()
	return nil
}
