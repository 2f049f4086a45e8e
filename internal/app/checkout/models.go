package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

type CheckoutItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type AddressInfo struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type InitiateCheckoutRequest struct {
	Items   []CheckoutItem  `json:"items"`
	Address AddressInfo     `json:"address"`
	Total   decimal.Decimal `json:"total"`
}

type InitiateCheckoutResponse struct {
	OrderID         string `json:"order_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	ApprovalURL     string `json:"approval_url"`
}

type CaptureCheckoutRequest struct {
	PaymentID string `json:"payment_id"`
	PayerID   string `json:"payer_id"`
	OrderID   string `json:"order_id"`
}

type CaptureCheckoutResponse struct {
	OrderID         string `json:"order_id"`
	Status          string `json:"status"`
	AlreadyCaptured bool   `json:"already_captured"`
}

// OrderEvent is the payload staged in the outbox for order lifecycle changes.
type OrderEvent struct {
	Event     string    `json:"event"` // "order.created" | "order.paid"
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Total     string    `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventOrderCreated = "order.created"
	EventOrderPaid    = "order.paid"
)
