package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func TestNewOrder(t *testing.T) {
	items := []domain.OrderItem{
		{ProductID: "p1", Title: "Mug", Quantity: 2, UnitPrice: decimal.NewFromFloat(9.50)},
		{ProductID: "p2", Title: "Poster", Quantity: 1, UnitPrice: decimal.NewFromFloat(14.99)},
	}
	address := domain.Address{Line1: "1 Main St", City: "Springfield", Country: "US"}

	order, err := domain.NewOrder("o1", "u1", items, address, "PAY-1")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "PAY-1", order.PaymentIntentID)
	assert.True(t, order.Total.Equal(decimal.NewFromFloat(33.99)), "total = %s", order.Total)
	assert.False(t, order.CreatedAt.IsZero())
}

func TestNewOrderRejectsBadInput(t *testing.T) {
	valid := []domain.OrderItem{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(5)}}

	tests := []struct {
		name   string
		id     string
		userID string
		items  []domain.OrderItem
	}{
		{"empty id", "", "u1", valid},
		{"empty user", "o1", "", valid},
		{"no items", "o1", "u1", nil},
		{"zero quantity", "o1", "u1", []domain.OrderItem{{ProductID: "p1", Quantity: 0, UnitPrice: decimal.NewFromInt(5)}}},
		{"negative price", "o1", "u1", []domain.OrderItem{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}}},
		{"missing product id", "o1", "u1", []domain.OrderItem{{Quantity: 1, UnitPrice: decimal.NewFromInt(5)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewOrder(tt.id, tt.userID, tt.items, domain.Address{}, "PAY-1")
			assert.Error(t, err)
		})
	}
}

func TestOrderMarkAsPaid(t *testing.T) {
	order := pendingOrder(t)

	require.NoError(t, order.MarkAsPaid("PAY-1", "PAYER-1"))
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.Equal(t, "PAY-1", order.PaymentID)
	assert.Equal(t, "PAYER-1", order.PayerID)

	// Paid is terminal for both transitions.
	assert.Error(t, order.MarkAsPaid("PAY-2", "PAYER-1"))
	assert.Error(t, order.MarkAsCancelled())
	assert.Equal(t, "PAY-1", order.PaymentID)
}

func TestOrderMarkAsPaidRequiresPaymentID(t *testing.T) {
	order := pendingOrder(t)
	assert.Error(t, order.MarkAsPaid("", "PAYER-1"))
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestOrderMarkAsCancelled(t *testing.T) {
	order := pendingOrder(t)
	require.NoError(t, order.MarkAsCancelled())
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)

	// Cancelling again is rejected only when paid; a cancelled order stays
	// cancelled without error.
	assert.NoError(t, order.MarkAsCancelled())
}

func TestOrderItemSubtotal(t *testing.T) {
	item := domain.OrderItem{ProductID: "p1", Quantity: 3, UnitPrice: decimal.NewFromFloat(2.50)}
	assert.True(t, item.Subtotal().Equal(decimal.NewFromFloat(7.50)))
}

func pendingOrder(t *testing.T) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder("o1", "u1",
		[]domain.OrderItem{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
		domain.Address{Line1: "1 Main St", City: "Springfield", Country: "US"},
		"PAY-1")
	require.NoError(t, err)
	return order
}
