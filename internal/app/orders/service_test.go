package orders_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/app/orders"
	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/repository/memory"
)

func newService(t *testing.T) (orders.OrderService, *memory.Store, *cache.Cache[string, *domain.Order]) {
	t.Helper()
	store := memory.NewStore()
	orderCache := cache.New[string, *domain.Order](time.Minute, time.Minute)
	t.Cleanup(orderCache.Close)
	return orders.NewOrderService(store, orderCache, zap.NewNop()), store, orderCache
}

func seedOrder(store *memory.Store, id, userID string, status domain.OrderStatus, createdAt time.Time) {
	store.SeedOrder(&domain.Order{
		ID:     id,
		UserID: userID,
		Items: []domain.OrderItem{
			{ProductID: "p1", Title: "Widget", Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
		},
		Total:     decimal.NewFromInt(10),
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	})
}

func TestGetOrder(t *testing.T) {
	svc, store, _ := newService(t)
	seedOrder(store, "o1", "u1", domain.OrderStatusPending, time.Now())

	res, err := svc.GetOrder(context.Background(), "u1", "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", res.ID)
	assert.Equal(t, string(domain.OrderStatusPending), res.Status)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].Subtotal.Equal(decimal.NewFromInt(10)))
}

func TestGetOrderScopedToOwner(t *testing.T) {
	svc, store, _ := newService(t)
	seedOrder(store, "o1", "u1", domain.OrderStatusPending, time.Now())

	// Someone else's order id reads as absent, not forbidden.
	_, err := svc.GetOrder(context.Background(), "u2", "o1")
	assert.ErrorIs(t, err, orders.ErrOrderNotFound)
}

func TestGetOrderNotFound(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.GetOrder(context.Background(), "u1", "ghost")
	assert.ErrorIs(t, err, orders.ErrOrderNotFound)
}

func TestGetOrderPopulatesCache(t *testing.T) {
	svc, store, orderCache := newService(t)
	seedOrder(store, "o1", "u1", domain.OrderStatusPending, time.Now())

	_, err := svc.GetOrder(context.Background(), "u1", "o1")
	require.NoError(t, err)

	cached, ok := orderCache.Get("o1")
	require.True(t, ok)
	assert.Equal(t, "o1", cached.ID)
}

func TestListByUserNewestFirst(t *testing.T) {
	svc, store, _ := newService(t)
	base := time.Now()
	for i := 0; i < 5; i++ {
		seedOrder(store, fmt.Sprintf("o%d", i), "u1", domain.OrderStatusPending, base.Add(time.Duration(i)*time.Minute))
	}
	seedOrder(store, "other", "u2", domain.OrderStatusPending, base)

	res, err := svc.ListByUser(context.Background(), "u1", 1, 10, "")
	require.NoError(t, err)
	require.Len(t, res.Orders, 5)
	assert.Equal(t, "o4", res.Orders[0].ID)
	assert.Equal(t, "o0", res.Orders[4].ID)
	assert.Equal(t, int64(5), res.Pagination.TotalCount)
}

func TestListByUserPagination(t *testing.T) {
	svc, store, _ := newService(t)
	base := time.Now()
	for i := 0; i < 7; i++ {
		seedOrder(store, fmt.Sprintf("o%d", i), "u1", domain.OrderStatusPending, base.Add(time.Duration(i)*time.Minute))
	}

	res, err := svc.ListByUser(context.Background(), "u1", 1, 3, "")
	require.NoError(t, err)
	assert.Len(t, res.Orders, 3)
	assert.True(t, res.Pagination.HasNext)
	assert.False(t, res.Pagination.HasPrev)
	assert.Equal(t, 3, res.Pagination.TotalPages)

	res, err = svc.ListByUser(context.Background(), "u1", 3, 3, "")
	require.NoError(t, err)
	assert.Len(t, res.Orders, 1)
	assert.False(t, res.Pagination.HasNext)
	assert.True(t, res.Pagination.HasPrev)
}

func TestListByUserStatusFilter(t *testing.T) {
	svc, store, _ := newService(t)
	base := time.Now()
	seedOrder(store, "o1", "u1", domain.OrderStatusPending, base)
	seedOrder(store, "o2", "u1", domain.OrderStatusPaid, base.Add(time.Minute))
	seedOrder(store, "o3", "u1", domain.OrderStatusPaid, base.Add(2*time.Minute))

	res, err := svc.ListByUser(context.Background(), "u1", 1, 10, "PAID")
	require.NoError(t, err)
	require.Len(t, res.Orders, 2)
	for _, o := range res.Orders {
		assert.Equal(t, string(domain.OrderStatusPaid), o.Status)
	}
}

func TestListByUserRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.ListByUser(context.Background(), "u1", 1, 10, "SHIPPED")
	assert.ErrorIs(t, err, orders.ErrInvalidListArgs)
}

func TestListByUserEmpty(t *testing.T) {
	svc, _, _ := newService(t)
	res, err := svc.ListByUser(context.Background(), "u1", 1, 10, "")
	require.NoError(t, err)
	assert.Empty(t, res.Orders)
	assert.Equal(t, int64(0), res.Pagination.TotalCount)
}
