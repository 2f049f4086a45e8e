package order_repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository/outbox_repo"
)

var ErrOrderNotFound = errors.New("order not found")

// ListFilter narrows ListByUser. A nil Status means all statuses.
type ListFilter struct {
	Status *domain.OrderStatus
}

type OrderRepository interface {
	// CreateOrderAndOutboxMessage persists the order and its outbox event in
	// one transaction so an order row never exists without its event.
	CreateOrderAndOutboxMessage(ctx context.Context, order *domain.Order, msg *outbox_repo.OutboxMessage) error
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int, filter ListFilter) ([]*domain.Order, int64, error)
	UpdateOrder(ctx context.Context, order *domain.Order) error
	// MarkPaidTx claims the PENDING -> PAID transition inside tx. It reports
	// false when the order was not PENDING, which is how concurrent captures
	// of the same order lose the race.
	MarkPaidTx(ctx context.Context, tx *sql.Tx, orderID, paymentID, payerID string, at time.Time) (bool, error)
}
