package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/repository/order_repo"
	"storefront/internal/repository/outbox_repo"
)

const orderColumns = `id, user_id, total, status, payment_intent_id, payment_id, payer_id,
	ship_full_name, ship_line1, ship_line2, ship_city, ship_postal_code, ship_country,
	created_at, updated_at`

type pgOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewOrderRepository(db *sql.DB, l *zap.Logger) order_repo.OrderRepository {
	return &pgOrderRepository{db: db, logger: l}
}

func (r *pgOrderRepository) CreateOrderAndOutboxMessage(ctx context.Context, order *domain.Order, msg *outbox_repo.OutboxMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction for order creation", zap.String("order_id", order.ID), zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			r.logger.Warn("Rolling back order creation transaction", zap.String("order_id", order.ID), zap.Error(err))
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
			if err != nil {
				r.logger.Error("Failed to commit order creation transaction", zap.String("order_id", order.ID), zap.Error(err))
			}
		}
	}()

	if err = r.insertOrderTx(ctx, tx, order); err != nil {
		return err
	}

	outboxQuery := `INSERT INTO outbox_messages (id, order_id, topic, payload, status, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = tx.ExecContext(ctx, outboxQuery, msg.ID, msg.OrderID, msg.Topic, msg.Payload, msg.Status, msg.CreatedAt)
	if err != nil {
		err = fmt.Errorf("tx failed to create outbox message: %w", err)
		return err
	}

	return err
}

func (r *pgOrderRepository) insertOrderTx(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	orderQuery := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := tx.ExecContext(ctx, orderQuery,
		order.ID, order.UserID, order.Total, order.Status,
		order.PaymentIntentID, order.PaymentID, order.PayerID,
		order.Address.FullName, order.Address.Line1, order.Address.Line2,
		order.Address.City, order.Address.PostalCode, order.Address.Country,
		order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("tx failed to create order: %w", err)
	}

	itemQuery := `INSERT INTO order_items (order_id, product_id, title, quantity, unit_price) VALUES ($1, $2, $3, $4, $5)`
	for _, item := range order.Items {
		if _, err := tx.ExecContext(ctx, itemQuery, order.ID, item.ProductID, item.Title, item.Quantity, item.UnitPrice); err != nil {
			return fmt.Errorf("tx failed to create order item: %w", err)
		}
	}
	return nil
}

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID, &order.UserID, &order.Total, &order.Status,
		&order.PaymentIntentID, &order.PaymentID, &order.PayerID,
		&order.Address.FullName, &order.Address.Line1, &order.Address.Line2,
		&order.Address.City, &order.Address.PostalCode, &order.Address.Country,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *pgOrderRepository) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order_repo.ErrOrderNotFound
		}
		r.logger.Error("Failed to get order by ID", zap.String("order_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}

	items, err := r.loadItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	return order, nil
}

func (r *pgOrderRepository) ListByUser(ctx context.Context, userID string, page, pageSize int, filter order_repo.ListFilter) ([]*domain.Order, int64, error) {
	countQuery := `SELECT COUNT(*) FROM orders WHERE user_id = $1`
	listQuery := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1`
	args := []any{userID}
	if filter.Status != nil {
		countQuery += ` AND status = $2`
		listQuery += ` AND status = $2`
		args = append(args, *filter.Status)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count orders for user", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count orders for user %s: %w", userID, err)
	}

	offset := (page - 1) * pageSize
	listQuery += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		r.logger.Error("Failed to query orders for user", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to get orders by user ID %s: %w", userID, err)
	}
	defer rows.Close()

	var orders []*domain.Order
	var ids []string
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, order := range orders {
		order.Items = items[order.ID]
	}
	return orders, total, nil
}

func (r *pgOrderRepository) loadItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	items := make(map[string][]domain.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return items, nil
	}
	query := `SELECT order_id, product_id, title, quantity, unit_price FROM order_items WHERE order_id = ANY($1) ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(orderIDs))
	if err != nil {
		r.logger.Error("Failed to query order items", zap.Error(err))
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.Title, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item row: %w", err)
		}
		items[orderID] = append(items[orderID], item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return items, nil
}

func (r *pgOrderRepository) UpdateOrder(ctx context.Context, order *domain.Order) error {
	query := `UPDATE orders SET status = $2, payment_id = $3, payer_id = $4, updated_at = $5 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, order.ID, order.Status, order.PaymentID, order.PayerID, order.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to update order", zap.String("order_id", order.ID), zap.Error(err))
		return fmt.Errorf("failed to update order %s: %w", order.ID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		return order_repo.ErrOrderNotFound
	}
	r.logger.Debug("Order updated", zap.String("order_id", order.ID), zap.String("new_status", string(order.Status)))
	return nil
}

func (r *pgOrderRepository) MarkPaidTx(ctx context.Context, tx *sql.Tx, orderID, paymentID, payerID string, at time.Time) (bool, error) {
	query := `UPDATE orders SET status = $2, payment_id = $3, payer_id = $4, updated_at = $5 WHERE id = $1 AND status = $6`
	res, err := tx.ExecContext(ctx, query, orderID, domain.OrderStatusPaid, paymentID, payerID, at, domain.OrderStatusPending)
	if err != nil {
		r.logger.Error("Failed to mark order paid", zap.String("order_id", orderID), zap.Error(err))
		return false, fmt.Errorf("failed to mark order %s paid: %w", orderID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check mark-paid result: %w", err)
	}
	return rowsAffected == 1, nil
}
