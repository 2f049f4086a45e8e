package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/repository/cart_repo"
)

type pgCartRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewCartRepository(db *sql.DB, l *zap.Logger) cart_repo.CartRepository {
	return &pgCartRepository{db: db, logger: l}
}

func (r *pgCartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	cart := &domain.Cart{UserID: userID}
	query := `SELECT product_id, quantity, updated_at FROM cart_items WHERE user_id = $1 ORDER BY added_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query cart items", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		var updatedAt time.Time
		if err := rows.Scan(&item.ProductID, &item.Quantity, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart item row: %w", err)
		}
		if updatedAt.After(cart.UpdatedAt) {
			cart.UpdatedAt = updatedAt
		}
		cart.Items = append(cart.Items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return cart, nil
}

func (r *pgCartRepository) UpsertItem(ctx context.Context, userID, productID string, quantity int) error {
	query := `INSERT INTO cart_items (user_id, product_id, quantity, added_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = $3, updated_at = NOW()`
	_, err := r.db.ExecContext(ctx, query, userID, productID, quantity)
	if err != nil {
		r.logger.Error("Failed to upsert cart item", zap.String("user_id", userID), zap.String("product_id", productID), zap.Error(err))
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}
	return nil
}

func (r *pgCartRepository) RemoveItem(ctx context.Context, userID, productID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		r.logger.Error("Failed to remove cart item", zap.String("user_id", userID), zap.String("product_id", productID), zap.Error(err))
		return false, fmt.Errorf("failed to remove cart item: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check remove result: %w", err)
	}
	return rowsAffected > 0, nil
}

func (r *pgCartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error("Failed to clear cart", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
