package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/repository/product_repo"
)

const productColumns = `id, title, description, image_url, price, sale_price, stock, created_at, updated_at`

type pgProductRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewProductRepository(db *sql.DB, l *zap.Logger) product_repo.ProductRepository {
	return &pgProductRepository{db: db, logger: l}
}

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	p := &domain.Product{}
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.ImageURL, &p.Price, &p.SalePrice, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, product_repo.ErrProductNotFound
		}
		r.logger.Error("Failed to get product by ID", zap.String("product_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return p, nil
}

func (r *pgProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error) {
	products := make(map[string]*domain.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		r.logger.Error("Failed to query products by IDs", zap.Error(err))
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error("Failed to scan product row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products[p.ID] = p
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return products, nil
}

func (r *pgProductRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Product, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		r.logger.Error("Failed to count products", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}
	return products, total, nil
}

func (r *pgProductRepository) GetStock(ctx context.Context, id string) (int, error) {
	var stock int
	err := r.db.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, id).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, product_repo.ErrProductNotFound
		}
		r.logger.Error("Failed to get stock", zap.String("product_id", id), zap.Error(err))
		return 0, fmt.Errorf("failed to get stock for product %s: %w", id, err)
	}
	return stock, nil
}

func (r *pgProductRepository) GetStockTx(ctx context.Context, tx *sql.Tx, id string) (int, error) {
	var stock int
	err := tx.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, id).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, product_repo.ErrProductNotFound
		}
		return 0, fmt.Errorf("failed to get stock for product %s: %w", id, err)
	}
	return stock, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// The guard clause makes the check and the decrement one atomic statement.
// Zero rows affected means either insufficient stock or a missing product;
// the follow-up read disambiguates.
const decrementQuery = `UPDATE products
	 SET stock = stock - $1, updated_at = NOW()
	 WHERE id = $2 AND stock >= $1`

func (r *pgProductRepository) decrement(ctx context.Context, ex execer, stockReader func() (int, error), id string, quantity int) error {
	res, err := ex.ExecContext(ctx, decrementQuery, quantity, id)
	if err != nil {
		r.logger.Error("Failed to decrement stock", zap.String("product_id", id), zap.Int("quantity", quantity), zap.Error(err))
		return fmt.Errorf("failed to decrement stock for product %s: %w", id, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check decrement result: %w", err)
	}
	if rowsAffected == 0 {
		if _, err := stockReader(); err != nil {
			return err
		}
		return product_repo.ErrInsufficientStock
	}
	r.logger.Debug("Stock decremented", zap.String("product_id", id), zap.Int("quantity", quantity))
	return nil
}

func (r *pgProductRepository) DecrementStock(ctx context.Context, id string, quantity int) error {
	return r.decrement(ctx, r.db, func() (int, error) { return r.GetStock(ctx, id) }, id, quantity)
}

func (r *pgProductRepository) DecrementStockTx(ctx context.Context, tx *sql.Tx, id string, quantity int) error {
	return r.decrement(ctx, tx, func() (int, error) { return r.GetStockTx(ctx, tx, id) }, id, quantity)
}
