package product_repo

import (
	"context"
	"database/sql"
	"errors"

	"storefront/internal/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductRepository is the inventory store. DecrementStock must
// check-then-decrement as one conditional statement so that concurrent
// decrements against the same product can never drive stock negative.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Product, int64, error)
	GetStock(ctx context.Context, id string) (int, error)
	DecrementStock(ctx context.Context, id string, quantity int) error
	DecrementStockTx(ctx context.Context, tx *sql.Tx, id string, quantity int) error
	GetStockTx(ctx context.Context, tx *sql.Tx, id string) (int, error)
}
