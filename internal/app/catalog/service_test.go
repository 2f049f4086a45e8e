package catalog_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/app/catalog"
	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/repository/memory"
)

func newService(t *testing.T) (catalog.CatalogService, *memory.Store, *cache.Cache[string, *domain.Product]) {
	t.Helper()
	store := memory.NewStore()
	productCache := cache.New[string, *domain.Product](time.Minute, time.Minute)
	t.Cleanup(productCache.Close)
	return catalog.NewCatalogService(store, productCache, zap.NewNop()), store, productCache
}

func TestGetProduct(t *testing.T) {
	svc, store, _ := newService(t)
	store.SeedProduct(&domain.Product{
		ID:        "p1",
		Title:     "Mug",
		Price:     decimal.NewFromFloat(20.00),
		SalePrice: decimal.NewFromFloat(15.00),
		Stock:     3,
	})

	res, err := svc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Mug", res.Title)
	assert.True(t, res.EffectivePrice.Equal(decimal.NewFromFloat(15.00)))
	assert.True(t, res.InStock)
}

func TestGetProductNotFound(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.GetProduct(context.Background(), "ghost")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	_, err = svc.GetProduct(context.Background(), "")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestGetProductReadsThroughCache(t *testing.T) {
	svc, store, productCache := newService(t)
	store.SeedProduct(&domain.Product{ID: "p1", Title: "Mug", Price: decimal.NewFromInt(20), Stock: 3})

	_, err := svc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	_, ok := productCache.Get("p1")
	assert.True(t, ok)

	// A stale cached row is served until invalidated or expired.
	store.SeedProduct(&domain.Product{ID: "p1", Title: "Renamed", Price: decimal.NewFromInt(20), Stock: 3})
	res, err := svc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Mug", res.Title)

	productCache.Invalidate("p1")
	res, err = svc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", res.Title)
}

func TestGetStockBypassesCache(t *testing.T) {
	svc, store, productCache := newService(t)
	store.SeedProduct(&domain.Product{ID: "p1", Title: "Mug", Price: decimal.NewFromInt(20), Stock: 5})

	// Warm the cache with the old stock value.
	_, err := svc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)

	require.NoError(t, store.DecrementStock(context.Background(), "p1", 3))

	stock, err := svc.GetStock(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, stock, "stock reads must hit the live row, not the cache")

	cached, ok := productCache.Get("p1")
	require.True(t, ok)
	assert.Equal(t, 5, cached.Stock, "the stale cache entry is allowed to exist")
}

func TestListProducts(t *testing.T) {
	svc, store, _ := newService(t)
	base := time.Now()
	for i := 0; i < 5; i++ {
		store.SeedProduct(&domain.Product{
			ID:        fmt.Sprintf("p%d", i),
			Title:     fmt.Sprintf("Product %d", i),
			Price:     decimal.NewFromInt(10),
			Stock:     1,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	res, err := svc.ListProducts(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Len(t, res.Products, 3)
	assert.Equal(t, int64(5), res.Pagination.TotalCount)
	assert.True(t, res.Pagination.HasNext)
}
