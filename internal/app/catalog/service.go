package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/paging"
	"storefront/internal/repository/product_repo"
)

var ErrProductNotFound = errors.New("product not found")

type CatalogService interface {
	ListProducts(ctx context.Context, page, pageSize int) (*ProductListResponse, error)
	GetProduct(ctx context.Context, productID string) (*ProductResponse, error)
	// GetStock always reads the live row; stock is never answered from cache.
	GetStock(ctx context.Context, productID string) (int, error)
}

type catalogService struct {
	productRepo  product_repo.ProductRepository
	productCache *cache.Cache[string, *domain.Product]
	logger       *zap.Logger
}

func NewCatalogService(productRepo product_repo.ProductRepository, productCache *cache.Cache[string, *domain.Product], logger *zap.Logger) CatalogService {
	return &catalogService{productRepo: productRepo, productCache: productCache, logger: logger}
}

func (s *catalogService) ListProducts(ctx context.Context, page, pageSize int) (*ProductListResponse, error) {
	page, pageSize = paging.Clamp(page, pageSize)

	products, total, err := s.productRepo.List(ctx, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, errors.New("internal server error")
	}

	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = mapProductToResponse(p)
	}
	return &ProductListResponse{
		Products:   responses,
		Pagination: paging.New(page, pageSize, total),
	}, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (*ProductResponse, error) {
	if productID == "" {
		return nil, ErrProductNotFound
	}

	product, ok := s.productCache.Get(productID)
	if !ok {
		var err error
		product, err = s.productRepo.GetByID(ctx, productID)
		if err != nil {
			if errors.Is(err, product_repo.ErrProductNotFound) {
				return nil, ErrProductNotFound
			}
			s.logger.Error("Failed to get product", zap.String("product_id", productID), zap.Error(err))
			return nil, errors.New("internal server error")
		}
		s.productCache.Set(productID, product)
	}
	return mapProductToResponse(product), nil
}

func (s *catalogService) GetStock(ctx context.Context, productID string) (int, error) {
	stock, err := s.productRepo.GetStock(ctx, productID)
	if err != nil {
		if errors.Is(err, product_repo.ErrProductNotFound) {
			return 0, ErrProductNotFound
		}
		s.logger.Error("Failed to get stock", zap.String("product_id", productID), zap.Error(err))
		return 0, errors.New("internal server error")
	}
	return stock, nil
}
