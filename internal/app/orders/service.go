package orders

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/paging"
	"storefront/internal/repository/order_repo"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidListArgs = errors.New("invalid list arguments")
)

type OrderService interface {
	GetOrder(ctx context.Context, userID, orderID string) (*OrderResponse, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int, status string) (*OrderListResponse, error)
}

type orderService struct {
	orderRepo  order_repo.OrderRepository
	orderCache *cache.Cache[string, *domain.Order]
	logger     *zap.Logger
}

func NewOrderService(orderRepo order_repo.OrderRepository, orderCache *cache.Cache[string, *domain.Order], logger *zap.Logger) OrderService {
	return &orderService{orderRepo: orderRepo, orderCache: orderCache, logger: logger}
}

// GetOrder reads through the advisory order cache. The cache is invalidated
// by every write path (capture), so a hit can only be stale within its TTL
// and only for fields nothing decides on.
func (s *orderService) GetOrder(ctx context.Context, userID, orderID string) (*OrderResponse, error) {
	if userID == "" || orderID == "" {
		return nil, ErrOrderNotFound
	}

	order, ok := s.orderCache.Get(orderID)
	if !ok {
		var err error
		order, err = s.orderRepo.GetOrderByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, order_repo.ErrOrderNotFound) {
				return nil, ErrOrderNotFound
			}
			s.logger.Error("Failed to get order", zap.String("order_id", orderID), zap.Error(err))
			return nil, errors.New("internal server error")
		}
		s.orderCache.Set(orderID, order)
	}

	// Orders are scoped to their owner; someone else's id reads as absent.
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return mapOrderToResponse(order), nil
}

func (s *orderService) ListByUser(ctx context.Context, userID string, page, pageSize int, status string) (*OrderListResponse, error) {
	if userID == "" {
		return nil, ErrInvalidListArgs
	}
	page, pageSize = paging.Clamp(page, pageSize)

	filter := order_repo.ListFilter{}
	if status != "" {
		orderStatus, err := parseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = &orderStatus
	}

	orders, total, err := s.orderRepo.ListByUser(ctx, userID, page, pageSize, filter)
	if err != nil {
		s.logger.Error("Failed to list orders for user", zap.String("user_id", userID), zap.Error(err))
		return nil, errors.New("internal server error")
	}

	responses := make([]*OrderResponse, len(orders))
	for i, order := range orders {
		responses[i] = mapOrderToResponse(order)
	}
	return &OrderListResponse{
		Orders:     responses,
		Pagination: paging.New(page, pageSize, total),
	}, nil
}

func parseStatus(raw string) (domain.OrderStatus, error) {
	switch domain.OrderStatus(raw) {
	case domain.OrderStatusPending, domain.OrderStatusPaid, domain.OrderStatusCancelled:
		return domain.OrderStatus(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidListArgs, raw)
	}
}
