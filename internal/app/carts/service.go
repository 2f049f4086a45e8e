package carts

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/repository/cart_repo"
	"storefront/internal/repository/product_repo"
)

var (
	ErrInvalidCartInput = errors.New("invalid cart input")
	ErrProductNotFound  = errors.New("product not found")
	ErrItemNotInCart    = errors.New("item is not in the cart")
	ErrItemNotFound     = errors.New("item not found in cart")
)

// StockExceededError rejects a cart mutation that would put more units in the
// cart than the product currently has in stock. The mutation is rejected
// whole; quantities are never partially applied.
type StockExceededError struct {
	ProductID string
	Requested int
	Available int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("requested quantity %d exceeds available stock %d for product %s", e.Requested, e.Available, e.ProductID)
}

type CartService interface {
	Get(ctx context.Context, userID string) (*CartView, error)
	AddItem(ctx context.Context, userID string, req *AddItemRequest) (*CartView, error)
	SetItemQuantity(ctx context.Context, userID, productID string, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, productID string) (*CartView, error)
	Clear(ctx context.Context, userID string) error
}

type cartService struct {
	cartRepo    cart_repo.CartRepository
	productRepo product_repo.ProductRepository
	logger      *zap.Logger
}

func NewCartService(cartRepo cart_repo.CartRepository, productRepo product_repo.ProductRepository, logger *zap.Logger) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo, logger: logger}
}

// Get expands the stored line items with live product data. Totals and
// effective prices are computed here on every read, so the view always
// reflects current catalog prices. Items whose product no longer exists are
// dropped silently.
func (s *cartService) Get(ctx context.Context, userID string) (*CartView, error) {
	if userID == "" {
		return nil, ErrInvalidCartInput
	}
	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("user_id", userID), zap.Error(err))
		return nil, errors.New("internal server error")
	}

	ids := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to load products for cart", zap.String("user_id", userID), zap.Error(err))
		return nil, errors.New("internal server error")
	}

	view := &CartView{UserID: userID, Items: []CartItemView{}, Total: decimal.Zero}
	for _, item := range cart.Items {
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}
		effective := product.EffectivePrice()
		subtotal := effective.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Items = append(view.Items, CartItemView{
			ProductID:      product.ID,
			Title:          product.Title,
			ImageURL:       product.ImageURL,
			Quantity:       item.Quantity,
			UnitPrice:      product.Price,
			EffectivePrice: effective,
			Subtotal:       subtotal,
			InStock:        product.InStock(),
		})
		view.ItemCount += item.Quantity
		view.Total = view.Total.Add(subtotal)
	}
	return view, nil
}

// AddItem merges into an existing line item for the same product. The merged
// quantity is checked against current stock and the whole add is rejected
// when it does not fit.
func (s *cartService) AddItem(ctx context.Context, userID string, req *AddItemRequest) (*CartView, error) {
	if userID == "" || req == nil || req.ProductID == "" || req.Quantity <= 0 {
		return nil, ErrInvalidCartInput
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, product_repo.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		s.logger.Error("Failed to load product for cart add", zap.String("product_id", req.ProductID), zap.Error(err))
		return nil, errors.New("internal server error")
	}

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("user_id", userID), zap.Error(err))
		return nil, errors.New("internal server error")
	}

	merged := req.Quantity
	if existing, ok := cart.Find(req.ProductID); ok {
		merged += existing.Quantity
	}
	if merged > product.Stock {
		return nil, &StockExceededError{ProductID: product.ID, Requested: merged, Available: product.Stock}
	}

	if err := s.cartRepo.UpsertItem(ctx, userID, req.ProductID, merged); err != nil {
		return nil, errors.New("internal server error")
	}

	s.logger.Debug("Cart item added",
		zap.String("user_id", userID),
		zap.String("product_id", req.ProductID),
		zap.Int("quantity", merged))
	return s.Get(ctx, userID)
}

func (s *cartService) SetItemQuantity(ctx context.Context, userID, productID string, quantity int) (*CartView, error) {
	if userID == "" || productID == "" || quantity <= 0 {
		return nil, ErrInvalidCartInput
	}

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("user_id", userID), zap.Error(err))
		return nil, errors.New("internal server error")
	}
	if _, ok := cart.Find(productID); !ok {
		return nil, ErrItemNotInCart
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, product_repo.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		s.logger.Error("Failed to load product for cart update", zap.String("product_id", productID), zap.Error(err))
		return nil, errors.New("internal server error")
	}
	if quantity > product.Stock {
		return nil, &StockExceededError{ProductID: productID, Requested: quantity, Available: product.Stock}
	}

	if err := s.cartRepo.UpsertItem(ctx, userID, productID, quantity); err != nil {
		return nil, errors.New("internal server error")
	}
	return s.Get(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID string) (*CartView, error) {
	if userID == "" || productID == "" {
		return nil, ErrInvalidCartInput
	}
	removed, err := s.cartRepo.RemoveItem(ctx, userID, productID)
	if err != nil {
		s.logger.Error("Failed to remove cart item", zap.String("user_id", userID), zap.String("product_id", productID), zap.Error(err))
		return nil, errors.New("internal server error")
	}
	if !removed {
		return nil, ErrItemNotFound
	}
	return s.Get(ctx, userID)
}

// Clear is idempotent; clearing an already-empty cart is a no-op.
func (s *cartService) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidCartInput
	}
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		s.logger.Error("Failed to clear cart", zap.String("user_id", userID), zap.Error(err))
		return errors.New("internal server error")
	}
	return nil
}
