package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/repository/cart_repo"
	"storefront/internal/repository/order_repo"
	"storefront/internal/repository/outbox_repo"
	"storefront/internal/repository/product_repo"
	"storefront/internal/util"
)

var (
	ErrInvalidCheckout         = errors.New("invalid checkout request")
	ErrOrderNotFound           = errors.New("order not found")
	ErrProductNotFound         = errors.New("product not found")
	ErrOrderNotCapturable      = errors.New("order is not awaiting payment")
	ErrPaymentInitiationFailed = errors.New("payment initiation failed")
	ErrPaymentCaptureFailed    = errors.New("payment capture failed")
)

// InsufficientStockError names the first offending product and how many
// units are actually available.
type InsufficientStockError struct {
	ProductID string
	Title     string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, only %d available", e.ProductID, e.Requested, e.Available)
}

type CheckoutService interface {
	InitiateCheckout(ctx context.Context, userID string, req *InitiateCheckoutRequest) (*InitiateCheckoutResponse, error)
	CaptureCheckout(ctx context.Context, req *CaptureCheckoutRequest) (*CaptureCheckoutResponse, error)
}

// TxManager runs fn inside one storage transaction: commit when fn returns
// nil, roll everything back otherwise.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// Options carries the checkout wiring that comes from configuration rather
// than from collaborators.
type Options struct {
	EventTopic     string
	ReturnURL      string
	CancelURL      string
	GatewayTimeout time.Duration
}

type checkoutService struct {
	txm          TxManager
	orderRepo    order_repo.OrderRepository
	productRepo  product_repo.ProductRepository
	cartRepo     cart_repo.CartRepository
	outboxRepo   outbox_repo.OutboxRepository
	gateway      payment.Gateway
	productCache *cache.Cache[string, *domain.Product]
	orderCache   *cache.Cache[string, *domain.Order]
	opts         Options
	logger       *zap.Logger
}

func NewCheckoutService(
	txm TxManager,
	orderRepo order_repo.OrderRepository,
	productRepo product_repo.ProductRepository,
	cartRepo cart_repo.CartRepository,
	outboxRepo outbox_repo.OutboxRepository,
	gateway payment.Gateway,
	productCache *cache.Cache[string, *domain.Product],
	orderCache *cache.Cache[string, *domain.Order],
	opts Options,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		txm:          txm,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		cartRepo:     cartRepo,
		outboxRepo:   outboxRepo,
		gateway:      gateway,
		productCache: productCache,
		orderCache:   orderCache,
		opts:         opts,
		logger:       logger,
	}
}

// InitiateCheckout runs the pre-payment half of checkout: an advisory stock
// check against live rows, a payment intent at the gateway, and a PENDING
// order row. Stock is not touched here; the authoritative decrement happens
// at capture, so a gap between intent creation and the buyer completing
// payment can still surface as a capture-time stock failure.
func (s *checkoutService) InitiateCheckout(ctx context.Context, userID string, req *InitiateCheckoutRequest) (*InitiateCheckoutResponse, error) {
	if userID == "" || req == nil || len(req.Items) == 0 {
		return nil, ErrInvalidCheckout
	}
	if req.Address.Line1 == "" || req.Address.City == "" || req.Address.Country == "" {
		return nil, fmt.Errorf("%w: incomplete address", ErrInvalidCheckout)
	}

	ids := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: bad line item", ErrInvalidCheckout)
		}
		ids = append(ids, item.ProductID)
	}

	// The pre-check always reads live rows; the product cache is advisory
	// and never consulted for stock decisions.
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to load products for checkout", zap.String("user_id", userID), zap.Error(err))
		return nil, errors.New("internal server error")
	}

	orderItems := make([]domain.OrderItem, 0, len(req.Items))
	lineItems := make([]payment.LineItem, 0, len(req.Items))
	total := decimal.Zero
	for _, item := range req.Items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}
		if product.Stock < item.Quantity {
			return nil, &InsufficientStockError{
				ProductID: product.ID,
				Title:     product.Title,
				Requested: item.Quantity,
				Available: product.Stock,
			}
		}
		unitPrice := product.EffectivePrice()
		orderItems = append(orderItems, domain.OrderItem{
			ProductID: product.ID,
			Title:     product.Title,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
		})
		lineItems = append(lineItems, payment.LineItem{
			ProductID: product.ID,
			Title:     product.Title,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
		})
		total = total.Add(unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if !total.Equal(req.Total) {
		s.logger.Warn("Checkout total mismatch",
			zap.String("user_id", userID),
			zap.String("claimed", req.Total.String()),
			zap.String("computed", total.String()))
		return nil, fmt.Errorf("%w: total does not match current prices", ErrInvalidCheckout)
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.opts.GatewayTimeout)
	defer cancel()
	intent, err := s.gateway.CreateIntent(gwCtx, lineItems, total, s.opts.ReturnURL, s.opts.CancelURL)
	if err != nil {
		// A timeout is indistinguishable from any other gateway failure
		// here: no order row exists, nothing to clean up.
		s.logger.Error("Payment intent creation failed", zap.String("user_id", userID), zap.Error(err))
		return nil, ErrPaymentInitiationFailed
	}

	order, err := domain.NewOrder(util.GenerateUUID(), userID, orderItems, domain.Address(req.Address), intent.ID)
	if err != nil {
		s.logger.Error("Failed to build order", zap.String("user_id", userID), zap.Error(err))
		return nil, ErrInvalidCheckout
	}

	msg, err := s.buildEvent(EventOrderCreated, order)
	if err != nil {
		return nil, errors.New("internal server error")
	}

	if err := s.orderRepo.CreateOrderAndOutboxMessage(ctx, order, msg); err != nil {
		s.logger.Error("Failed to persist order", zap.String("order_id", order.ID), zap.Error(err))
		return nil, errors.New("failed to create order")
	}

	s.logger.Info("Checkout initiated",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.String("intent_id", intent.ID),
		zap.String("total", total.String()))

	return &InitiateCheckoutResponse{
		OrderID:         order.ID,
		PaymentIntentID: intent.ID,
		ApprovalURL:     intent.ApprovalURL,
	}, nil
}

// CaptureCheckout confirms the payment with the gateway and then commits the
// order in a single transaction: the PENDING -> PAID claim and every stock
// decrement either all apply or none do. A stock failure rolls the claim
// back, so a paid order with undecremented stock cannot exist.
func (s *checkoutService) CaptureCheckout(ctx context.Context, req *CaptureCheckoutRequest) (*CaptureCheckoutResponse, error) {
	if req == nil || req.OrderID == "" || req.PaymentID == "" {
		return nil, ErrInvalidCheckout
	}

	order, err := s.orderRepo.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, order_repo.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		s.logger.Error("Failed to load order for capture", zap.String("order_id", req.OrderID), zap.Error(err))
		return nil, errors.New("internal server error")
	}

	switch order.Status {
	case domain.OrderStatusPaid:
		// Retried capture after a success: nothing to apply again.
		s.logger.Info("Capture retried on a paid order", zap.String("order_id", order.ID))
		return &CaptureCheckoutResponse{OrderID: order.ID, Status: string(order.Status), AlreadyCaptured: true}, nil
	case domain.OrderStatusCancelled:
		return nil, ErrOrderNotCapturable
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.opts.GatewayTimeout)
	defer cancel()
	if err := s.gateway.ConfirmCapture(gwCtx, req.PaymentID, req.PayerID); err != nil {
		s.logger.Error("Gateway capture failed",
			zap.String("order_id", order.ID),
			zap.String("payment_id", req.PaymentID),
			zap.Error(err))
		return nil, ErrPaymentCaptureFailed
	}

	if err := s.settle(ctx, order, req.PaymentID, req.PayerID); err != nil {
		var alreadyCaptured *alreadyCapturedErr
		if errors.As(err, &alreadyCaptured) {
			return &CaptureCheckoutResponse{OrderID: order.ID, Status: string(domain.OrderStatusPaid), AlreadyCaptured: true}, nil
		}
		return nil, err
	}

	// Post-commit cleanup. Both are safe to lose to a crash: the cart is
	// advisory once the order is paid, and cache entries expire on their own.
	if err := s.cartRepo.Clear(ctx, order.UserID); err != nil {
		s.logger.Error("Failed to clear cart after capture", zap.String("order_id", order.ID), zap.Error(err))
	}
	for _, item := range order.Items {
		s.productCache.Invalidate(item.ProductID)
	}
	s.orderCache.Invalidate(order.ID)

	s.logger.Info("Checkout captured",
		zap.String("order_id", order.ID),
		zap.String("payment_id", req.PaymentID))

	return &CaptureCheckoutResponse{OrderID: order.ID, Status: string(domain.OrderStatusPaid)}, nil
}

type alreadyCapturedErr struct{}

func (*alreadyCapturedErr) Error() string { return "order already captured" }

func (s *checkoutService) settle(ctx context.Context, order *domain.Order, paymentID, payerID string) error {
	err := s.txm.WithinTx(ctx, func(tx *sql.Tx) error {
		claimed, err := s.orderRepo.MarkPaidTx(ctx, tx, order.ID, paymentID, payerID, time.Now())
		if err != nil {
			return err
		}
		if !claimed {
			// A concurrent capture won the guarded update; its decrement is
			// the one that counts.
			s.logger.Info("Capture lost the claim race", zap.String("order_id", order.ID))
			return &alreadyCapturedErr{}
		}

		for _, item := range order.Items {
			if err := s.productRepo.DecrementStockTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, product_repo.ErrInsufficientStock) {
					available, stockErr := s.productRepo.GetStockTx(ctx, tx, item.ProductID)
					if stockErr != nil {
						available = 0
					}
					s.logger.Warn("Capture aborted on insufficient stock",
						zap.String("order_id", order.ID),
						zap.String("product_id", item.ProductID),
						zap.Int("requested", item.Quantity),
						zap.Int("available", available))
					return &InsufficientStockError{
						ProductID: item.ProductID,
						Title:     item.Title,
						Requested: item.Quantity,
						Available: available,
					}
				}
				return err
			}
		}

		paid := *order
		paid.Status = domain.OrderStatusPaid
		msg, err := s.buildEvent(EventOrderPaid, &paid)
		if err != nil {
			return err
		}
		return s.outboxRepo.CreateMessageTx(ctx, tx, msg)
	})
	if err != nil {
		var stockErr *InsufficientStockError
		var captured *alreadyCapturedErr
		switch {
		case errors.As(err, &stockErr), errors.As(err, &captured):
			return err
		case errors.Is(err, product_repo.ErrProductNotFound):
			return fmt.Errorf("%w during capture of order %s", ErrProductNotFound, order.ID)
		default:
			s.logger.Error("Capture transaction failed", zap.String("order_id", order.ID), zap.Error(err))
			return errors.New("internal server error")
		}
	}
	return nil
}

func (s *checkoutService) buildEvent(event string, order *domain.Order) (*outbox_repo.OutboxMessage, error) {
	payload, err := json.Marshal(OrderEvent{
		Event:     event,
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total.String(),
		Timestamp: time.Now(),
	})
	if err != nil {
		s.logger.Error("Failed to marshal order event", zap.String("order_id", order.ID), zap.Error(err))
		return nil, err
	}
	return &outbox_repo.OutboxMessage{
		ID:        util.GenerateUUID(),
		OrderID:   order.ID,
		Topic:     s.opts.EventTopic,
		Payload:   payload,
		Status:    outbox_repo.StatusPending,
		CreatedAt: time.Now(),
	}, nil
}
