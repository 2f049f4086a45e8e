// Package memory implements every repository interface over process-local
// maps. It backs the package tests and mirrors the Postgres semantics that
// matter: conditional decrements, the guarded PENDING -> PAID claim, and
// transaction rollback.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"sync"

	"storefront/internal/domain"
	"storefront/internal/paging"
	"storefront/internal/repository/order_repo"
	"storefront/internal/repository/outbox_repo"
	"storefront/internal/repository/product_repo"
)

type Store struct {
	// txMu serializes whole transactions so a rollback can never undo a
	// concurrently committed one.
	txMu     sync.Mutex
	mu       sync.Mutex
	products map[string]*domain.Product
	orders   map[string]*domain.Order
	carts    map[string][]domain.CartItem
	outbox   []*outbox_repo.OutboxMessage
}

func NewStore() *Store {
	return &Store{
		products: make(map[string]*domain.Product),
		orders:   make(map[string]*domain.Order),
		carts:    make(map[string][]domain.CartItem),
	}
}

func (s *Store) SeedProduct(p *domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
}

func (s *Store) SeedOrder(o *domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = copyOrder(o)
}

func (s *Store) OutboxMessages() []*outbox_repo.OutboxMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*outbox_repo.OutboxMessage, len(s.outbox))
	copy(out, s.outbox)
	return out
}

func copyOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp
}

// ---- TxManager ----

// WithinTx snapshots the whole store and restores it when fn fails, which is
// what a rolled-back transaction looks like to callers.
func (s *Store) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapProducts := make(map[string]*domain.Product, len(s.products))
	for id, p := range s.products {
		cp := *p
		snapProducts[id] = &cp
	}
	snapOrders := make(map[string]*domain.Order, len(s.orders))
	for id, o := range s.orders {
		snapOrders[id] = copyOrder(o)
	}
	snapOutbox := append([]*outbox_repo.OutboxMessage(nil), s.outbox...)
	s.mu.Unlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.products = snapProducts
		s.orders = snapOrders
		s.outbox = snapOutbox
		s.mu.Unlock()
		return err
	}
	return nil
}

// ---- ProductRepository ----

func (s *Store) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, product_repo.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (s *Store) List(ctx context.Context, page, pageSize int) ([]*domain.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*domain.Product, 0, len(s.products))
	for _, p := range s.products {
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return pageSlice(all, page, pageSize), int64(len(all)), nil
}

func (s *Store) GetStock(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return 0, product_repo.ErrProductNotFound
	}
	return p.Stock, nil
}

func (s *Store) GetStockTx(ctx context.Context, tx *sql.Tx, id string) (int, error) {
	return s.GetStock(ctx, id)
}

func (s *Store) DecrementStock(ctx context.Context, id string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return product_repo.ErrProductNotFound
	}
	if p.Stock < quantity {
		return product_repo.ErrInsufficientStock
	}
	p.Stock -= quantity
	p.UpdatedAt = time.Now()
	return nil
}

func (s *Store) DecrementStockTx(ctx context.Context, tx *sql.Tx, id string, quantity int) error {
	return s.DecrementStock(ctx, id, quantity)
}

// ---- OrderRepository ----

func (s *Store) CreateOrderAndOutboxMessage(ctx context.Context, order *domain.Order, msg *outbox_repo.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = copyOrder(order)
	s.outbox = append(s.outbox, msg)
	return nil
}

func (s *Store) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, order_repo.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (s *Store) ListByUser(ctx context.Context, userID string, page, pageSize int, filter order_repo.ListFilter) ([]*domain.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*domain.Order
	for _, o := range s.orders {
		if o.UserID != userID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		matched = append(matched, copyOrder(o))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return pageSlice(matched, page, pageSize), int64(len(matched)), nil
}

func (s *Store) UpdateOrder(ctx context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.ID]; !ok {
		return order_repo.ErrOrderNotFound
	}
	s.orders[order.ID] = copyOrder(order)
	return nil
}

func (s *Store) MarkPaidTx(ctx context.Context, tx *sql.Tx, orderID, paymentID, payerID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Status != domain.OrderStatusPending {
		return false, nil
	}
	o.Status = domain.OrderStatusPaid
	o.PaymentID = paymentID
	o.PayerID = payerID
	o.UpdatedAt = at
	return true, nil
}

// ---- CartRepository ----

func (s *Store) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := &domain.Cart{UserID: userID}
	cart.Items = append(cart.Items, s.carts[userID]...)
	return cart, nil
}

func (s *Store) UpsertItem(ctx context.Context, userID, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[userID]
	for i, item := range items {
		if item.ProductID == productID {
			items[i].Quantity = quantity
			return nil
		}
	}
	s.carts[userID] = append(items, domain.CartItem{ProductID: productID, Quantity: quantity})
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, userID, productID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[userID]
	for i, item := range items {
		if item.ProductID == productID {
			s.carts[userID] = append(items[:i], items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

// ---- OutboxRepository ----

func (s *Store) CreateMessageTx(ctx context.Context, tx *sql.Tx, msg *outbox_repo.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox = append(s.outbox, msg)
	return nil
}

func (s *Store) GetUnsentMessages(ctx context.Context) ([]*outbox_repo.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pending []*outbox_repo.OutboxMessage
	for _, msg := range s.outbox {
		if msg.Status == outbox_repo.StatusPending {
			pending = append(pending, msg)
		}
	}
	return pending, nil
}

func (s *Store) MarkMessageSent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, msg := range s.outbox {
		if msg.ID == id && msg.Status == outbox_repo.StatusPending {
			now := time.Now()
			msg.Status = outbox_repo.StatusSent
			msg.SentAt = &now
		}
	}
	return nil
}

func pageSlice[T any](all []T, page, pageSize int) []T {
	page, pageSize = paging.Clamp(page, pageSize)
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
