// Package memory is an in-process order store for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jcmexdev/mealprep-builder/internal/order-service/domain"
)

// Ensure Store implements the port at compile time.
var _ domain.Store = (*Store)(nil)

// Store keeps headers and items in separate maps, like the two tables the
// Postgres store writes.
type Store struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	items  map[string][]domain.OrderItem
}

func NewStore() *Store {
	return &Store{
		orders: make(map[string]*domain.Order),
		items:  make(map[string][]domain.OrderItem),
	}
}

func (s *Store) InsertOrder(_ context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.ID]; exists {
		return fmt.Errorf("memory: order %s already exists", o.ID)
	}
	header := *o
	header.Items = nil
	s.orders[o.ID] = &header
	return nil
}

func (s *Store) InsertItems(_ context.Context, orderID string, items []domain.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[orderID]; !exists {
		return fmt.Errorf("memory: insert items: %w", domain.ErrNotFound)
	}
	s.items[orderID] = append(s.items[orderID], items...)
	return nil
}

func (s *Store) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[id]; !exists {
		return domain.ErrNotFound
	}
	delete(s.orders, id)
	delete(s.items, id)
	return nil
}

func (s *Store) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	header, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.assemble(header), nil
}

func (s *Store) ListOrders(_ context.Context, customerID string) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, 0)
	for _, header := range s.orders {
		if header.CustomerID != customerID {
			continue
		}
		out = append(out, *s.assemble(header))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) UpdateOrder(_ context.Context, id string, u domain.Update, at time.Time) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	header, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if u.Status != nil {
		header.Status = *u.Status
	}
	if u.PaymentStatus != nil {
		header.PaymentStatus = *u.PaymentStatus
	}
	if u.PaymentIntentID != nil {
		header.PaymentIntentID = *u.PaymentIntentID
	}
	header.UpdatedAt = at
	return s.assemble(header), nil
}

// assemble copies a header and its items. Callers hold the lock.
func (s *Store) assemble(header *domain.Order) *domain.Order {
	o := *header
	o.Items = append([]domain.OrderItem(nil), s.items[header.ID]...)
	return &o
}
