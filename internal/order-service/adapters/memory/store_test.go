package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jcmexdev/mealprep-builder/internal/order-service/domain"
)

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Date(2025, 12, 6, 10, 0, 0, 0, time.UTC)

	order := &domain.Order{ID: "o-1", CustomerID: "c-1", Status: domain.StatusPending, CreatedAt: now}
	if err := s.InsertOrder(ctx, order); err != nil {
		t.Fatalf("InsertOrder() error = %v", err)
	}
	if err := s.InsertOrder(ctx, order); err == nil {
		t.Error("InsertOrder(duplicate) error = nil")
	}

	product := "meal-7"
	if err := s.InsertItems(ctx, "o-1", []domain.OrderItem{{ID: "i-1", ProductID: &product, Quantity: 2}}); err != nil {
		t.Fatalf("InsertItems() error = %v", err)
	}
	if err := s.InsertItems(ctx, "missing", nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("InsertItems(missing) error = %v, want ErrNotFound", err)
	}

	got, err := s.GetOrder(ctx, "o-1")
	if err != nil {
		t.Fatalf("GetOrder() error = %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Errorf("items = %+v", got.Items)
	}

	confirmed := domain.StatusConfirmed
	later := now.Add(time.Hour)
	updated, err := s.UpdateOrder(ctx, "o-1", domain.Update{Status: &confirmed}, later)
	if err != nil {
		t.Fatalf("UpdateOrder() error = %v", err)
	}
	if updated.Status != domain.StatusConfirmed || !updated.UpdatedAt.Equal(later) {
		t.Errorf("updated = %+v", updated)
	}

	if err := s.DeleteOrder(ctx, "o-1"); err != nil {
		t.Fatalf("DeleteOrder() error = %v", err)
	}
	if _, err := s.GetOrder(ctx, "o-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetOrder(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestStoreListOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2025, 12, 6, 10, 0, 0, 0, time.UTC)

	_ = s.InsertOrder(ctx, &domain.Order{ID: "old", CustomerID: "c-1", CreatedAt: base})
	_ = s.InsertOrder(ctx, &domain.Order{ID: "new", CustomerID: "c-1", CreatedAt: base.Add(time.Minute)})
	_ = s.InsertOrder(ctx, &domain.Order{ID: "other", CustomerID: "c-2", CreatedAt: base})

	orders, err := s.ListOrders(ctx, "c-1")
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if len(orders) != 2 || orders[0].ID != "new" || orders[1].ID != "old" {
		t.Errorf("ListOrders() = %+v", orders)
	}
}
