package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jcmexdev/mealprep-builder/internal/order-service/domain"
	paymentservice "github.com/jcmexdev/mealprep-builder/internal/payment-service/app"
)

// --- InsertOrderStep ---

type InsertOrderStep struct {
	store domain.Store
	order *domain.Order
}

func NewInsertOrderStep(store domain.Store, order *domain.Order) *InsertOrderStep {
	return &InsertOrderStep{store: store, order: order}
}

func (s *InsertOrderStep) Name() string { return "Insert_Order_Header_Step" }

func (s *InsertOrderStep) Execute(ctx context.Context) error {
	if err := s.store.InsertOrder(ctx, s.order); err != nil {
		return fmt.Errorf("insert order header: %w", err)
	}
	return nil
}

// Compensate deletes the header so no item-less order stays visible.
func (s *InsertOrderStep) Compensate(ctx context.Context) error {
	return s.store.DeleteOrder(ctx, s.order.ID)
}

// --- InsertItemsStep ---

type InsertItemsStep struct {
	store   domain.Store
	orderID string
	items   []domain.OrderItem
}

func NewInsertItemsStep(store domain.Store, orderID string, items []domain.OrderItem) *InsertItemsStep {
	return &InsertItemsStep{store: store, orderID: orderID, items: items}
}

func (s *InsertItemsStep) Name() string { return "Insert_Order_Items_Step" }

func (s *InsertItemsStep) Execute(ctx context.Context) error {
	if err := s.store.InsertItems(ctx, s.orderID, s.items); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

// Compensate is a no-op: items go away with the header delete.
func (s *InsertItemsStep) Compensate(ctx context.Context) error {
	return nil
}

// --- ChargeStep ---

type ChargeStep struct {
	charger paymentservice.Charger
	request paymentservice.ChargeRequest
	result  *paymentservice.ChargeResult
}

func NewChargeStep(charger paymentservice.Charger, req paymentservice.ChargeRequest) *ChargeStep {
	return &ChargeStep{charger: charger, request: req}
}

func (s *ChargeStep) Name() string { return "Payment_Charge_Step" }

func (s *ChargeStep) Execute(ctx context.Context) error {
	res, err := s.charger.Charge(ctx, s.request)
	if err != nil {
		return fmt.Errorf("payment service error: %w", err)
	}
	s.result = res
	return nil
}

// Compensate refunds a successful charge. Declined charges hold no money.
func (s *ChargeStep) Compensate(ctx context.Context) error {
	if s.result == nil || s.result.Status != paymentservice.ChargeSucceeded {
		return nil
	}
	return s.charger.Refund(ctx, s.request.OrderID)
}

// Result is the provider answer once Execute succeeded.
func (s *ChargeStep) Result() *paymentservice.ChargeResult { return s.result }

// --- RecordChargeStep ---

// RecordChargeStep writes the charge outcome onto the order header.
type RecordChargeStep struct {
	store   domain.Store
	now     func() time.Time
	orderID string
	charge  *ChargeStep
	order   *domain.Order
}

func NewRecordChargeStep(store domain.Store, now func() time.Time, orderID string, charge *ChargeStep) *RecordChargeStep {
	return &RecordChargeStep{store: store, now: now, orderID: orderID, charge: charge}
}

func (s *RecordChargeStep) Name() string { return "Record_Charge_Step" }

func (s *RecordChargeStep) Execute(ctx context.Context) error {
	res := s.charge.Result()
	u := domain.Update{PaymentIntentID: &res.ID}
	if res.Status == paymentservice.ChargeSucceeded {
		paid := domain.PaymentPaid
		confirmed := domain.StatusConfirmed
		u.PaymentStatus = &paid
		u.Status = &confirmed
	}

	order, err := s.store.UpdateOrder(ctx, s.orderID, u, s.now())
	if err != nil {
		return fmt.Errorf("record charge on order: %w", err)
	}
	s.order = order
	return nil
}

func (s *RecordChargeStep) Compensate(ctx context.Context) error {
	return nil
}

// Order is the updated order once Execute succeeded.
func (s *RecordChargeStep) Order() *domain.Order { return s.order }
