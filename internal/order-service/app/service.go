// Package app admits orders. A checkout is validated, priced, checked against
// the delivery radius and then written as a two-step saga: the header first,
// the items second, with the header deleted again if the items cannot be
// saved.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	builderapp "github.com/jcmexdev/mealprep-builder/internal/builder/app"
	builderdomain "github.com/jcmexdev/mealprep-builder/internal/builder/domain"
	"github.com/jcmexdev/mealprep-builder/internal/coordinator"
	"github.com/jcmexdev/mealprep-builder/internal/coordinator/sagalog"
	"github.com/jcmexdev/mealprep-builder/internal/delivery"
	"github.com/jcmexdev/mealprep-builder/internal/order-service/domain"
	paymentservice "github.com/jcmexdev/mealprep-builder/internal/payment-service/app"
	"github.com/jcmexdev/mealprep-builder/internal/pkg/apperr"
)

const (
	msgCreateFailed   = "Failed to create order"
	msgItemsFailed    = "Order created but items failed to save"
	msgOrderNotFound  = "Order not found"
	msgSettingsFailed = "Failed to load delivery settings"
)

var tracer = otel.Tracer("github.com/jcmexdev/mealprep-builder/internal/order-service")

// SelectionValidator prices a built meal and rejects broken category rules.
type SelectionValidator interface {
	ValidateSelection(ctx context.Context, sel builderapp.Selection) (*builderapp.Quote, error)
}

type Service struct {
	store    domain.Store
	builder  SelectionValidator
	settings delivery.SettingsSource
	charger  paymentservice.Charger
	sagaLog  sagalog.Repository
	now      func() time.Time
}

// NewService wires the admission flow. settings and sagaLog may be nil: a
// nil settings source disables the radius gate and a nil log skips saga
// persistence.
func NewService(
	store domain.Store,
	builder SelectionValidator,
	settings delivery.SettingsSource,
	charger paymentservice.Charger,
	sagaLog sagalog.Repository,
) *Service {
	return &Service{
		store:    store,
		builder:  builder,
		settings: settings,
		charger:  charger,
		sagaLog:  sagaLog,
		now:      time.Now,
	}
}

// CreateOrder admits a checkout. Duplicate submissions are not detected and
// produce duplicate orders.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "orders.Create")
	defer span.End()

	order, err := s.createOrder(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperr.Message(err))
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.String("order.status", string(order.Status)),
		attribute.Float64("order.total", order.Total),
	)
	return order, nil
}

func (s *Service) createOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := &domain.Order{
		ID:                   uuid.NewString(),
		CustomerID:           in.CustomerID,
		CustomerEmail:        in.CustomerEmail,
		CustomerPhone:        in.CustomerPhone,
		DeliveryInstructions: in.DeliveryInstructions,
		DeliveryDate:         in.DeliveryDate,
		DeliveryTimeSlot:     in.DeliveryTimeSlot,
		PaymentMethodID:      in.PaymentMethodID,
		PaymentCustomerID:    in.PaymentCustomerID,
		Currency:             in.Currency,
		Tax:                  builderdomain.Round2(fee(in.Tax)),
		DeliveryFee:          builderdomain.Round2(fee(in.DeliveryFee)),
		Tip:                  builderdomain.Round2(fee(in.Tip)),
		Status:               domain.StatusPending,
		PaymentStatus:        domain.PaymentPending,
		ShippingAddress:      in.ShippingAddress,
		BillingAddress:       in.BillingAddress,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if order.Currency == "" {
		order.Currency = defaultCurrency
	}

	items, err := s.buildItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	var subtotal float64
	for _, it := range items {
		subtotal += it.UnitPrice * float64(it.Quantity)
	}
	order.Subtotal = builderdomain.Round2(subtotal)
	order.Total = builderdomain.Round2(subtotal + order.Tax + order.DeliveryFee + order.Tip)

	if err := s.checkRadius(ctx, order, in.RequestApproval); err != nil {
		return nil, err
	}

	insertHeader := NewInsertOrderStep(s.store, order)
	insertItems := NewInsertItemsStep(s.store, order.ID, items)
	saga := coordinator.NewOrchestrator(order.ID, []coordinator.Step{insertHeader, insertItems}, s.sagaLog).
		WithPayload(payloadOf(in))

	res := saga.Start(ctx)
	switch res.Outcome {
	case coordinator.OutcomeCompleted:
		order.Items = items
		slog.InfoContext(ctx, "order created", "order_id", order.ID, "status", order.Status, "total", order.Total)
		return order, nil
	case coordinator.OutcomeFailed:
		return nil, apperr.Internal(msgCreateFailed, res.Err)
	case coordinator.OutcomeCompensationFailed:
		slog.ErrorContext(ctx, "CRITICAL: order header left without items",
			"order_id", order.ID, "error", res.Err, "compensation_error", res.CompensationErr)
		return nil, apperr.Internal(msgItemsFailed, errors.Join(res.Err, res.CompensationErr))
	default:
		return nil, apperr.Internal(msgItemsFailed, res.Err)
	}
}

// buildItems turns requested lines into order items. Built meals are priced
// server-side and the quote replaces whatever unit price the client sent.
func (s *Service) buildItems(ctx context.Context, in []ItemInput) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, len(in))
	for i, it := range in {
		item := domain.OrderItem{
			ID:                  uuid.NewString(),
			Position:            i,
			ProductID:           it.ProductID.Ptr(),
			MealPlanID:          it.MealPlanID.Ptr(),
			VariantID:           it.VariantID.Ptr(),
			Quantity:            it.Quantity,
			UnitPrice:           builderdomain.Round2(it.UnitPrice),
			SpecialInstructions: it.SpecialInstructions,
			Builder:             it.Builder,
		}

		if it.Builder != nil && s.builder != nil {
			quote, err := s.builder.ValidateSelection(ctx, toSelection(it.Builder))
			if err != nil {
				return nil, err
			}
			item.UnitPrice = quote.Totals.Price
			item.TotalPrice = builderdomain.Round2(item.UnitPrice * float64(item.Quantity))
		} else if it.TotalPrice != nil {
			item.TotalPrice = builderdomain.Round2(*it.TotalPrice)
		} else {
			item.TotalPrice = builderdomain.Round2(item.UnitPrice * float64(item.Quantity))
		}

		items = append(items, item)
	}
	return items, nil
}

func (s *Service) checkRadius(ctx context.Context, order *domain.Order, requestApproval bool) error {
	gate, err := delivery.LoadGate(ctx, s.settings)
	if err != nil {
		return apperr.Internal(msgSettingsFailed, err)
	}

	res := gate.Check(candidateOf(order.ShippingAddress), requestApproval)
	if res.Skipped {
		return nil
	}
	distance := res.DistanceMiles
	order.DeliveryDistanceMiles = &distance

	switch res.Decision {
	case delivery.DecisionReject:
		slog.InfoContext(ctx, "order rejected outside delivery radius",
			"distance_miles", res.DistanceMiles, "allowed_miles", res.AllowedMiles)
		return &apperr.OutOfRadiusError{
			DistanceMiles: delivery.RoundMiles(res.DistanceMiles),
			AllowedMiles:  res.AllowedMiles,
		}
	case delivery.DecisionQueueForApproval:
		order.Status = domain.StatusPendingApproval
	}
	return nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.NotFound(msgOrderNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load order", err)
	}
	return order, nil
}

// ListOrders returns the customer's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, customerID string) ([]domain.Order, error) {
	if customerID == "" {
		return nil, apperr.InvalidInput("customer_id is required")
	}
	orders, err := s.store.ListOrders(ctx, customerID)
	if err != nil {
		return nil, apperr.Internal("Failed to load orders", err)
	}
	return orders, nil
}

// UpdateStatus applies an admin status change. Nil arguments are left as is.
func (s *Service) UpdateStatus(ctx context.Context, id string, status, paymentStatus *string) (*domain.Order, error) {
	var u domain.Update
	if status != nil {
		st := domain.Status(*status)
		if !st.Valid() {
			return nil, apperr.InvalidInput("Invalid status transition")
		}
		u.Status = &st
	}
	if paymentStatus != nil {
		ps := domain.PaymentStatus(*paymentStatus)
		if !ps.Valid() {
			return nil, apperr.InvalidInput("Invalid payment status transition")
		}
		u.PaymentStatus = &ps
	}
	if u.Empty() {
		return nil, apperr.InvalidInput("No changes provided")
	}

	order, err := s.store.UpdateOrder(ctx, id, u, s.now().UTC())
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.NotFound(msgOrderNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("Failed to update order", err)
	}
	slog.InfoContext(ctx, "order updated", "order_id", id, "status", order.Status, "payment_status", order.PaymentStatus)
	return order, nil
}

// Approve charges the stored payment method for an order, typically one
// queued for manual approval. The charge and the order update run as a saga
// so a charge whose result cannot be recorded is refunded.
func (s *Service) Approve(ctx context.Context, id string) (*domain.Order, *paymentservice.ChargeResult, error) {
	ctx, span := tracer.Start(ctx, "orders.Approve")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id))

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if order.PaymentStatus == domain.PaymentPaid {
		return nil, nil, apperr.InvalidInput("Order already paid")
	}
	if order.PaymentMethodID == "" || order.PaymentCustomerID == "" {
		return nil, nil, apperr.InvalidInput("No payment method on file to charge")
	}
	amount := int64(math.Round(order.Total * 100))
	if amount <= 0 {
		return nil, nil, apperr.InvalidInput("Order amount invalid")
	}
	if s.charger == nil {
		return nil, nil, apperr.Unavailable("Payments unavailable")
	}

	charge := NewChargeStep(s.charger, paymentservice.ChargeRequest{
		OrderID:         order.ID,
		AmountMinor:     amount,
		Currency:        order.Currency,
		CustomerID:      order.PaymentCustomerID,
		PaymentMethodID: order.PaymentMethodID,
	})
	record := NewRecordChargeStep(s.store, func() time.Time { return s.now().UTC() }, order.ID, charge)

	res := coordinator.NewOrchestrator(order.ID, []coordinator.Step{charge, record}, s.sagaLog).Start(ctx)
	switch res.Outcome {
	case coordinator.OutcomeCompleted:
	case coordinator.OutcomeFailed:
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, "charge failed")
		return nil, nil, apperr.Internal("Failed to charge order", res.Err)
	default:
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, "record charge failed")
		if res.CompensationErr != nil {
			slog.ErrorContext(ctx, "CRITICAL: charge not refunded after failed order update",
				"order_id", order.ID, "error", res.Err, "compensation_error", res.CompensationErr)
		}
		return nil, nil, apperr.Internal("Failed to record payment", errors.Join(res.Err, res.CompensationErr))
	}

	result := charge.Result()
	span.SetAttributes(attribute.String("payment.status", string(result.Status)))
	slog.InfoContext(ctx, "order approval charged", "order_id", order.ID, "charge_id", result.ID, "charge_status", result.Status)
	return record.Order(), result, nil
}

// History returns the saga log rows written for an order.
func (s *Service) History(ctx context.Context, id string) ([]sagalog.SagaLog, error) {
	if s.sagaLog == nil {
		return nil, apperr.NotFound("Saga history not found")
	}
	entries, err := s.sagaLog.History(ctx, id)
	if errors.Is(err, sagalog.ErrNotFound) {
		return nil, apperr.NotFound("Saga history not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load saga history", err)
	}
	return entries, nil
}

func toSelection(b *domain.BuilderSelection) builderapp.Selection {
	sel := builderapp.Selection{
		BaseID:   builderdomain.ID(b.BaseID),
		BaseSlug: b.BaseSlug,
	}
	for _, id := range b.OptionIDs {
		sel.OptionIDs = append(sel.OptionIDs, builderdomain.ID(id))
	}
	return sel
}

func candidateOf(addr *domain.AddressSnapshot) *delivery.Point {
	if addr == nil || addr.Lat == nil || addr.Lng == nil {
		return nil
	}
	return &delivery.Point{Lat: *addr.Lat, Lng: *addr.Lng}
}

func payloadOf(in CreateOrderInput) string {
	b, err := json.Marshal(in)
	if err != nil {
		return ""
	}
	return string(b)
}
