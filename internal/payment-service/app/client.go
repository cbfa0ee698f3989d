// Package paymentservice is the charge capability order approval uses. The
// real provider sits behind Charger; FakeCharger stands in for local runs.
package paymentservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ChargeStatus mirrors the provider's payment intent states this service
// cares about.
type ChargeStatus string

const (
	ChargeSucceeded      ChargeStatus = "succeeded"
	ChargeDeclined       ChargeStatus = "declined"
	ChargeRequiresAction ChargeStatus = "requires_action"
)

// ChargeRequest charges a stored payment method off-session.
type ChargeRequest struct {
	OrderID         string
	AmountMinor     int64
	Currency        string
	CustomerID      string
	PaymentMethodID string
}

// ChargeResult is the provider's answer. ID is the payment intent id.
type ChargeResult struct {
	ID     string       `json:"id"`
	Status ChargeStatus `json:"status"`
	Amount int64        `json:"amount"`
}

// Charger is the opaque charge capability.
type Charger interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, orderID string) error
}

// ErrNoCharge is returned by Refund when the order was never charged.
var ErrNoCharge = errors.New("payment: no charge for order")

// FakeCharger approves charges up to a limit and declines the rest.
type FakeCharger struct {
	mu       sync.Mutex
	limit    int64
	payments map[string]int64
}

// NewFakeCharger declines any charge above limitMinor (in cents).
func NewFakeCharger(limitMinor int64) *FakeCharger {
	return &FakeCharger{
		limit:    limitMinor,
		payments: make(map[string]int64),
	}
}

func (s *FakeCharger) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.AmountMinor <= 0 {
		return nil, fmt.Errorf("payment: invalid amount %d", req.AmountMinor)
	}

	slog.InfoContext(ctx, "processing charge", "order_id", req.OrderID, "amount", req.AmountMinor, "currency", req.Currency)

	res := &ChargeResult{ID: "pi_" + uuid.NewString(), Amount: req.AmountMinor}
	if req.AmountMinor > s.limit {
		slog.WarnContext(ctx, "charge declined, amount exceeds limit", "order_id", req.OrderID, "amount", req.AmountMinor)
		res.Status = ChargeDeclined
		return res, nil
	}

	s.payments[req.OrderID] = req.AmountMinor
	res.Status = ChargeSucceeded
	return res, nil
}

func (s *FakeCharger) Refund(ctx context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount, exists := s.payments[orderID]
	if !exists {
		return ErrNoCharge
	}

	slog.InfoContext(ctx, "refunding charge", "order_id", orderID, "amount", amount)
	delete(s.payments, orderID)
	return nil
}
