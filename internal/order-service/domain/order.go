// Package domain defines orders as the admission flow creates them and the
// store port that persists them.
package domain

import (
	"context"
	"errors"
	"time"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending          Status = "pending"
	StatusPendingApproval  Status = "pending_approval"
	StatusConfirmed        Status = "confirmed"
	StatusPreparing        Status = "preparing"
	StatusReadyForDelivery Status = "ready_for_delivery"
	StatusOutForDelivery   Status = "out_for_delivery"
	StatusDelivered        Status = "delivered"
	StatusCancelled        Status = "cancelled"
	StatusRefunded         Status = "refunded"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPendingApproval, StatusConfirmed, StatusPreparing,
		StatusReadyForDelivery, StatusOutForDelivery, StatusDelivered,
		StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// PaymentStatus is the charge state of an order.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentPaid              PaymentStatus = "paid"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded, PaymentPartiallyRefunded:
		return true
	}
	return false
}

// AddressSnapshot is a copy of an address taken when the order is placed.
// It is never re-resolved, so later address book edits leave orders alone.
type AddressSnapshot struct {
	Title        string   `json:"title,omitempty"`
	FirstName    string   `json:"first_name,omitempty"`
	LastName     string   `json:"last_name,omitempty"`
	Company      string   `json:"company,omitempty"`
	AddressLine1 string   `json:"address_line1,omitempty"`
	AddressLine2 string   `json:"address_line2,omitempty"`
	City         string   `json:"city,omitempty"`
	State        string   `json:"state,omitempty"`
	PostalCode   string   `json:"postal_code,omitempty"`
	Country      string   `json:"country,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
}

// BuilderSelection is the base and options behind a built-meal line item.
type BuilderSelection struct {
	BaseID    string   `json:"base_id,omitempty"`
	BaseSlug  string   `json:"base_slug,omitempty"`
	OptionIDs []string `json:"option_ids,omitempty"`
}

// OrderItem is a line of an order. Exactly one of ProductID and MealPlanID
// is set.
type OrderItem struct {
	ID                  string
	Position            int
	ProductID           *string
	MealPlanID          *string
	VariantID           *string
	Quantity            int
	UnitPrice           float64
	TotalPrice          float64
	SpecialInstructions string
	Builder             *BuilderSelection
}

// Order is the persisted order header plus its items.
type Order struct {
	ID                    string
	CustomerID            string
	CustomerEmail         string
	CustomerPhone         string
	DeliveryInstructions  string
	DeliveryDate          string
	DeliveryTimeSlot      string
	PaymentIntentID       string
	PaymentMethodID       string
	PaymentCustomerID     string
	Currency              string
	Subtotal              float64
	Tax                   float64
	DeliveryFee           float64
	Tip                   float64
	Total                 float64
	Status                Status
	PaymentStatus         PaymentStatus
	ShippingAddress       *AddressSnapshot
	BillingAddress        *AddressSnapshot
	DeliveryDistanceMiles *float64
	Items                 []OrderItem
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Update holds the header fields an admin action may change. Nil fields are
// left untouched.
type Update struct {
	Status          *Status
	PaymentStatus   *PaymentStatus
	PaymentIntentID *string
}

// Empty reports whether u changes nothing.
func (u Update) Empty() bool {
	return u.Status == nil && u.PaymentStatus == nil && u.PaymentIntentID == nil
}

// ErrNotFound is returned by stores for unknown order ids.
var ErrNotFound = errors.New("order not found")

// Store persists orders. Header and items are written by separate calls;
// the store offers no transaction spanning both.
type Store interface {
	InsertOrder(ctx context.Context, o *Order) error
	InsertItems(ctx context.Context, orderID string, items []OrderItem) error
	DeleteOrder(ctx context.Context, id string) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, customerID string) ([]Order, error)
	UpdateOrder(ctx context.Context, id string, u Update, at time.Time) (*Order, error)
}
