package app

import (
	"fmt"
	"math"

	"github.com/jcmexdev/mealprep-builder/internal/order-service/domain"
	"github.com/jcmexdev/mealprep-builder/internal/pkg/apperr"
	"github.com/jcmexdev/mealprep-builder/internal/pkg/jsonx"
)

// CreateOrderInput is a checkout request after transport decoding.
type CreateOrderInput struct {
	CustomerID           string                  `json:"customer_id,omitempty"`
	CustomerEmail        string                  `json:"customer_email"`
	CustomerPhone        string                  `json:"customer_phone,omitempty"`
	DeliveryInstructions string                  `json:"delivery_instructions,omitempty"`
	DeliveryDate         string                  `json:"delivery_date,omitempty"`
	DeliveryTimeSlot     string                  `json:"delivery_time_slot,omitempty"`
	PaymentMethodID      string                  `json:"payment_method_id,omitempty"`
	PaymentCustomerID    string                  `json:"payment_customer_id,omitempty"`
	Currency             string                  `json:"currency,omitempty"`
	Tax                  jsonx.NumberOrZero      `json:"tax"`
	DeliveryFee          jsonx.NumberOrZero      `json:"delivery_fee"`
	Tip                  jsonx.NumberOrZero      `json:"tip"`
	ShippingAddress      *domain.AddressSnapshot `json:"shipping_address,omitempty"`
	BillingAddress       *domain.AddressSnapshot `json:"billing_address,omitempty"`
	// RequestApproval asks for manual review instead of a rejection when the
	// address lies outside the delivery radius.
	RequestApproval bool        `json:"request_approval,omitempty"`
	Items           []ItemInput `json:"items"`
}

// ItemInput is one requested line. Ids arrive as strings or numbers.
type ItemInput struct {
	ProductID           jsonx.FlexibleID         `json:"product_id,omitempty"`
	MealPlanID          jsonx.FlexibleID         `json:"meal_plan_id,omitempty"`
	VariantID           jsonx.FlexibleID         `json:"variant_id,omitempty"`
	Quantity            int                      `json:"quantity"`
	UnitPrice           float64                  `json:"unit_price"`
	TotalPrice          *float64                 `json:"total_price,omitempty"`
	SpecialInstructions string                   `json:"special_instructions,omitempty"`
	Builder             *domain.BuilderSelection `json:"builder,omitempty"`
}

const defaultCurrency = "usd"

func (in CreateOrderInput) validate() error {
	if in.CustomerEmail == "" {
		return apperr.InvalidInput("customer email is required")
	}
	if len(in.Items) == 0 {
		return apperr.InvalidInput("at least one item is required")
	}
	for i, it := range in.Items {
		if err := it.validate(); err != nil {
			return apperr.InvalidInput(fmt.Sprintf("item %d: %s", i, err.Error()))
		}
	}
	return nil
}

func (it ItemInput) validate() error {
	switch {
	case (it.ProductID == "") == (it.MealPlanID == ""):
		return fmt.Errorf("exactly one of product_id or meal_plan_id is required")
	case it.Quantity <= 0:
		return fmt.Errorf("quantity must be positive")
	case math.IsNaN(it.UnitPrice) || it.UnitPrice < 0:
		return fmt.Errorf("unit price must not be negative")
	case it.TotalPrice != nil && (math.IsNaN(*it.TotalPrice) || *it.TotalPrice < 0):
		return fmt.Errorf("total price must not be negative")
	}
	return nil
}

// fee treats absent, non-numeric and negative charges as zero.
func fee(n jsonx.NumberOrZero) float64 {
	v := float64(n)
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
