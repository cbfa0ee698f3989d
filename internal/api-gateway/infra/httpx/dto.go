package httpx

import (
	"time"

	builderapp "github.com/jcmexdev/mealprep-builder/internal/builder/app"
	builderdomain "github.com/jcmexdev/mealprep-builder/internal/builder/domain"
	"github.com/jcmexdev/mealprep-builder/internal/order-service/domain"
	"github.com/jcmexdev/mealprep-builder/internal/pkg/jsonx"
)

type PriceRequest struct {
	BaseID    jsonx.FlexibleID   `json:"baseId"`
	BaseSlug  string             `json:"baseSlug"`
	OptionIDs []jsonx.FlexibleID `json:"optionIds"`
}

func (r PriceRequest) toSelection() builderapp.Selection {
	sel := builderapp.Selection{
		BaseID:    builderdomain.ID(r.BaseID),
		BaseSlug:  r.BaseSlug,
		OptionIDs: make([]builderdomain.ID, 0, len(r.OptionIDs)),
	}
	for _, id := range r.OptionIDs {
		sel.OptionIDs = append(sel.OptionIDs, builderdomain.ID(id))
	}
	return sel
}

type PriceResponse struct {
	Base                BaseResponse                   `json:"base"`
	Options             []OptionResponse               `json:"options"`
	Totals              TotalsResponse                 `json:"totals"`
	Validation          builderdomain.ValidationResult `json:"validation"`
	UnresolvedOptionIDs []string                       `json:"unresolvedOptionIds,omitempty"`
}

type BaseResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type OptionResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	CategoryID      string  `json:"categoryId,omitempty"`
	PriceAdjustment float64 `json:"priceAdjustment"`
}

type TotalsResponse struct {
	Price     float64                   `json:"price"`
	Nutrition builderdomain.MacroVector `json:"nutrition"`
}

func mapQuoteToResponse(q *builderapp.Quote) PriceResponse {
	resp := PriceResponse{
		Base:       BaseResponse{ID: string(q.Base.ID), Name: q.Base.Name, Price: q.Base.Price},
		Options:    make([]OptionResponse, 0, len(q.Options)),
		Totals:     TotalsResponse{Price: q.Totals.Price, Nutrition: q.Totals.Nutrition},
		Validation: q.Validation,
	}
	for _, opt := range q.Options {
		resp.Options = append(resp.Options, OptionResponse{
			ID:              string(opt.ID),
			Name:            opt.Name,
			CategoryID:      string(opt.CategoryID),
			PriceAdjustment: opt.PriceAdjustment,
		})
	}
	for _, id := range q.Unresolved {
		resp.UnresolvedOptionIDs = append(resp.UnresolvedOptionIDs, string(id))
	}
	return resp
}

type UpdateOrderRequest struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"payment_status"`
}

type GeocodeRequest struct {
	Address string `json:"address"`
}

type OrderResponse struct {
	ID                    string                  `json:"id"`
	CustomerID            string                  `json:"customer_id,omitempty"`
	CustomerEmail         string                  `json:"customer_email"`
	CustomerPhone         string                  `json:"customer_phone,omitempty"`
	DeliveryInstructions  string                  `json:"delivery_instructions,omitempty"`
	DeliveryDate          string                  `json:"delivery_date,omitempty"`
	DeliveryTimeSlot      string                  `json:"delivery_time_slot,omitempty"`
	PaymentIntentID       string                  `json:"payment_intent_id,omitempty"`
	Currency              string                  `json:"currency"`
	Subtotal              float64                 `json:"subtotal"`
	Tax                   float64                 `json:"tax"`
	DeliveryFee           float64                 `json:"delivery_fee"`
	Tip                   float64                 `json:"tip"`
	Total                 float64                 `json:"total"`
	Status                string                  `json:"status"`
	PaymentStatus         string                  `json:"payment_status"`
	ShippingAddress       *domain.AddressSnapshot `json:"shipping_address,omitempty"`
	BillingAddress        *domain.AddressSnapshot `json:"billing_address,omitempty"`
	DeliveryDistanceMiles *float64                `json:"delivery_distance_miles,omitempty"`
	Items                 []OrderItemResponse     `json:"items"`
	CreatedAt             string                  `json:"created_at"`
	UpdatedAt             string                  `json:"updated_at"`
}

type OrderItemResponse struct {
	ID                  string                   `json:"id"`
	ProductID           *string                  `json:"product_id,omitempty"`
	MealPlanID          *string                  `json:"meal_plan_id,omitempty"`
	VariantID           *string                  `json:"variant_id,omitempty"`
	Quantity            int                      `json:"quantity"`
	UnitPrice           float64                  `json:"unit_price"`
	TotalPrice          float64                  `json:"total_price"`
	SpecialInstructions string                   `json:"special_instructions,omitempty"`
	Builder             *domain.BuilderSelection `json:"builder,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// OutOfRadiusResponse is the body of a radius rejection.
type OutOfRadiusResponse struct {
	Error         string  `json:"error"`
	Message       string  `json:"message"`
	DistanceMiles float64 `json:"distanceMiles"`
	AllowedMiles  float64 `json:"allowedMiles"`
}

func mapOrderToResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:                    o.ID,
		CustomerID:            o.CustomerID,
		CustomerEmail:         o.CustomerEmail,
		CustomerPhone:         o.CustomerPhone,
		DeliveryInstructions:  o.DeliveryInstructions,
		DeliveryDate:          o.DeliveryDate,
		DeliveryTimeSlot:      o.DeliveryTimeSlot,
		PaymentIntentID:       o.PaymentIntentID,
		Currency:              o.Currency,
		Subtotal:              o.Subtotal,
		Tax:                   o.Tax,
		DeliveryFee:           o.DeliveryFee,
		Tip:                   o.Tip,
		Total:                 o.Total,
		Status:                string(o.Status),
		PaymentStatus:         string(o.PaymentStatus),
		ShippingAddress:       o.ShippingAddress,
		BillingAddress:        o.BillingAddress,
		DeliveryDistanceMiles: o.DeliveryDistanceMiles,
		Items:                 mapItems(o.Items),
		CreatedAt:             o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             o.UpdatedAt.Format(time.RFC3339),
	}
}

func mapItems(items []domain.OrderItem) []OrderItemResponse {
	out := make([]OrderItemResponse, len(items))
	for i, it := range items {
		out[i] = OrderItemResponse{
			ID:                  it.ID,
			ProductID:           it.ProductID,
			MealPlanID:          it.MealPlanID,
			VariantID:           it.VariantID,
			Quantity:            it.Quantity,
			UnitPrice:           it.UnitPrice,
			TotalPrice:          it.TotalPrice,
			SpecialInstructions: it.SpecialInstructions,
			Builder:             it.Builder,
		}
	}
	return out
}
