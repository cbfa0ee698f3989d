// Package ports lists what the HTTP layer needs from the application
// services. Handlers depend on these so tests can swap in fakes.
package ports

import (
	"context"

	builderapp "github.com/jcmexdev/mealprep-builder/internal/builder/app"
	"github.com/jcmexdev/mealprep-builder/internal/coordinator/sagalog"
	"github.com/jcmexdev/mealprep-builder/internal/geocode"
	orderapp "github.com/jcmexdev/mealprep-builder/internal/order-service/app"
	"github.com/jcmexdev/mealprep-builder/internal/order-service/domain"
	paymentservice "github.com/jcmexdev/mealprep-builder/internal/payment-service/app"
)

type BuilderPricer interface {
	Price(ctx context.Context, sel builderapp.Selection) (*builderapp.Quote, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, in orderapp.CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, customerID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status, paymentStatus *string) (*domain.Order, error)
	Approve(ctx context.Context, id string) (*domain.Order, *paymentservice.ChargeResult, error)
	History(ctx context.Context, id string) ([]sagalog.SagaLog, error)
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geocode.Location, error)
}
