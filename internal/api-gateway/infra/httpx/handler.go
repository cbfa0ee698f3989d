package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/mealprep-builder/internal/api-gateway/core/ports"
	orderapp "github.com/jcmexdev/mealprep-builder/internal/order-service/app"
	paymentservice "github.com/jcmexdev/mealprep-builder/internal/payment-service/app"
	"github.com/jcmexdev/mealprep-builder/internal/pkg/apperr"
	"github.com/jcmexdev/mealprep-builder/internal/pkg/interceptors"
)

// Handler serves the storefront and admin JSON API.
type Handler struct {
	pricer   ports.BuilderPricer
	orders   ports.OrderService
	geocoder ports.Geocoder
}

func NewHandler(pricer ports.BuilderPricer, orders ports.OrderService, geocoder ports.Geocoder) *Handler {
	return &Handler{pricer: pricer, orders: orders, geocoder: geocoder}
}

// PriceBuilder prices a base plus options.
func (h *Handler) PriceBuilder(w http.ResponseWriter, r *http.Request) {
	var req PriceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quote, err := h.pricer.Price(r.Context(), req.toSelection())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapQuoteToResponse(quote))
}

// CreateOrder admits a checkout.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderapp.CreateOrderInput
	if !decodeJSON(w, r, &req) {
		return
	}

	slog.InfoContext(r.Context(), "creating order",
		"request_id", interceptors.RequestIDFromContext(r.Context()),
		"customer_id", req.CustomerID,
		"items", len(req.Items),
	)

	order, err := h.orders.CreateOrder(r.Context(), req)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]OrderResponse{"order": mapOrderToResponse(order)})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context(), r.URL.Query().Get("customer_id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, mapOrderToResponse(&orders[i]))
	}
	writeJSON(w, http.StatusOK, map[string][]OrderResponse{"orders": out})
}

func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]OrderResponse{"order": mapOrderToResponse(order)})
}

// UpdateOrder changes status and payment status.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.PaymentStatus)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]OrderResponse{"order": mapOrderToResponse(order)})
}

// ApproveOrder charges the payment method on file.
func (h *Handler) ApproveOrder(w http.ResponseWriter, r *http.Request) {
	order, charge, err := h.orders.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Order  OrderResponse                `json:"order"`
		Charge *paymentservice.ChargeResult `json:"charge"`
	}{mapOrderToResponse(order), charge})
}

// OrderHistory returns the saga log rows of an order.
func (h *Handler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.orders.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

func (h *Handler) Geocode(w http.ResponseWriter, r *http.Request) {
	var req GeocodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	loc, err := h.geocoder.Geocode(r.Context(), req.Address)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return false
	}
	return true
}

// writeAppError maps the apperr taxonomy onto HTTP. Causes are logged, never
// sent.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var oor *apperr.OutOfRadiusError
	if errors.As(err, &oor) {
		writeJSON(w, http.StatusBadRequest, OutOfRadiusResponse{
			Error:         "out_of_radius",
			Message:       oor.Error(),
			DistanceMiles: oor.DistanceMiles,
			AllowedMiles:  oor.AllowedMiles,
		})
		return
	}

	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindInvalidInput:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindUnavailable:
		status = http.StatusServiceUnavailable
	case apperr.KindUpstream:
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, apperr.Message(err), "")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
