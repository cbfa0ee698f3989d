package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/jcmexdev/mealprep-builder/internal/api-gateway/infra/httpx/middlewares"
)

// RouterConfig holds the edge settings of the HTTP API.
type RouterConfig struct {
	CORSOrigins []string
	// PriceRateLimit is requests per second per client on the pricing
	// endpoint. Zero disables the limit.
	PriceRateLimit float64
	PriceRateBurst int
	// TrustProxy rewrites RemoteAddr from X-Forwarded-For and X-Real-IP.
	// Without it the rate limiter keys on the connection address.
	TrustProxy bool
}

func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middlewares.AttachTracingMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.PriceRateLimit > 0 {
				r.Use(middlewares.NewRateLimiter(cfg.PriceRateLimit, cfg.PriceRateBurst).Limit)
			}
			r.Post("/builder/price", handler.PriceBuilder)
		})

		r.Post("/orders", handler.CreateOrder)
		r.Get("/orders", handler.ListOrders)
		r.Get("/orders/{id}", handler.GetOrderByID)
		r.Patch("/orders/{id}", handler.UpdateOrder)
		r.Post("/orders/{id}/approve", handler.ApproveOrder)
		r.Get("/orders/{id}/history", handler.OrderHistory)

		r.Post("/geocode", handler.Geocode)
	})

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-Id", "traceparent", "tracestate"},
		ExposedHeaders: []string{"X-Request-Id"},
	}).Handler(r)
}
