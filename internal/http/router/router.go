package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"parcel-service/internal/http/handlers"
)

type options struct {
	middlewares []func(http.Handler) http.Handler
	metrics     http.Handler
	timeout     time.Duration
}

// Option customises the router.
type Option func(*options)

// WithMiddleware appends middlewares after the base chain (request id, real ip, recoverer).
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(o *options) { o.middlewares = append(o.middlewares, mw...) }
}

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(o *options) { o.metrics = h }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(
	h *handlers.Handlers,
	deliveries *handlers.DeliveryHandler,
	pricing *handlers.PricingHandler,
	couriers *handlers.CourierHandler,
	opts ...Option,
) http.Handler {
	o := options{timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(o.middlewares...)

	r.Get("/ping", h.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.HealthcheckHead))
	if o.metrics != nil {
		r.Method(http.MethodGet, "/metrics", o.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(o.timeout))

		r.Route("/pricing", func(r chi.Router) {
			r.Post("/quote", pricing.Quote)
			r.Get("/config", pricing.ActiveConfig)
		})

		r.Route("/deliveries", func(r chi.Router) {
			r.Post("/", deliveries.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", deliveries.Get)
				r.Post("/transitions", deliveries.Transition)
				r.Post("/courier", deliveries.AssignCourier)
				r.Get("/events", deliveries.Events)
				r.Get("/quote/verify", deliveries.VerifyQuote)
			})
		})

		r.Get("/couriers/{id}", couriers.Get)
	})

	r.NotFound(h.NotFound)
	return r
}
