package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"parcel-service/internal/config"
	"parcel-service/internal/http/debug"
	"parcel-service/internal/http/handlers"
	"parcel-service/internal/http/middleware"
	"parcel-service/internal/http/middleware/ratelimit"
	"parcel-service/internal/http/router"
	"parcel-service/internal/logx"
)

// debugServer is the optional pprof listener; nil when disabled.
type debugServer struct{ *http.Server }

func registerHTTP(container *dig.Container) error {
	return provideAll(container,
		handlers.New,
		handlers.NewDeliveryUsecase,
		handlers.NewDeliveryHandler,
		handlers.NewPricingUsecase,
		handlers.NewPricingHandler,
		handlers.NewCourierUsecase,
		handlers.NewCourierHandler,
		newRateLimiter,
		newRateLimitMiddleware,
		newRouter,
		newServer,
		newDebugServer,
	)
}

func newRouter(
	base *handlers.Handlers,
	deliveries *handlers.DeliveryHandler,
	pricing *handlers.PricingHandler,
	couriers *handlers.CourierHandler,
	rl *ratelimit.Middleware,
	m *appMetrics,
	logger logx.Logger,
) http.Handler {
	return router.New(base, deliveries, pricing, couriers,
		router.WithMiddleware(middleware.Observability(m.HTTP, logger), rl.Handler()),
		router.WithMetrics(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})),
	)
}

func newServer(cfg *config.Config, mux http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func newDebugServer(cfg *config.Config) debugServer {
	if cfg.Pprof.Addr == "" {
		return debugServer{}
	}
	return debugServer{debug.NewServer(cfg.Pprof.Addr, debug.Credentials{
		User: cfg.Pprof.User,
		Pass: cfg.Pprof.Pass,
	})}
}
