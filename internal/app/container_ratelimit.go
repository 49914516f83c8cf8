package app

import (
	"parcel-service/internal/config"
	"parcel-service/internal/http/middleware/ratelimit"
	"parcel-service/internal/logx"
)

func newRateLimiter(cfg *config.Config) ratelimit.Limiter {
	rl := cfg.RateLimit
	if !rl.Enabled {
		return ratelimit.AllowAll{}
	}
	return ratelimit.NewKeyedLimiter(nil, ratelimit.Config{
		Rate:       rl.Rate,
		Burst:      rl.Burst,
		TTL:        rl.TTL,
		MaxClients: rl.MaxClients,
	})
}

func newRateLimitMiddleware(logger logx.Logger, m *appMetrics, limiter ratelimit.Limiter) *ratelimit.Middleware {
	return ratelimit.New(logger, m.RateLimited, limiter)
}
