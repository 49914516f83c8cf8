package app

import (
	"context"

	"parcel-service/internal/cache"
	"parcel-service/internal/config"
	"parcel-service/internal/logx"
	pricingsvc "parcel-service/internal/service/pricing"
)

// newPricingCache connects to Redis when configured. The cache is optional:
// an unreachable server is logged and pricing reads go to storage.
func newPricingCache(ctx context.Context, cfg *config.Config, logger logx.Logger, res *closers) pricingsvc.ConfigCache {
	if cfg.Redis.Addr == "" {
		logger.Info("pricing cache disabled")
		return nil
	}

	rdb := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	c := cache.NewPricingConfigs(rdb)
	if err := c.Ping(ctx); err != nil {
		logger.Warn("pricing cache unavailable", logx.String("addr", cfg.Redis.Addr), logx.Err(err))
		_ = rdb.Close()
		return nil
	}
	res.add("redis", rdb.Close)
	logger.Info("pricing cache connected", logx.String("addr", cfg.Redis.Addr))
	return c
}
