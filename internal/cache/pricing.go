// Package cache keeps pricing configs in Redis, keyed by version.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"parcel-service/internal/domain"
)

const (
	defaultPrefix  = "pricing:config:"
	defaultTimeout = 500 * time.Millisecond
)

// PricingConfigs caches pricing configs. A version never changes once
// published, so entries are written without expiry.
type PricingConfigs struct {
	rdb     redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// NewPricingConfigs wraps a redis client.
func NewPricingConfigs(rdb redis.UniversalClient) *PricingConfigs {
	return &PricingConfigs{rdb: rdb, prefix: defaultPrefix, timeout: defaultTimeout}
}

// NewClient creates a redis client for addr.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Get returns the cached config, or nil on a miss.
func (c *PricingConfigs) Get(ctx context.Context, version string) (*domain.PricingConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.rdb.Get(ctx, c.prefix+version).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", version, err)
	}

	var cfg domain.PricingConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode cached pricing config %s: %w", version, err)
	}
	return &cfg, nil
}

// Set stores cfg under its version. The active flag is not cached.
func (c *PricingConfigs) Set(ctx context.Context, cfg *domain.PricingConfig) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cp := *cfg
	cp.IsActive = false
	raw, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode pricing config %s: %w", cfg.Version, err)
	}
	if err := c.rdb.Set(ctx, c.prefix+cfg.Version, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", cfg.Version, err)
	}
	return nil
}

// Ping checks connectivity.
func (c *PricingConfigs) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}
