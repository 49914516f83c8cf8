// Package pricing serves quotes against the active or a recorded pricing config.
package pricing

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"parcel-service/internal/apperr"
	"parcel-service/internal/domain"
	"parcel-service/internal/logx"
	"parcel-service/internal/metrics"
	"parcel-service/internal/pricing"
)

// Service prices deliveries. The active config is held as an immutable
// snapshot and swapped by Refresh.
type Service struct {
	store            ConfigStore
	cache            ConfigCache
	metrics          *metrics.Pricing
	operationTimeout time.Duration
	logger           logx.Logger

	active atomic.Pointer[domain.PricingConfig]
}

// NewService creates a pricing service. cache and m may be nil.
func NewService(store ConfigStore, cache ConfigCache, m *metrics.Pricing, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		store:            store,
		cache:            cache,
		metrics:          m,
		operationTimeout: timeout,
		logger:           logger,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Refresh reloads the active config from the store.
func (s *Service) Refresh(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cfg, err := s.store.Active(ctx)
	if err != nil {
		return fmt.Errorf("load active pricing config: %w", err)
	}
	if cfg == nil {
		return fmt.Errorf("%w: no active pricing config", apperr.ErrNotFound)
	}

	prev := s.active.Swap(cfg)
	if prev == nil || prev.Version != cfg.Version {
		from := ""
		if prev != nil {
			from = prev.Version
		}
		s.logger.Info("pricing config activated",
			logx.String("event", "pricing_activated"),
			logx.String("from", from),
			logx.String("version", cfg.Version),
		)
		s.metrics.SetActiveVersion(cfg.Version)
	}
	s.remember(ctx, cfg)
	return nil
}

// Active returns the active config snapshot, loading it on first use.
func (s *Service) Active(ctx context.Context) (*domain.PricingConfig, error) {
	if cfg := s.active.Load(); cfg != nil {
		return cfg, nil
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s.active.Load(), nil
}

// Calculate prices in under the active config.
func (s *Service) Calculate(ctx context.Context, in domain.PricingInputs) (domain.PricingBreakdown, error) {
	cfg, err := s.Active(ctx)
	if err != nil {
		return domain.PricingBreakdown{}, err
	}
	return s.compute(in, cfg)
}

// CalculateAt prices in under a specific config version.
func (s *Service) CalculateAt(ctx context.Context, version string, in domain.PricingInputs) (domain.PricingBreakdown, error) {
	cfg, err := s.Config(ctx, version)
	if err != nil {
		return domain.PricingBreakdown{}, err
	}
	return s.compute(in, cfg)
}

// Config returns the config for version, reading through the cache.
func (s *Service) Config(ctx context.Context, version string) (*domain.PricingConfig, error) {
	if cur := s.active.Load(); cur != nil && cur.Version == version {
		return cur, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if s.cache != nil {
		cfg, err := s.cache.Get(ctx, version)
		if err != nil {
			s.logger.Warn("pricing cache read failed", logx.String("version", version), logx.Err(err))
		} else if cfg != nil {
			return cfg, nil
		}
	}

	cfg, err := s.store.ByVersion(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("load pricing config %s: %w", version, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: pricing version %s", apperr.ErrNotFound, version)
	}
	s.remember(ctx, cfg)
	return cfg, nil
}

func (s *Service) remember(ctx context.Context, cfg *domain.PricingConfig) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cfg); err != nil {
		s.logger.Warn("pricing cache write failed", logx.String("version", cfg.Version), logx.Err(err))
	}
}

func (s *Service) compute(in domain.PricingInputs, cfg *domain.PricingConfig) (domain.PricingBreakdown, error) {
	b, err := pricing.Compute(in, cfg)
	if err != nil {
		s.metrics.Quote("invalid")
		return domain.PricingBreakdown{}, err
	}
	s.metrics.Quote("ok")
	s.logger.Debug("quote computed",
		logx.String("event", "quote_computed"),
		logx.String("pricing_version", b.PricingVersion),
		logx.String("estimated_cost", b.EstimatedCost.String()),
	)
	return b, nil
}
