//go:generate mockgen -source=contracts.go -destination=pricing_mocks_test.go -package=pricing_test

package pricing

import (
	"context"

	"parcel-service/internal/domain"
)

// ConfigStore is the durable source of pricing configs.
// Lookups return nil, nil when nothing matches.
type ConfigStore interface {
	Active(ctx context.Context) (*domain.PricingConfig, error)
	ByVersion(ctx context.Context, version string) (*domain.PricingConfig, error)
}

// ConfigCache holds configs by version. Get returns nil, nil on a miss.
type ConfigCache interface {
	Get(ctx context.Context, version string) (*domain.PricingConfig, error)
	Set(ctx context.Context, cfg *domain.PricingConfig) error
}
