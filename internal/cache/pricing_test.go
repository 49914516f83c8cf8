package cache_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"parcel-service/internal/cache"
	"parcel-service/internal/domain"
)

func newCache(t *testing.T) (*cache.PricingConfigs, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := cache.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.NewPricingConfigs(rdb), mr
}

func TestPricingConfigs_RoundTripWithoutExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, mr := newCache(t)

	cfg := &domain.PricingConfig{
		ID:            4,
		Version:       "2025-01",
		IsActive:      true,
		BaseRates:     map[domain.DeliveryType]decimal.Decimal{"standard": decimal.RequireFromString("50.25")},
		PeakHours:     []domain.PeakWindow{{Start: 8 * 60, End: 10 * 60}},
		MinimumCharge: decimal.RequireFromString("100"),
		DecimalPlaces: 2,
	}
	require.NoError(t, c.Set(ctx, cfg))

	require.True(t, mr.Exists("pricing:config:2025-01"))
	require.Zero(t, mr.TTL("pricing:config:2025-01"))

	got, err := c.Get(ctx, "2025-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "2025-01", got.Version)
	require.False(t, got.IsActive)
	require.True(t, got.BaseRates["standard"].Equal(decimal.RequireFromString("50.25")))
	require.Equal(t, cfg.PeakHours, got.PeakHours)
	require.True(t, cfg.IsActive, "caller's config is not modified")
}

func TestPricingConfigs_Miss(t *testing.T) {
	t.Parallel()

	c, _ := newCache(t)
	got, err := c.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPricingConfigs_CorruptEntry(t *testing.T) {
	t.Parallel()

	c, mr := newCache(t)
	require.NoError(t, mr.Set("pricing:config:bad", "{not json"))

	_, err := c.Get(context.Background(), "bad")
	require.Error(t, err)
}

func TestPricingConfigs_ServerDown(t *testing.T) {
	t.Parallel()

	c, mr := newCache(t)
	mr.Close()

	_, err := c.Get(context.Background(), "v1")
	require.Error(t, err)
	require.Error(t, c.Ping(context.Background()))
}
