package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"parcel-service/internal/apperr"
	"parcel-service/internal/config"
	"parcel-service/internal/ledger"
	"parcel-service/internal/logx"
	"parcel-service/internal/ports/deliverytx"
	"parcel-service/internal/pricing/source"
	"parcel-service/internal/repository"
	"parcel-service/internal/repository/memory"
	pricingsvc "parcel-service/internal/service/pricing"
)

// Storage is the persistence the services run against.
type Storage struct {
	Driver  string
	Tx      deliverytx.Runner
	Events  ledger.Ledger
	Pricing pricingsvc.ConfigStore
}

func openStorage(
	ctx context.Context,
	cfg *config.Config,
	logger logx.Logger,
	res *closers,
	dbConnect dbConnectFunc,
) (*Storage, error) {
	seed, err := loadSeed(cfg.Pricing.ConfigFile, logger)
	if err != nil {
		return nil, err
	}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		st, err := newMemoryStorage(seed)
		if err != nil {
			return nil, err
		}
		logger.Info("storage ready", logx.String("driver", st.Driver), logx.Int("pricing_versions", len(seed.Pricing)))
		return st, nil
	default:
		pool, err := dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
		if err != nil {
			return nil, err
		}
		res.add("postgres", func() error { pool.Close(); return nil })

		st, err := newPostgresStorage(ctx, pool, seed, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("storage ready", logx.String("driver", st.Driver))
		return st, nil
	}
}

// loadSeed reads the TOML seed file. A missing file yields an empty seed.
func loadSeed(path string, logger logx.Logger) (source.Seed, error) {
	if path == "" {
		return source.Seed{}, nil
	}
	seed, err := source.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("pricing seed file not found", logx.String("path", path))
		return source.Seed{}, nil
	}
	if err != nil {
		return source.Seed{}, fmt.Errorf("pricing seed: %w", err)
	}
	return seed, nil
}

func newMemoryStorage(seed source.Seed) (*Storage, error) {
	store := memory.NewStore()
	configs := memory.NewPricingStore()
	for _, cfg := range seed.Pricing {
		if err := configs.Put(cfg); err != nil {
			return nil, fmt.Errorf("seed pricing %s: %w", cfg.Version, err)
		}
	}
	for _, c := range seed.Couriers {
		if err := store.PutCourier(c); err != nil {
			return nil, fmt.Errorf("seed courier %d: %w", c.ID, err)
		}
	}
	return &Storage{
		Driver:  config.DriverMemory,
		Tx:      store,
		Events:  store.Ledger(),
		Pricing: configs,
	}, nil
}

// newPostgresStorage migrates the schema and inserts seed rows that are not
// there yet. Existing pricing versions are left untouched.
func newPostgresStorage(ctx context.Context, pool *pgxpool.Pool, seed source.Seed, logger logx.Logger) (*Storage, error) {
	if err := repository.Migrate(ctx, pool); err != nil {
		return nil, err
	}

	configs := repository.NewPricingRepo(pool)
	for _, cfg := range seed.Pricing {
		err := configs.Put(ctx, cfg)
		switch {
		case err == nil:
			logger.Info("pricing version seeded", logx.String("version", cfg.Version), logx.Bool("active", cfg.IsActive))
		case errors.Is(err, apperr.ErrConflict):
		default:
			return nil, fmt.Errorf("seed pricing %s: %w", cfg.Version, err)
		}
	}

	couriers := repository.NewCourierRepo(pool)
	for _, c := range seed.Couriers {
		if _, err := couriers.Seed(ctx, c); err != nil && !errors.Is(err, apperr.ErrConflict) {
			return nil, fmt.Errorf("seed courier %d: %w", c.ID, err)
		}
	}

	return &Storage{
		Driver:  config.DriverPostgres,
		Tx:      repository.NewDeliveryRepo(pool),
		Events:  repository.NewTrackingRepo(pool),
		Pricing: configs,
	}, nil
}
