package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"parcel-service/internal/apperr"
	"parcel-service/internal/domain"
)

// PricingRepo stores versioned pricing configs. Rows are never updated except
// for the is_active flag.
type PricingRepo struct {
	db *pgxpool.Pool
}

// NewPricingRepo creates a new PricingRepo.
func NewPricingRepo(db *pgxpool.Pool) *PricingRepo {
	return &PricingRepo{db: db}
}

// Put inserts a new config version. When cfg.IsActive is set the version
// replaces the current active one in the same transaction.
func (r *PricingRepo) Put(ctx context.Context, cfg domain.PricingConfig) error {
	if cfg.Version == "" {
		return fmt.Errorf("%w: pricing config version is required", apperr.ErrInvalid)
	}
	body, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode pricing config: %w", err)
	}

	return pgx.BeginTxFunc(ctx, r.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if cfg.IsActive {
			if _, err := tx.Exec(ctx, `UPDATE pricing_configs SET is_active = false WHERE is_active`); err != nil {
				return fmt.Errorf("deactivate pricing config: %w", err)
			}
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO pricing_configs (version, is_active, body) VALUES ($1, $2, $3)`,
			cfg.Version, cfg.IsActive, body)
		if err != nil {
			if IsDuplicate(err) {
				return fmt.Errorf("%w: pricing version %s exists", apperr.ErrConflict, cfg.Version)
			}
			return fmt.Errorf("insert pricing config: %w", err)
		}
		return nil
	})
}

// Activate makes version the single active config.
func (r *PricingRepo) Activate(ctx context.Context, version string) error {
	return pgx.BeginTxFunc(ctx, r.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE pricing_configs SET is_active = false WHERE is_active`); err != nil {
			return fmt.Errorf("deactivate pricing config: %w", err)
		}
		tag, err := tx.Exec(ctx, `UPDATE pricing_configs SET is_active = true WHERE version = $1`, version)
		if err != nil {
			return fmt.Errorf("activate pricing config %s: %w", version, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: pricing version %s", apperr.ErrNotFound, version)
		}
		return nil
	})
}

// Active returns the active config, or nil when none is active.
func (r *PricingRepo) Active(ctx context.Context) (*domain.PricingConfig, error) {
	return r.getOne(ctx, `SELECT id, version, is_active, body FROM pricing_configs WHERE is_active`)
}

// ByVersion returns the config with the given version, or nil when unknown.
func (r *PricingRepo) ByVersion(ctx context.Context, version string) (*domain.PricingConfig, error) {
	return r.getOne(ctx, `SELECT id, version, is_active, body FROM pricing_configs WHERE version = $1`, version)
}

func (r *PricingRepo) getOne(ctx context.Context, sql string, args ...any) (*domain.PricingConfig, error) {
	var (
		cfg  domain.PricingConfig
		id   int64
		ver  string
		act  bool
		body []byte
	)
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id, &ver, &act, &body); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pricing config: %w", err)
	}
	if err := json.Unmarshal(body, &cfg); err != nil {
		return nil, fmt.Errorf("decode pricing config %s: %w", ver, err)
	}
	cfg.ID, cfg.Version, cfg.IsActive = id, ver, act
	return &cfg, nil
}
