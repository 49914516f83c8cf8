package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates and pings a new pgx connection pool.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Migrate creates the tables used by the repositories if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	return nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS couriers (
		id             BIGSERIAL PRIMARY KEY,
		name           TEXT NOT NULL,
		phone          TEXT NOT NULL UNIQUE,
		status         TEXT NOT NULL CHECK (status IN ('available', 'busy', 'offline')),
		transport_type TEXT NOT NULL CHECK (transport_type IN ('on_foot', 'scooter', 'car')),
		version        BIGINT NOT NULL DEFAULT 1,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS deliveries (
		id              BIGSERIAL PRIMARY KEY,
		tracking_number TEXT NOT NULL UNIQUE,
		status          TEXT NOT NULL CHECK (status IN (
			'pending', 'confirmed', 'scheduled', 'out_for_pickup', 'picked_up', 'at_warehouse',
			'in_transit', 'out_for_delivery', 'delivery_attempted', 'delivered', 'returned',
			'returned_to_sender', 'on_hold', 'failed', 'cancelled')),
		courier_id      BIGINT,
		inputs          JSONB NOT NULL,
		breakdown       JSONB NOT NULL,
		pricing_version TEXT NOT NULL,
		payment_status  TEXT NOT NULL CHECK (payment_status IN ('unpaid', 'paid', 'refunded')),
		version         BIGINT NOT NULL DEFAULT 1,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tracking_events (
		id          BIGSERIAL PRIMARY KEY,
		delivery_id BIGINT NOT NULL REFERENCES deliveries(id),
		status      TEXT NOT NULL,
		location    TEXT,
		notes       TEXT,
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS tracking_events_delivery_idx
		ON tracking_events (delivery_id, occurred_at, id)`,
	`CREATE TABLE IF NOT EXISTS pricing_configs (
		id         BIGSERIAL PRIMARY KEY,
		version    TEXT NOT NULL UNIQUE,
		is_active  BOOLEAN NOT NULL DEFAULT false,
		body       JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS pricing_configs_single_active
		ON pricing_configs (is_active) WHERE is_active`,
}
