package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"parcel-service/internal/apperr"
	"parcel-service/internal/domain"
)

// CourierRepo represents courier repository.
type CourierRepo struct{ db *pgxpool.Pool }

// NewCourierRepo creates a new CourierRepo.
func NewCourierRepo(db *pgxpool.Pool) *CourierRepo { return &CourierRepo{db: db} }

// Get - returns courier by its ID.
func (r *CourierRepo) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	return getCourier(ctx, r.db, id, "")
}

// Seed inserts c with its ID unless a courier with that ID already exists.
// It reports whether a row was written.
func (r *CourierRepo) Seed(ctx context.Context, c domain.Courier) (bool, error) {
	if !c.Status.Valid() || !c.TransportType.Valid() {
		return false, fmt.Errorf("%w: courier %d", apperr.ErrInvalid, c.ID)
	}
	tag, err := r.db.Exec(ctx, `
        INSERT INTO couriers (id, name, phone, status, transport_type)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO NOTHING
    `, c.ID, c.Name, c.Phone, string(c.Status), string(c.TransportType))
	if err != nil {
		if IsDuplicate(err) {
			return false, apperr.ErrConflict
		}
		return false, fmt.Errorf("seed courier %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	// keep the sequence ahead of explicitly seeded ids
	if _, err := r.db.Exec(ctx,
		`SELECT setval(pg_get_serial_sequence('couriers', 'id'), GREATEST((SELECT MAX(id) FROM couriers), 1))`,
	); err != nil {
		return true, fmt.Errorf("advance courier sequence: %w", err)
	}
	return true, nil
}

// getCourier reads one courier. lock is appended to the query as a row-locking
// clause, e.g. "FOR NO KEY UPDATE".
func getCourier(ctx context.Context, q querier, id int64, lock string) (*domain.Courier, error) {
	var c domain.Courier
	err := q.QueryRow(ctx,
		`SELECT id, name, phone, status, transport_type, version FROM couriers WHERE id=$1 `+lock, id,
	).Scan(&c.ID, &c.Name, &c.Phone, &c.Status, &c.TransportType, &c.Version)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get courier %d: %w", id, err)
	}
	return &c, nil
}
