package repository

import (
	"context"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5/pgxpool"

	"parcel-service/internal/apperr"
	"parcel-service/internal/domain"
	"parcel-service/internal/ledger"
)

// TrackingRepo is the postgres ledger of tracking events.
type TrackingRepo struct {
	db *pgxpool.Pool
}

// NewTrackingRepo creates a new TrackingRepo.
func NewTrackingRepo(db *pgxpool.Pool) *TrackingRepo {
	return &TrackingRepo{db: db}
}

// Append inserts ev outside of any delivery transaction.
func (r *TrackingRepo) Append(ctx context.Context, ev *domain.TrackingEvent) error {
	return insertTrackingEvent(ctx, r.db, ev)
}

// Events streams the events of a delivery ordered by occurred_at, then id.
// Each range over the returned sequence runs the query again.
func (r *TrackingRepo) Events(ctx context.Context, deliveryID int64) iter.Seq2[domain.TrackingEvent, error] {
	return func(yield func(domain.TrackingEvent, error) bool) {
		rows, err := r.db.Query(ctx, `
            SELECT id, delivery_id, status, location, notes, occurred_at
            FROM tracking_events
            WHERE delivery_id = $1
            ORDER BY occurred_at, id
        `, deliveryID)
		if err != nil {
			yield(domain.TrackingEvent{}, fmt.Errorf("query tracking events: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var ev domain.TrackingEvent
			if err := rows.Scan(&ev.ID, &ev.DeliveryID, &ev.Status, &ev.Location, &ev.Notes, &ev.Timestamp); err != nil {
				yield(domain.TrackingEvent{}, fmt.Errorf("scan tracking event: %w", err))
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.TrackingEvent{}, err)
		}
	}
}

func insertTrackingEvent(ctx context.Context, q querier, ev *domain.TrackingEvent) error {
	if ev == nil || !ev.Status.Valid() {
		return fmt.Errorf("%w: malformed tracking event", apperr.ErrInvalid)
	}
	err := q.QueryRow(ctx, `
        INSERT INTO tracking_events (delivery_id, status, location, notes, occurred_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `, ev.DeliveryID, string(ev.Status), ev.Location, ev.Notes, ev.Timestamp).Scan(&ev.ID)
	if err != nil {
		return fmt.Errorf("insert tracking event: %w", err)
	}
	return nil
}

var _ ledger.Ledger = (*TrackingRepo)(nil)
