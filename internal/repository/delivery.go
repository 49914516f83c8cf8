package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"parcel-service/internal/apperr"
	"parcel-service/internal/domain"
	"parcel-service/internal/ports/deliverytx"
)

// DeliveryRepo represents delivery repository.
type DeliveryRepo struct {
	db *pgxpool.Pool
}

// NewDeliveryRepo creates a new DeliveryRepo.
func NewDeliveryRepo(db *pgxpool.Pool) *DeliveryRepo {
	return &DeliveryRepo{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (r *DeliveryRepo) WithTx(ctx context.Context, fn func(tx deliverytx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&TxRepo{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// TxRepo represents transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

const deliveryColumns = `id, tracking_number, status, courier_id, inputs, breakdown,
	pricing_version, payment_status, version, created_at, updated_at`

// GetDelivery returns the delivery or nil when it does not exist.
func (r *TxRepo) GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1`, id)

	d, err := scanDelivery(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery %d: %w", id, err)
	}
	return d, nil
}

func scanDelivery(row pgx.Row) (*domain.Delivery, error) {
	var (
		d                 domain.Delivery
		inputs, breakdown []byte
	)
	err := row.Scan(&d.ID, &d.TrackingNumber, &d.Status, &d.CourierID, &inputs, &breakdown,
		&d.PricingVersion, &d.PaymentStatus, &d.Version, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(inputs, &d.Inputs); err != nil {
		return nil, fmt.Errorf("decode inputs: %w", err)
	}
	if err := json.Unmarshal(breakdown, &d.Breakdown); err != nil {
		return nil, fmt.Errorf("decode breakdown: %w", err)
	}
	return &d, nil
}

// InsertDelivery inserts d and sets its ID and Version.
func (r *TxRepo) InsertDelivery(ctx context.Context, d *domain.Delivery) error {
	inputs, err := json.Marshal(d.Inputs)
	if err != nil {
		return fmt.Errorf("encode inputs: %w", err)
	}
	breakdown, err := json.Marshal(d.Breakdown)
	if err != nil {
		return fmt.Errorf("encode breakdown: %w", err)
	}

	err = r.tx.QueryRow(ctx, `
        INSERT INTO deliveries (tracking_number, status, courier_id, inputs, breakdown,
                                pricing_version, payment_status, version, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8, $9)
        RETURNING id, version
    `, d.TrackingNumber, string(d.Status), d.CourierID, inputs, breakdown,
		d.PricingVersion, string(d.PaymentStatus), d.CreatedAt, d.UpdatedAt,
	).Scan(&d.ID, &d.Version)
	if err != nil {
		if IsDuplicate(err) {
			return fmt.Errorf("%w: tracking number %s", apperr.ErrConflict, d.TrackingNumber)
		}
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

// UpdateDeliveryStatus writes d.Status if d.Version is still current.
func (r *TxRepo) UpdateDeliveryStatus(ctx context.Context, d *domain.Delivery) error {
	tag, err := r.tx.Exec(ctx, `
        UPDATE deliveries
        SET status = $3, updated_at = $4, version = version + 1
        WHERE id = $1 AND version = $2
    `, d.ID, d.Version, string(d.Status), d.UpdatedAt)
	if err := casResult(tag, err, "delivery", d.ID); err != nil {
		return err
	}
	d.Version++
	return nil
}

// UpdateDeliveryCourier writes d.CourierID if d.Version is still current.
func (r *TxRepo) UpdateDeliveryCourier(ctx context.Context, d *domain.Delivery) error {
	tag, err := r.tx.Exec(ctx, `
        UPDATE deliveries
        SET courier_id = $3, updated_at = $4, version = version + 1
        WHERE id = $1 AND version = $2
    `, d.ID, d.Version, d.CourierID, d.UpdatedAt)
	if err := casResult(tag, err, "delivery", d.ID); err != nil {
		return err
	}
	d.Version++
	return nil
}

// GetCourier returns the courier or nil when it does not exist. The row stays
// locked until the transaction ends, so the status the caller validated is
// still the status at commit.
func (r *TxRepo) GetCourier(ctx context.Context, id int64) (*domain.Courier, error) {
	return getCourier(ctx, r.tx, id, "FOR NO KEY UPDATE")
}

// UpdateCourierStatus writes c.Status if c.Version is still current.
func (r *TxRepo) UpdateCourierStatus(ctx context.Context, c *domain.Courier) error {
	tag, err := r.tx.Exec(ctx, `
        UPDATE couriers
        SET status = $3, updated_at = now(), version = version + 1
        WHERE id = $1 AND version = $2
    `, c.ID, c.Version, string(c.Status))
	if err := casResult(tag, err, "courier", c.ID); err != nil {
		return err
	}
	c.Version++
	return nil
}

// AppendTrackingEvent inserts ev inside the transaction.
func (r *TxRepo) AppendTrackingEvent(ctx context.Context, ev *domain.TrackingEvent) error {
	return insertTrackingEvent(ctx, r.tx, ev)
}

var _ deliverytx.Runner = (*DeliveryRepo)(nil)
