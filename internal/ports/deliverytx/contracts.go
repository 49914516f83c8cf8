// Package deliverytx declares the transactional repository the delivery service runs against.
package deliverytx

import (
	"context"

	"parcel-service/internal/domain"
)

// Repository is the set of reads and writes available inside one transaction.
//
// Getters return nil, nil when the record does not exist. Update methods are
// compare-and-swap on the record's Version: they write only when the stored
// version still equals the one on the argument, then bump the argument's
// Version. A stale version yields apperr.ErrConcurrencyConflict.
type Repository interface {
	GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error)
	GetCourier(ctx context.Context, id int64) (*domain.Courier, error)
	InsertDelivery(ctx context.Context, d *domain.Delivery) error
	UpdateDeliveryStatus(ctx context.Context, d *domain.Delivery) error
	UpdateDeliveryCourier(ctx context.Context, d *domain.Delivery) error
	UpdateCourierStatus(ctx context.Context, c *domain.Courier) error
	AppendTrackingEvent(ctx context.Context, ev *domain.TrackingEvent) error
}

// Runner is a transaction runner. fn's writes are committed together when it
// returns nil and discarded otherwise.
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
