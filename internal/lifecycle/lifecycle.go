// Package lifecycle applies status transitions to deliveries.
package lifecycle

import (
	"fmt"
	"time"

	"parcel-service/internal/apperr"
	"parcel-service/internal/domain"
)

// Apply moves d to target and returns the tracking event describing the change.
//
// When target is not reachable from the current status Apply returns
// apperr.ErrInvalidTransition and d is left untouched. Pricing and courier
// fields are never modified. The caller persists both d and the event in one
// transaction.
func Apply(d *domain.Delivery, target domain.DeliveryStatus, note domain.TransitionNote, now time.Time) (domain.TrackingEvent, error) {
	if d == nil {
		return domain.TrackingEvent{}, fmt.Errorf("%w: delivery is required", apperr.ErrInvalid)
	}
	if !target.Valid() {
		return domain.TrackingEvent{}, fmt.Errorf("%w: unknown status %q", apperr.ErrInvalid, target)
	}
	if !d.Status.CanTransition(target) {
		return domain.TrackingEvent{}, fmt.Errorf("%w: %s -> %s", apperr.ErrInvalidTransition, d.Status, target)
	}

	d.Status = target
	d.UpdatedAt = now

	return domain.TrackingEvent{
		DeliveryID: d.ID,
		Status:     target,
		Location:   note.Location,
		Notes:      note.Notes,
		Timestamp:  now,
	}, nil
}
