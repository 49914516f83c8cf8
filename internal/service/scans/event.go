package scans

import (
	"time"

	"parcel-service/internal/domain"
)

// Event is a carrier scan reporting that a parcel reached a status.
type Event struct {
	DeliveryID int64
	Status     domain.DeliveryStatus
	Location   *string
	Notes      *string
	OccurredAt time.Time
}
