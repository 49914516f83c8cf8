package domain

import "time"

// TransitionNote carries the optional details recorded with a status change.
type TransitionNote struct {
	Location *string
	Notes    *string
}

// TrackingEvent records one accepted status transition. It is never mutated or deleted.
type TrackingEvent struct {
	ID         int64          `json:"id"`
	DeliveryID int64          `json:"delivery_id"`
	Status     DeliveryStatus `json:"status"`
	Location   *string        `json:"location,omitempty"`
	Notes      *string        `json:"notes,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}
