// Package assignment decides whether a courier may take a delivery.
package assignment

import (
	"fmt"
	"strings"

	"parcel-service/internal/apperr"
	"parcel-service/internal/domain"
)

// Mode selects how strictly courier availability is enforced.
type Mode string

// Supported modes.
const (
	// ModeStrict accepts only available couriers and claims them (available -> busy).
	ModeStrict Mode = "strict"
	// ModeAdvisory also accepts busy couriers with a warning and never modifies the courier.
	ModeAdvisory Mode = "advisory"
)

// WarningCourierBusy is reported when advisory mode accepts a busy courier.
const WarningCourierBusy = "courier_busy"

// ParseMode parses a configured mode. An empty string selects ModeStrict.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStrict:
		return ModeStrict, nil
	case ModeAdvisory:
		return ModeAdvisory, nil
	default:
		return "", fmt.Errorf("%w: unknown assignment policy %q", apperr.ErrInvalid, s)
	}
}

// Policy applies a Mode to assignment requests.
type Policy struct {
	Mode Mode
}

// Outcome describes an accepted assignment.
type Outcome struct {
	Mode Mode
	// ClaimCourier is set when the caller must move the courier to busy in the
	// same transaction as the delivery update.
	ClaimCourier bool
	// Reconfirmed is set when the courier was already assigned to the delivery.
	Reconfirmed bool
	Warning     string
}

// Assign points d at courier c if the policy allows it.
//
// Re-confirming the courier already on the delivery always succeeds and
// changes nothing. Offline couriers are rejected in every mode. The delivery
// status is not consulted. The previous courier, if any, is not released.
func (p Policy) Assign(d *domain.Delivery, c domain.Courier) (Outcome, error) {
	mode := p.Mode
	if mode == "" {
		mode = ModeStrict
	}
	out := Outcome{Mode: mode}

	if d == nil {
		return Outcome{}, fmt.Errorf("%w: delivery is required", apperr.ErrInvalid)
	}
	if d.AssignedTo(c.ID) {
		out.Reconfirmed = true
		return out, nil
	}

	switch c.Status {
	case domain.CourierAvailable:
		out.ClaimCourier = mode == ModeStrict
	case domain.CourierBusy:
		if mode != ModeAdvisory {
			return Outcome{}, fmt.Errorf("%w: courier %d is busy", apperr.ErrCourierUnavailable, c.ID)
		}
		out.Warning = WarningCourierBusy
	case domain.CourierOffline:
		return Outcome{}, fmt.Errorf("%w: courier %d is offline", apperr.ErrCourierUnavailable, c.ID)
	default:
		return Outcome{}, fmt.Errorf("%w: courier %d has unknown status %q", apperr.ErrInvalid, c.ID, c.Status)
	}

	id := c.ID
	d.CourierID = &id
	return out, nil
}
