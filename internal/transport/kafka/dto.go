package kafka

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"parcel-service/internal/domain"
	"parcel-service/internal/service/scans"
)

// ScanDTO is the wire form of a carrier scan.
type ScanDTO struct {
	DeliveryID int64     `json:"delivery_id"`
	Status     string    `json:"status"`
	Location   *string   `json:"location,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ToDomain converts a ScanDTO to a scans.Event. Malformed scans are reported
// as permanent errors.
func ToDomain(dto ScanDTO) (scans.Event, error) {
	if dto.DeliveryID <= 0 {
		return scans.Event{}, Permanent(errors.New("delivery_id must be positive"))
	}
	st := domain.DeliveryStatus(strings.ToLower(strings.TrimSpace(dto.Status)))
	if !st.Valid() {
		return scans.Event{}, Permanent(fmt.Errorf("unknown status %q", dto.Status))
	}
	return scans.Event{
		DeliveryID: dto.DeliveryID,
		Status:     st,
		Location:   trimmed(dto.Location),
		Notes:      trimmed(dto.Notes),
		OccurredAt: dto.OccurredAt.UTC(),
	}, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
