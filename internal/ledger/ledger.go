// Package ledger holds the append-only history of delivery status changes.
package ledger

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"parcel-service/internal/apperr"
	"parcel-service/internal/domain"
)

// Ledger is an append-only store of tracking events.
//
// Events yields the events of one delivery ordered by timestamp, ties broken
// by insertion order. The sequence is finite and may be ranged over again;
// every range re-reads the ledger.
type Ledger interface {
	Append(ctx context.Context, ev *domain.TrackingEvent) error
	Events(ctx context.Context, deliveryID int64) iter.Seq2[domain.TrackingEvent, error]
}

// Collect drains Events into a slice.
func Collect(ctx context.Context, l Ledger, deliveryID int64) ([]domain.TrackingEvent, error) {
	out := make([]domain.TrackingEvent, 0)
	for ev, err := range l.Events(ctx, deliveryID) {
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// Memory is an in-process Ledger.
type Memory struct {
	mu     sync.RWMutex
	nextID int64
	events map[int64][]domain.TrackingEvent
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{events: make(map[int64][]domain.TrackingEvent)}
}

// Append stores ev and sets its ID.
func (m *Memory) Append(ctx context.Context, ev *domain.TrackingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev == nil || ev.DeliveryID <= 0 {
		return fmt.Errorf("%w: tracking event needs a delivery id", apperr.ErrInvalid)
	}
	if !ev.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", apperr.ErrInvalid, ev.Status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	ev.ID = m.nextID
	m.events[ev.DeliveryID] = append(m.events[ev.DeliveryID], *ev)
	return nil
}

// Events returns the ordered events of a delivery.
func (m *Memory) Events(ctx context.Context, deliveryID int64) iter.Seq2[domain.TrackingEvent, error] {
	return func(yield func(domain.TrackingEvent, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(domain.TrackingEvent{}, err)
			return
		}

		m.mu.RLock()
		snapshot := slices.Clone(m.events[deliveryID])
		m.mu.RUnlock()

		slices.SortFunc(snapshot, byTimeThenID)

		for _, ev := range snapshot {
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// Len returns the number of events recorded for a delivery.
func (m *Memory) Len(deliveryID int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events[deliveryID])
}

var _ Ledger = (*Memory)(nil)

// byTimeThenID orders events by timestamp. IDs grow with insertion, so they break ties.
func byTimeThenID(a, b domain.TrackingEvent) int {
	if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
