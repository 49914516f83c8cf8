// Package memory is an in-process storage driver with the same transactional
// semantics as the postgres repositories.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"parcel-service/internal/apperr"
	"parcel-service/internal/domain"
	"parcel-service/internal/ledger"
	"parcel-service/internal/ports/deliverytx"
)

// Store keeps deliveries and couriers in maps and tracking events in a ledger.Memory.
//
// A transaction buffers its writes and validates every expected version again
// at commit, so of two transactions that read the same version only the first
// to commit succeeds. Couriers a transaction only read are checked too.
type Store struct {
	mu         sync.Mutex
	nextID     int64
	deliveries map[int64]domain.Delivery
	couriers   map[int64]domain.Courier
	events     *ledger.Memory
	now        func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		deliveries: make(map[int64]domain.Delivery),
		couriers:   make(map[int64]domain.Courier),
		events:     ledger.NewMemory(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Ledger exposes the tracking events written by committed transactions.
func (s *Store) Ledger() *ledger.Memory { return s.events }

// PutCourier seeds or replaces a courier. Version starts at 1 when unset; a
// replacement always gets a version above the stored one.
func (s *Store) PutCourier(c domain.Courier) error {
	if c.ID <= 0 {
		return fmt.Errorf("%w: courier id must be positive", apperr.ErrInvalid)
	}
	if !c.Status.Valid() {
		return fmt.Errorf("%w: courier status %q", apperr.ErrInvalid, c.Status)
	}
	if c.Version == 0 {
		c.Version = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.couriers[c.ID]; ok && c.Version <= cur.Version {
		c.Version = cur.Version + 1
	}
	s.couriers[c.ID] = c
	return nil
}

// WithTx runs fn against a buffered transaction and commits its writes atomically.
func (s *Store) WithTx(ctx context.Context, fn func(tx deliverytx.Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &txRepo{
		s:           s,
		deliveries:  make(map[int64]*pendingDelivery),
		couriers:    make(map[int64]*pendingCourier),
		courierRead: make(map[int64]int64),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *Store) commit(tx *txRepo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range tx.deliveries {
		if p.inserted {
			continue
		}
		if cur, ok := s.deliveries[id]; !ok || cur.Version != p.expected {
			return fmt.Errorf("%w: delivery %d", apperr.ErrConcurrencyConflict, id)
		}
	}
	for id, p := range tx.couriers {
		if cur, ok := s.couriers[id]; !ok || cur.Version != p.expected {
			return fmt.Errorf("%w: courier %d", apperr.ErrConcurrencyConflict, id)
		}
	}
	for id, version := range tx.courierRead {
		if _, written := tx.couriers[id]; written {
			continue
		}
		if cur, ok := s.couriers[id]; !ok || cur.Version != version {
			return fmt.Errorf("%w: courier %d changed since read", apperr.ErrConcurrencyConflict, id)
		}
	}

	for id, p := range tx.deliveries {
		s.deliveries[id] = p.val
	}
	for id, p := range tx.couriers {
		s.couriers[id] = p.val
	}
	for _, ev := range tx.events {
		// events were validated on append; the ledger cannot refuse them here
		if err := s.events.Append(context.Background(), ev); err != nil {
			return fmt.Errorf("append tracking event: %w", err)
		}
	}
	return nil
}

type pendingDelivery struct {
	expected int64
	inserted bool
	val      domain.Delivery
}

type pendingCourier struct {
	expected int64
	val      domain.Courier
}

type txRepo struct {
	s          *Store
	deliveries map[int64]*pendingDelivery
	couriers   map[int64]*pendingCourier
	events     []*domain.TrackingEvent
	// courierRead holds the version of every courier read from the store.
	courierRead map[int64]int64
}

func (t *txRepo) GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p, ok := t.deliveries[id]; ok {
		d := p.val
		return &d, nil
	}
	t.s.mu.Lock()
	d, ok := t.s.deliveries[id]
	t.s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (t *txRepo) GetCourier(ctx context.Context, id int64) (*domain.Courier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p, ok := t.couriers[id]; ok {
		c := p.val
		return &c, nil
	}
	t.s.mu.Lock()
	c, ok := t.s.couriers[id]
	t.s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	if _, seen := t.courierRead[id]; !seen {
		t.courierRead[id] = c.Version
	}
	return &c, nil
}

func (t *txRepo) InsertDelivery(ctx context.Context, d *domain.Delivery) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.s.mu.Lock()
	for _, existing := range t.s.deliveries {
		if existing.TrackingNumber == d.TrackingNumber {
			t.s.mu.Unlock()
			return fmt.Errorf("%w: tracking number %s", apperr.ErrConflict, d.TrackingNumber)
		}
	}
	t.s.nextID++
	d.ID = t.s.nextID
	t.s.mu.Unlock()

	now := t.s.now()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = d.CreatedAt
	}
	d.Version = 1
	t.deliveries[d.ID] = &pendingDelivery{inserted: true, val: *d}
	return nil
}

func (t *txRepo) UpdateDeliveryStatus(ctx context.Context, d *domain.Delivery) error {
	return t.updateDelivery(ctx, d, func(stored *domain.Delivery) {
		stored.Status = d.Status
	})
}

func (t *txRepo) UpdateDeliveryCourier(ctx context.Context, d *domain.Delivery) error {
	return t.updateDelivery(ctx, d, func(stored *domain.Delivery) {
		stored.CourierID = d.CourierID
	})
}

func (t *txRepo) updateDelivery(ctx context.Context, d *domain.Delivery, apply func(*domain.Delivery)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, ok := t.deliveries[d.ID]
	if !ok {
		t.s.mu.Lock()
		cur, found := t.s.deliveries[d.ID]
		t.s.mu.Unlock()
		if !found {
			return fmt.Errorf("%w: delivery %d", apperr.ErrConcurrencyConflict, d.ID)
		}
		p = &pendingDelivery{expected: cur.Version, val: cur}
	}
	if p.val.Version != d.Version {
		return fmt.Errorf("%w: delivery %d", apperr.ErrConcurrencyConflict, d.ID)
	}

	prev := p.val.UpdatedAt
	apply(&p.val)
	p.val.UpdatedAt = t.s.now()
	if d.UpdatedAt.After(prev) {
		p.val.UpdatedAt = d.UpdatedAt
	}
	p.val.Version++
	t.deliveries[d.ID] = p

	d.Version = p.val.Version
	d.UpdatedAt = p.val.UpdatedAt
	return nil
}

func (t *txRepo) UpdateCourierStatus(ctx context.Context, c *domain.Courier) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, ok := t.couriers[c.ID]
	if !ok {
		t.s.mu.Lock()
		cur, found := t.s.couriers[c.ID]
		t.s.mu.Unlock()
		if !found {
			return fmt.Errorf("%w: courier %d", apperr.ErrConcurrencyConflict, c.ID)
		}
		p = &pendingCourier{expected: cur.Version, val: cur}
	}
	if p.val.Version != c.Version {
		return fmt.Errorf("%w: courier %d", apperr.ErrConcurrencyConflict, c.ID)
	}

	p.val.Status = c.Status
	p.val.Version++
	t.couriers[c.ID] = p
	c.Version = p.val.Version
	return nil
}

func (t *txRepo) AppendTrackingEvent(ctx context.Context, ev *domain.TrackingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev == nil || ev.DeliveryID <= 0 || !ev.Status.Valid() {
		return fmt.Errorf("%w: malformed tracking event", apperr.ErrInvalid)
	}
	t.events = append(t.events, ev)
	return nil
}

var _ deliverytx.Runner = (*Store)(nil)
