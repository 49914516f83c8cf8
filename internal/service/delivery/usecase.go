package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"parcel-service/internal/apperr"
	"parcel-service/internal/assignment"
	"parcel-service/internal/domain"
	"parcel-service/internal/ledger"
	"parcel-service/internal/lifecycle"
	"parcel-service/internal/logx"
	"parcel-service/internal/metrics"
	"parcel-service/internal/ports/deliverytx"
)

// Service - delivery use cases: creation, status transitions and courier assignment.
type Service struct {
	repo             deliveryRepository
	events           ledger.Ledger
	pricer           Pricer
	policy           assignment.Policy
	metrics          *metrics.Lifecycle
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
	trackingNumber   func() string
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTrackingNumbers replaces the tracking number generator.
func WithTrackingNumbers(fn func() string) Option {
	return func(s *Service) { s.trackingNumber = fn }
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// NewDeliveryService - creates a new DeliveryService.
func NewDeliveryService(
	r deliveryRepository,
	events ledger.Ledger,
	pricer Pricer,
	policy assignment.Policy,
	m *metrics.Lifecycle,
	timeout time.Duration,
	logger logx.Logger,
	opts ...Option,
) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	if policy.Mode == "" {
		policy.Mode = assignment.ModeStrict
	}
	s := &Service{
		repo:             r,
		events:           events,
		pricer:           pricer,
		policy:           policy,
		metrics:          m,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
		trackingNumber:   func() string { return "PCL-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the courier assignment mode in effect.
func (s *Service) Policy() assignment.Mode { return s.policy.Mode }

// Create prices in under the active config and stores a pending delivery
// carrying the quote. No tracking event is written.
func (s *Service) Create(ctx context.Context, in domain.PricingInputs) (*domain.Delivery, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	quote, err := s.pricer.Calculate(ctx, in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	d := &domain.Delivery{
		TrackingNumber: s.trackingNumber(),
		Status:         domain.DeliveryPending,
		Inputs:         in,
		Breakdown:      quote,
		PricingVersion: quote.PricingVersion,
		PaymentStatus:  domain.PaymentUnpaid,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		return tx.InsertDelivery(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("delivery created",
		logx.String("event", "delivery_created"),
		logx.Int64("delivery_id", d.ID),
		logx.String("tracking_number", d.TrackingNumber),
		logx.String("pricing_version", d.PricingVersion),
		logx.String("estimated_cost", d.Breakdown.EstimatedCost.String()),
	)
	return d, nil
}

// Get returns a delivery by id.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Delivery, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out *domain.Delivery
	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		d, err := loadDelivery(ctx, tx, id)
		out = d
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitTransition moves a delivery to target and records a tracking event,
// both in one transaction.
func (s *Service) SubmitTransition(
	ctx context.Context,
	id int64,
	target domain.DeliveryStatus,
	note domain.TransitionNote,
) (*domain.Delivery, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrInvalid, target)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		out  *domain.Delivery
		from domain.DeliveryStatus
	)
	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		d, err := loadDelivery(ctx, tx, id)
		if err != nil {
			return err
		}
		from = d.Status

		ev, err := lifecycle.Apply(d, target, note, s.now())
		if err != nil {
			return err
		}
		if err := tx.UpdateDeliveryStatus(ctx, d); err != nil {
			return err
		}
		if err := tx.AppendTrackingEvent(ctx, &ev); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		s.rejectTransition(id, from, target, err)
		return nil, err
	}

	s.metrics.Transition(string(from), string(target))
	s.logger.Info("delivery transitioned",
		logx.String("event", "delivery_transitioned"),
		logx.Int64("delivery_id", id),
		logx.String("from", string(from)),
		logx.String("to", string(target)),
		logx.Int64("version", out.Version),
	)
	return out, nil
}

func (s *Service) rejectTransition(id int64, from, target domain.DeliveryStatus, err error) {
	reason := "error"
	switch {
	case errors.Is(err, apperr.ErrInvalidTransition):
		reason = "invalid_transition"
	case errors.Is(err, apperr.ErrConcurrencyConflict):
		reason = "concurrency_conflict"
	case errors.Is(err, apperr.ErrNotFound):
		reason = "not_found"
	}
	s.metrics.Reject(reason)
	s.logger.Warn("delivery transition rejected",
		logx.Int64("delivery_id", id),
		logx.String("from", string(from)),
		logx.String("to", string(target)),
		logx.String("reason", reason),
		logx.Err(err),
	)
}

// AssignCourier points a delivery at a courier under the configured policy.
// In strict mode an available courier is claimed in the same transaction.
func (s *Service) AssignCourier(ctx context.Context, deliveryID, courierID int64) (domain.AssignResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		result  domain.AssignResult
		outcome string
	)
	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		d, err := loadDelivery(ctx, tx, deliveryID)
		if err != nil {
			return err
		}
		c, err := tx.GetCourier(ctx, courierID)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: courier %d", apperr.ErrNotFound, courierID)
		}

		out, err := s.policy.Assign(d, *c)
		if err != nil {
			return err
		}
		if !out.Reconfirmed {
			d.UpdatedAt = s.now()
			if err := tx.UpdateDeliveryCourier(ctx, d); err != nil {
				return err
			}
		}
		if out.ClaimCourier {
			c.Status = domain.CourierBusy
			if err := tx.UpdateCourierStatus(ctx, c); err != nil {
				return err
			}
		}

		result = domain.AssignResult{
			Delivery:    d,
			Courier:     *c,
			Policy:      string(out.Mode),
			Reconfirmed: out.Reconfirmed,
			Warning:     out.Warning,
		}
		outcome = assignmentOutcome(out)
		return nil
	})
	if err != nil {
		s.metrics.Assignment(string(s.policy.Mode), assignmentFailure(err))
		s.logger.Warn("courier assignment rejected",
			logx.Int64("delivery_id", deliveryID),
			logx.Int64("courier_id", courierID),
			logx.String("policy", string(s.policy.Mode)),
			logx.Err(err),
		)
		return domain.AssignResult{}, err
	}

	s.metrics.Assignment(result.Policy, outcome)
	s.logger.Info("courier assigned",
		logx.String("event", "courier_assigned"),
		logx.Int64("delivery_id", deliveryID),
		logx.Int64("courier_id", courierID),
		logx.String("policy", result.Policy),
		logx.String("outcome", outcome),
	)
	return result, nil
}

func assignmentOutcome(out assignment.Outcome) string {
	switch {
	case out.Reconfirmed:
		return "reconfirmed"
	case out.Warning != "":
		return out.Warning
	case out.ClaimCourier:
		return "claimed"
	default:
		return "assigned"
	}
}

func assignmentFailure(err error) string {
	switch {
	case errors.Is(err, apperr.ErrCourierUnavailable):
		return "unavailable"
	case errors.Is(err, apperr.ErrConcurrencyConflict):
		return "conflict"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrInvalid):
		return "invalid"
	default:
		return "error"
	}
}

// Events returns the tracking history of a delivery, oldest first.
func (s *Service) Events(ctx context.Context, id int64) ([]domain.TrackingEvent, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return ledger.Collect(ctx, s.events, id)
}

// VerifyQuote recomputes the stored quote under the delivery's recorded
// pricing version and reports whether the result is byte-identical.
func (s *Service) VerifyQuote(ctx context.Context, id int64) (domain.QuoteCheck, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return domain.QuoteCheck{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	recomputed, err := s.pricer.CalculateAt(ctx, d.PricingVersion, d.Inputs)
	if err != nil {
		return domain.QuoteCheck{}, err
	}

	want, err := json.Marshal(d.Breakdown)
	if err != nil {
		return domain.QuoteCheck{}, err
	}
	got, err := json.Marshal(recomputed)
	if err != nil {
		return domain.QuoteCheck{}, err
	}

	check := domain.QuoteCheck{
		DeliveryID:     d.ID,
		PricingVersion: d.PricingVersion,
		Matches:        bytes.Equal(want, got),
		Recorded:       d.Breakdown,
		Recomputed:     recomputed,
	}
	if !check.Matches {
		s.logger.Warn("quote mismatch",
			logx.Int64("delivery_id", d.ID),
			logx.String("pricing_version", d.PricingVersion),
		)
	}
	return check, nil
}

func loadDelivery(ctx context.Context, tx deliverytx.Repository, id int64) (*domain.Delivery, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: delivery id must be positive", apperr.ErrInvalid)
	}
	d, err := tx.GetDelivery(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: delivery %d", apperr.ErrNotFound, id)
	}
	return d, nil
}
