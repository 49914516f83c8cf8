// Package scans applies carrier scan events to deliveries.
package scans

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"parcel-service/internal/apperr"
	"parcel-service/internal/domain"
	"parcel-service/internal/logx"
)

// RetryConfig bounds the retries of a scan that lost an optimistic-lock race.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryConfig is used for zero fields of a RetryConfig.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts: 5,
	BaseDelay:   50 * time.Millisecond,
	MaxDelay:    time.Second,
}

// Processor turns scan events into lifecycle transitions.
//
// A concurrency conflict is retried with capped exponential backoff. Events
// the lifecycle rejects (unknown delivery, unreachable status) are logged and
// dropped; redelivering them would fail the same way.
type Processor struct {
	transitions Transitioner
	retries     counter
	cfg         RetryConfig
	logger      logx.Logger
}

// NewProcessor creates a Processor. retries may be nil.
func NewProcessor(t Transitioner, retries counter, cfg RetryConfig, logger logx.Logger) *Processor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultRetryConfig.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultRetryConfig.BaseDelay
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Processor{transitions: t, retries: retries, cfg: cfg, logger: logger}
}

func (p *Processor) backoff() retry.Backoff {
	b := retry.NewExponential(p.cfg.BaseDelay)
	b = retry.WithCappedDuration(p.cfg.MaxDelay, b)
	return retry.WithMaxRetries(uint64(p.cfg.MaxAttempts-1), b)
}

// Handle applies one scan. It returns an error only when the event should be
// redelivered: retries exhausted or an unexpected failure.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	log := p.logger.With(
		logx.Int64("delivery_id", e.DeliveryID),
		logx.String("status", string(e.Status)),
	)
	if e.DeliveryID <= 0 || !e.Status.Valid() {
		log.Warn("scan dropped", logx.String("reason", "malformed"))
		return nil
	}

	note := domain.TransitionNote{Location: e.Location, Notes: e.Notes}
	attempt := 0
	err := retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		_, err := p.transitions.SubmitTransition(ctx, e.DeliveryID, e.Status, note)
		if errors.Is(err, apperr.ErrConcurrencyConflict) {
			if attempt < p.cfg.MaxAttempts {
				if p.retries != nil {
					p.retries.Inc()
				}
				log.Warn("scan retry", logx.Int("attempt", attempt), logx.Err(err))
			}
			return retry.RetryableError(err)
		}
		return err
	})

	switch {
	case err == nil:
		log.Info("scan applied",
			logx.String("event", "scan_applied"),
			logx.Time("occurred_at", e.OccurredAt),
			logx.Int("attempts", attempt),
		)
		return nil
	case errors.Is(err, apperr.ErrInvalidTransition),
		errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrInvalid):
		log.Warn("scan dropped", logx.String("reason", "rejected"), logx.Err(err))
		return nil
	default:
		log.Error("scan failed", logx.Int("attempts", attempt), logx.Err(err))
		return err
	}
}
