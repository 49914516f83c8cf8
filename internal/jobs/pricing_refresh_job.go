// Package jobs holds scheduled background tasks built on robfig/cron.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"parcel-service/internal/logx"
)

// Refresher reloads state from its source of truth.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// PricingRefreshJob periodically reloads the active pricing config so that a
// version activated by another instance is picked up without a restart.
type PricingRefreshJob struct {
	refresher Refresher
	spec      string
	timeout   time.Duration
	cron      *cron.Cron
	logger    logx.Logger
}

// NewPricingRefreshJob creates a job running refresher on the cron spec.
// Overlapping runs are skipped.
func NewPricingRefreshJob(refresher Refresher, spec string, timeout time.Duration, logger logx.Logger) *PricingRefreshJob {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &PricingRefreshJob{
		refresher: refresher,
		spec:      spec,
		timeout:   timeout,
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    logger.With(logx.String("component", "pricing_refresh_job")),
	}
}

// Start schedules the job. It returns an error for an unparsable spec.
func (j *PricingRefreshJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, func() { _ = j.RunOnce(context.Background()) }); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("pricing refresh job started", logx.String("spec", j.spec))
	return nil
}

// RunOnce performs a single refresh and logs a failure.
func (j *PricingRefreshJob) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	if err := j.refresher.Refresh(ctx); err != nil {
		j.logger.Error("pricing refresh failed", logx.Err(err))
		return err
	}
	return nil
}

// Stop unschedules the job and waits for a running refresh to finish or ctx to end.
func (j *PricingRefreshJob) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	j.logger.Info("pricing refresh job stopped")
}
