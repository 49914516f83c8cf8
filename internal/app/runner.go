package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/dig"

	"parcel-service/internal/jobs"
	"parcel-service/internal/logx"
)

const shutdownTimeout = 15 * time.Second

// Runner runs the HTTP service.
type Runner struct {
	runFn func(*dig.Container) error
	exit  func(int)
}

// NewRunner returns a new Runner
func NewRunner() *Runner {
	return &Runner{runFn: run, exit: os.Exit}
}

// MustRun starts the HTTP server using the provided DI container and blocks
// until its context is cancelled.
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil {
		return
	}
	logger := containerLogger(container)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Error("startup aborted: startup timeout exceeded")
	default:
		logger.Error("run error", logx.Err(err))
		if r.exit != nil {
			r.exit(1)
		}
	}
}

func run(container *dig.Container) error {
	return container.Invoke(appRun)
}

func appRun(
	ctx context.Context,
	server *http.Server,
	dbg debugServer,
	job *jobs.PricingRefreshJob,
	res *closers,
	logger logx.Logger,
) error {
	defer res.closeAll(logger)

	// a failed first load is logged by the job; quotes fail until a refresh succeeds
	_ = job.RunOnce(ctx)
	if err := job.Start(); err != nil {
		return fmt.Errorf("pricing refresh job: %w", err)
	}
	defer job.Stop(context.Background())

	errCh := make(chan error, 2)
	startServer(server, "parcel service", logger, errCh)
	if dbg.Server != nil {
		startServer(dbg.Server, "pprof", logger, errCh)
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down parcel service")
	case err := <-errCh:
		gracefulShutdown(server, logger, shutdownTimeout)
		if dbg.Server != nil {
			gracefulShutdown(dbg.Server, logger, shutdownTimeout)
		}
		return err
	}

	gracefulShutdown(server, logger, shutdownTimeout)
	if dbg.Server != nil {
		gracefulShutdown(dbg.Server, logger, shutdownTimeout)
	}
	return ctx.Err()
}

func startServer(server *http.Server, name string, logger logx.Logger, errCh chan<- error) {
	go func() {
		logger.Info("listening", logx.String("server", name), logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%s listen: %w", name, err)
		}
	}()
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.String("addr", srv.Addr), logx.Err(err))
		if err := srv.Close(); err != nil {
			logger.Error("server close error", logx.Err(err))
		}
	}
}

func containerLogger(container *dig.Container) logx.Logger {
	logger := logx.Nop()
	_ = container.Invoke(func(l logx.Logger) { logger = l })
	return logger
}
