package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"

	"parcel-service/internal/logx"
	"parcel-service/internal/repository"
)

var newPool = repository.NewPool

const dbAttemptTimeout = 3 * time.Second

func connectDbWithRetry(
	ctx context.Context,
	logger logx.Logger,
	dsn string,
	retries int,
	delay time.Duration,
) (*pgxpool.Pool, error) {
	if retries < 1 {
		retries = 1
	}
	backoff := retry.WithMaxRetries(uint64(retries-1), retry.NewConstant(max(delay, time.Nanosecond)))

	var (
		pool    *pgxpool.Pool
		attempt int
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, dbAttemptTimeout)
		defer cancel()

		p, err := newPool(attemptCtx, dsn)
		if err != nil {
			logger.Warn("db connect failed",
				logx.Int("attempt", attempt),
				logx.Int("max_attempts", retries),
				logx.Err(err),
			)
			return retry.RetryableError(err)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("db connect failed after %d attempts: %w", attempt, err)
	}
	logger.Info("db connected", logx.Int("attempt", attempt))
	return pool, nil
}

// closers releases resources in reverse order of acquisition.
type closers struct {
	mu  sync.Mutex
	fns []namedCloser
}

type namedCloser struct {
	name string
	fn   func() error
}

func newClosers() *closers { return &closers{} }

func (c *closers) add(name string, fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fns = append(c.fns, namedCloser{name: name, fn: fn})
}

func (c *closers) closeAll(logger logx.Logger) {
	c.mu.Lock()
	fns := c.fns
	c.fns = nil
	c.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		if err := fns[i].fn(); err != nil {
			logger.Error("close failed", logx.String("resource", fns[i].name), logx.Err(err))
		}
	}
}
