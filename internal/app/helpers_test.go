package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	testlog "parcel-service/internal/testutil"
)

// stubs newPool; tests using it must not run in parallel.
func withStubNewPool(t *testing.T, stub func(context.Context, string) (*pgxpool.Pool, error)) {
	t.Helper()
	orig := newPool
	newPool = stub
	t.Cleanup(func() { newPool = orig })
}

func TestConnectDbWithRetry_SuccessFirstAttempt(t *testing.T) {
	wantPool := &pgxpool.Pool{}
	calls := 0
	withStubNewPool(t, func(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
		calls++
		require.Equal(t, "postgres://stub", dsn)
		_, hasDeadline := ctx.Deadline()
		require.True(t, hasDeadline)
		return wantPool, nil
	})

	rec := testlog.New()
	pool, err := connectDbWithRetry(context.Background(), rec.Logger(), "postgres://stub", 3, 10*time.Millisecond)
	require.NoError(t, err)
	require.Same(t, wantPool, pool)
	require.Equal(t, 1, calls)

	e, ok := rec.Find("db connected")
	require.True(t, ok)
	require.Equal(t, 1, e.Field("attempt"))
}

func TestConnectDbWithRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	withStubNewPool(t, func(context.Context, string) (*pgxpool.Pool, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("connection refused")
		}
		return &pgxpool.Pool{}, nil
	})

	rec := testlog.New()
	pool, err := connectDbWithRetry(context.Background(), rec.Logger(), "postgres://stub", 5, time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, pool)
	require.Equal(t, 3, calls)

	failures := 0
	for _, e := range rec.Entries() {
		if e.Msg == "db connect failed" {
			failures++
		}
	}
	require.Equal(t, 2, failures)
}

func TestConnectDbWithRetry_ExhaustsRetries(t *testing.T) {
	sentinel := errors.New("db boom")
	calls := 0
	withStubNewPool(t, func(context.Context, string) (*pgxpool.Pool, error) {
		calls++
		return nil, sentinel
	})

	pool, err := connectDbWithRetry(context.Background(), testlog.New().Logger(), "postgres://stub", 3, 0)
	require.Error(t, err)
	require.Nil(t, pool)
	require.Equal(t, 3, calls)
	require.ErrorIs(t, err, sentinel)
	require.Contains(t, err.Error(), "after 3 attempts")
}

func TestConnectDbWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	withStubNewPool(t, func(context.Context, string) (*pgxpool.Pool, error) {
		return nil, errors.New("db boom")
	})

	pool, err := connectDbWithRetry(ctx, testlog.New().Logger(), "postgres://stub", 3, 50*time.Millisecond)
	require.Error(t, err)
	require.Nil(t, pool)
	require.ErrorIs(t, err, context.Canceled)
}
