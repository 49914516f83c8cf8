package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"parcel-service/internal/logx"
)

func TestWorkerRunner_MustRun_NoPanicOnNil(t *testing.T) {
	t.Parallel()

	r := &WorkerRunner{runFn: func(*dig.Container) error { return nil }}
	require.NotPanics(t, func() { r.MustRun(dig.New()) })
}

func TestWorkerRunner_MustRun_NoPanicOnCancel(t *testing.T) {
	t.Parallel()

	r := &WorkerRunner{runFn: func(*dig.Container) error { return context.Canceled }}
	require.NotPanics(t, func() { r.MustRun(dig.New()) })
}

func TestWorkerRunner_MustRun_PanicsOnOtherError(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("boom")
	r := &WorkerRunner{runFn: func(*dig.Container) error { return sentinel }}
	require.Panics(t, func() { r.MustRun(dig.New()) })
}

func TestWorkerRun_ReturnsError_WhenConsumerNil(t *testing.T) {
	t.Parallel()

	err := workerRun(context.Background(), nil, newClosers(), logx.Nop())
	require.Error(t, err)
	require.Contains(t, err.Error(), "kafka consumer is nil")
}

func TestRunWorker_WithoutKafkaConfigFails(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	c := buildContainer(t, cfg)

	err := runWorker(c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "kafka consumer is nil")
}
