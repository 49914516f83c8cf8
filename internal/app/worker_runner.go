package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/dig"

	"parcel-service/internal/logx"
	"parcel-service/internal/transport/kafka"
)

// WorkerRunner runs the scan event consumer
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun consumes scan events until the container's context is cancelled.
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	consumer *kafka.Consumer,
	res *closers,
	logger logx.Logger,
) error {
	if consumer == nil {
		return fmt.Errorf("kafka consumer is nil: KAFKA_BROKERS, KAFKA_GROUP_ID and KAFKA_TRACKING_TOPIC are required")
	}
	defer closeWorker(consumer, res, logger)

	logger.Info("parcel scan worker started")
	return consumer.Run(ctx)
}

func closeWorker(consumer *kafka.Consumer, res *closers, logger logx.Logger) {
	if err := consumer.Close(); err != nil {
		logger.Error("kafka close error", logx.Err(err))
	}
	if res != nil {
		res.closeAll(logger)
	}
}
