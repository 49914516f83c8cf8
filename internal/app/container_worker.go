package app

import (
	"go.uber.org/dig"

	"parcel-service/internal/config"
	"parcel-service/internal/logx"
	"parcel-service/internal/service/delivery"
	"parcel-service/internal/service/scans"
	"parcel-service/internal/transport/kafka"
)

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		newScanProcessor,
		newScanConsumer,
	)
}

func newScanProcessor(cfg *config.Config, svc *delivery.Service, m *appMetrics, logger logx.Logger) *scans.Processor {
	return scans.NewProcessor(svc, m.ScanRetries, scans.RetryConfig{
		MaxAttempts: cfg.Kafka.RetryAttempts,
		BaseDelay:   cfg.Kafka.RetryBaseDelay,
		MaxDelay:    cfg.Kafka.RetryMaxDelay,
	}, logger)
}

func newScanConsumer(cfg *config.Config, p *scans.Processor, logger logx.Logger) (*kafka.Consumer, error) {
	return kafka.NewConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.TrackingTopic, p.Handle)
}
