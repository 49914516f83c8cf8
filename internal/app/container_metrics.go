package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"parcel-service/internal/metrics"
)

type appMetrics struct {
	Registry    *prometheus.Registry
	HTTP        *metrics.HTTP
	Lifecycle   *metrics.Lifecycle
	Pricing     *metrics.Pricing
	RateLimited prometheus.Counter
	ScanRetries prometheus.Counter
}

func newMetrics() (*appMetrics, error) {
	m := &appMetrics{
		Registry:    prometheus.NewRegistry(),
		HTTP:        metrics.NewHTTP(),
		Lifecycle:   metrics.NewLifecycle(),
		Pricing:     metrics.NewPricing(),
		RateLimited: metrics.NewRateLimitExceededTotal(),
		ScanRetries: metrics.NewScanRetriesTotal(),
	}

	cs := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RateLimited,
		m.ScanRetries,
	}
	cs = append(cs, m.HTTP.Collectors()...)
	cs = append(cs, m.Lifecycle.Collectors()...)
	cs = append(cs, m.Pricing.Collectors()...)
	if err := metrics.Register(m.Registry, cs...); err != nil {
		return nil, err
	}
	return m, nil
}
