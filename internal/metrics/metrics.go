// Package metrics defines the prometheus collectors of the service.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewScanRetriesTotal returns a counter of carrier scan events retried after a concurrency conflict
func NewScanRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scan_event_retries_total",
		Help: "Total number of carrier scan retries after a concurrency conflict",
	})
}

// HTTP holds request counters used by the observability middleware.
type HTTP struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewHTTP creates HTTP request collectors.
func NewHTTP() *HTTP {
	return &HTTP{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// Collectors lists the collectors to register.
func (m *HTTP) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Requests, m.Duration}
}

// Lifecycle counts delivery transitions and courier assignments.
// A nil *Lifecycle is valid and records nothing.
type Lifecycle struct {
	Transitions *prometheus.CounterVec
	Rejected    *prometheus.CounterVec
	Assignments *prometheus.CounterVec
}

// NewLifecycle creates lifecycle collectors.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_transitions_total",
			Help: "Accepted delivery status transitions",
		}, []string{"from", "to"}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_transition_rejected_total",
			Help: "Rejected delivery status transitions by reason",
		}, []string{"reason"}),
		Assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courier_assignments_total",
			Help: "Courier assignment attempts by policy and outcome",
		}, []string{"policy", "outcome"}),
	}
}

// Collectors lists the collectors to register.
func (m *Lifecycle) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Transitions, m.Rejected, m.Assignments}
}

// Transition records an accepted transition.
func (m *Lifecycle) Transition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

// Reject records a rejected transition.
func (m *Lifecycle) Reject(reason string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(reason).Inc()
}

// Assignment records an assignment attempt.
func (m *Lifecycle) Assignment(policy, outcome string) {
	if m == nil {
		return
	}
	m.Assignments.WithLabelValues(policy, outcome).Inc()
}

// Pricing counts quotes and exposes the active pricing version.
// A nil *Pricing is valid and records nothing.
type Pricing struct {
	Quotes        *prometheus.CounterVec
	ActiveVersion *prometheus.GaugeVec
}

// NewPricing creates pricing collectors.
func NewPricing() *Pricing {
	return &Pricing{
		Quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricing_quotes_total",
			Help: "Pricing computations by result",
		}, []string{"result"}),
		ActiveVersion: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pricing_active_version_info",
			Help: "Set to 1 for the pricing config version currently active",
		}, []string{"version"}),
	}
}

// Collectors lists the collectors to register.
func (m *Pricing) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Quotes, m.ActiveVersion}
}

// Quote records one pricing computation.
func (m *Pricing) Quote(result string) {
	if m == nil {
		return
	}
	m.Quotes.WithLabelValues(result).Inc()
}

// SetActiveVersion exposes version as the only active one.
func (m *Pricing) SetActiveVersion(version string) {
	if m == nil {
		return
	}
	m.ActiveVersion.Reset()
	m.ActiveVersion.WithLabelValues(version).Set(1)
}

// Register registers collectors with reg, tolerating ones already registered.
func Register(reg prometheus.Registerer, cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
