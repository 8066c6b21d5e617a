package metrics

import (
	"time"

	"github.com/robinvandernoord/r2-d2/pkg/usage"
)

// NewUsageMetrics creates a new Prometheus-backed usage.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewUsageMetrics() usage.Metrics {
	if !IsEnabled() {
		return nil
	}

	return newPrometheusUsageMetrics()
}

// newPrometheusUsageMetrics is implemented in pkg/metrics/prometheus/usage.go.
// This indirection avoids import cycles while keeping the API clean.
var newPrometheusUsageMetrics func() usage.Metrics

// RegisterUsageMetricsConstructor registers the Prometheus usage metrics
// constructor. Called by pkg/metrics/prometheus during package
// initialization.
func RegisterUsageMetricsConstructor(constructor func() usage.Metrics) {
	newPrometheusUsageMetrics = constructor
}

// ObserveRun records a completed usage computation. Safe to call with a nil
// metrics value.
func ObserveRun(m usage.Metrics, duration time.Duration, err error) {
	if m != nil {
		m.ObserveRun(duration, err)
	}
}

// RecordAccounted records objects attributed to a tier and role during a
// usage computation. Safe to call with a nil metrics value.
func RecordAccounted(m usage.Metrics, tier, role string, objects, bytes uint64) {
	if m != nil {
		m.RecordAccounted(tier, role, objects, bytes)
	}
}
