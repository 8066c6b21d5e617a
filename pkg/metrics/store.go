package metrics

import (
	"time"

	"github.com/robinvandernoord/r2-d2/pkg/r2/s3"
)

// NewStoreMetrics creates a new Prometheus-backed StoreMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// When nil is returned, callers should pass nil to the store, which
// results in zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	metrics.InitRegistry()
//	store, err := s3.NewStore(s3.StoreConfig{
//		Client:  client,
//		Bucket:  bucket,
//		Metrics: metrics.NewStoreMetrics(),
//	})
//
//	// Without metrics (zero overhead)
//	store, err := s3.NewStore(s3.StoreConfig{Client: client, Bucket: bucket})
func NewStoreMetrics() s3.StoreMetrics {
	if !IsEnabled() {
		return nil
	}

	return newPrometheusStoreMetrics()
}

// newPrometheusStoreMetrics is implemented in pkg/metrics/prometheus/store.go.
// This indirection avoids import cycles while keeping the API clean.
var newPrometheusStoreMetrics func() s3.StoreMetrics

// RegisterStoreMetricsConstructor registers the Prometheus store metrics
// constructor. Called by pkg/metrics/prometheus during package
// initialization.
func RegisterStoreMetricsConstructor(constructor func() s3.StoreMetrics) {
	newPrometheusStoreMetrics = constructor
}

// ObserveOperation records a store operation with its duration and outcome.
// Safe to call with a nil metrics value.
func ObserveOperation(m s3.StoreMetrics, operation string, duration time.Duration, err error) {
	if m != nil {
		m.ObserveOperation(operation, duration, err)
	}
}

// RecordBytes records bytes transferred by a store operation. Safe to call
// with a nil metrics value.
func RecordBytes(m s3.StoreMetrics, operation string, bytes int64) {
	if m != nil {
		m.RecordBytes(operation, bytes)
	}
}

// RecordRetry records a retried store operation attempt. Safe to call with
// a nil metrics value.
func RecordRetry(m s3.StoreMetrics, operation string) {
	if m != nil {
		m.RecordRetry(operation)
	}
}
