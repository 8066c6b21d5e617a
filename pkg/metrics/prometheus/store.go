// Package prometheus holds the Prometheus implementations behind the
// interface-returning constructors in pkg/metrics. Importing it (usually
// blank, from the command wiring) registers the constructors.
package prometheus

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/robinvandernoord/r2-d2/pkg/metrics"
	"github.com/robinvandernoord/r2-d2/pkg/r2/s3"
)

func init() {
	metrics.RegisterStoreMetricsConstructor(NewStoreMetrics)
}

// storeMetrics is the Prometheus implementation of s3.StoreMetrics.
type storeMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTransferred  *prometheus.CounterVec
	retriesTotal      *prometheus.CounterVec
}

var (
	storeOnce     sync.Once
	storeInstance *storeMetrics
)

// NewStoreMetrics creates a Prometheus-backed StoreMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// Metric families are process-wide, so every call after the first returns
// the same instance; stores built concurrently share the counters.
func NewStoreMetrics() s3.StoreMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	storeOnce.Do(func() {
		storeInstance = newStoreMetrics(metrics.GetRegistry())
	})
	return storeInstance
}

func newStoreMetrics(reg *prometheus.Registry) *storeMetrics {
	return &storeMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "r2d2_s3_operations_total",
				Help: "Total number of S3 operations by operation type and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "r2d2_s3_operation_duration_milliseconds",
				Help: "Duration of S3 operations in milliseconds",
				Buckets: []float64{
					10,    // 10ms - fast metadata operations
					50,    // 50ms - small object operations
					100,   // 100ms
					500,   // 500ms - listing pages
					1000,  // 1s
					5000,  // 5s - large objects
					10000, // 10s - multipart parts
					30000, // 30s - very large operations
				},
			},
			[]string{"operation"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "r2d2_s3_bytes_transferred_total",
				Help: "Total bytes transferred via S3 operations",
			},
			[]string{"operation", "direction"},
		),
		retriesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "r2d2_s3_retries_total",
				Help: "Total number of retried S3 operation attempts",
			},
			[]string{"operation"},
		),
	}
}

func (m *storeMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds() * 1000)
}

func (m *storeMetrics) RecordBytes(operation string, bytes int64) {
	if m == nil || bytes <= 0 {
		return
	}

	// Determine direction based on operation
	direction := "write"
	if operation == "GetObject" || operation == "ListObjectsV2" || operation == "HeadObject" {
		direction = "read"
	}

	m.bytesTransferred.WithLabelValues(operation, direction).Add(float64(bytes))
}

func (m *storeMetrics) RecordRetry(operation string) {
	if m == nil {
		return
	}
	m.retriesTotal.WithLabelValues(operation).Inc()
}
