package prometheus

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/robinvandernoord/r2-d2/pkg/metrics"
	"github.com/robinvandernoord/r2-d2/pkg/usage"
)

func init() {
	metrics.RegisterUsageMetricsConstructor(NewUsageMetrics)
}

// usageMetrics is the Prometheus implementation of usage.Metrics.
type usageMetrics struct {
	runsTotal        *prometheus.CounterVec
	runDuration      prometheus.Histogram
	objectsAccounted *prometheus.CounterVec
	bytesAccounted   *prometheus.CounterVec
}

var (
	usageOnce     sync.Once
	usageInstance *usageMetrics
)

// NewUsageMetrics creates a Prometheus-backed usage.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// Metric families are process-wide, so every call after the first returns
// the same instance; concurrent computations share the counters.
func NewUsageMetrics() usage.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	usageOnce.Do(func() {
		usageInstance = newUsageMetrics(metrics.GetRegistry())
	})
	return usageInstance
}

func newUsageMetrics(reg *prometheus.Registry) *usageMetrics {
	return &usageMetrics{
		runsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "r2d2_usage_runs_total",
				Help: "Total number of usage computations by status",
			},
			[]string{"status"},
		),
		runDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "r2d2_usage_run_duration_milliseconds",
				Help: "Duration of usage computations in milliseconds",
				Buckets: []float64{
					100,    // 100ms - tiny repositories
					500,    // 500ms
					1000,   // 1s
					5000,   // 5s
					10000,  // 10s
					30000,  // 30s
					60000,  // 1m - large repositories
					300000, // 5m
				},
			},
		),
		objectsAccounted: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "r2d2_usage_objects_accounted_total",
				Help: "Total objects attributed during usage computations by tier and role",
			},
			[]string{"tier", "role"},
		),
		bytesAccounted: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "r2d2_usage_bytes_accounted_total",
				Help: "Total bytes attributed during usage computations by tier and role",
			},
			[]string{"tier", "role"},
		),
	}
}

func (m *usageMetrics) ObserveRun(duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.Observe(duration.Seconds() * 1000)
}

func (m *usageMetrics) RecordAccounted(tier, role string, objects, bytes uint64) {
	if m == nil {
		return
	}

	m.objectsAccounted.WithLabelValues(tier, role).Add(float64(objects))
	m.bytesAccounted.WithLabelValues(tier, role).Add(float64(bytes))
}
