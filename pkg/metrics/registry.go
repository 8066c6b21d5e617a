// Package metrics provides the process-wide Prometheus registry and
// interface-returning constructors for the instrumented subsystems.
//
// Metrics are opt-in. Until InitRegistry is called every constructor in
// this package returns nil, and instrumented code treats a nil metrics
// value as a no-op, so disabled metrics cost nothing.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registryMu sync.RWMutex
	registry   *prometheus.Registry
)

// InitRegistry creates the process-wide metrics registry and seeds it with
// the standard Go runtime and process collectors. Calling it more than once
// is a no-op.
func InitRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()

	if registry != nil {
		return
	}

	registry = prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry != nil
}

// GetRegistry returns the process-wide registry, or nil when metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry
}

// Gatherer returns the gatherer the diagnostics endpoint should serve: the
// process-wide registry when metrics are enabled, the client_golang default
// gatherer otherwise.
func Gatherer() prometheus.Gatherer {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if registry != nil {
		return registry
	}
	return prometheus.DefaultGatherer
}
