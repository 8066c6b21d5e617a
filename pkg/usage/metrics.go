package usage

import "time"

// Metrics records computation outcomes. Implementations must be safe for
// concurrent use. A nil Metrics is valid and disables recording with zero
// overhead; the Prometheus implementation lives in pkg/metrics/prometheus.
type Metrics interface {
	// ObserveRun records one completed computation with its duration and
	// outcome.
	ObserveRun(duration time.Duration, err error)

	// RecordAccounted records the objects and bytes attributed to one
	// (tier, role) bucket by a completed computation.
	RecordAccounted(tier, role string, objects, bytes uint64)
}
