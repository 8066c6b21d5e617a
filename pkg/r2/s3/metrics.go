package s3

import "time"

// StoreMetrics collects metrics about S3 operations.
//
// Implementations must be safe for concurrent use. A nil StoreMetrics is
// valid and disables collection with zero overhead; all call sites guard
// against nil.
//
// The Prometheus implementation lives in pkg/metrics/prometheus; this
// interface keeps the store free of a direct Prometheus dependency.
type StoreMetrics interface {
	// ObserveOperation records one S3 API call with its duration and outcome.
	// Operation is the API name (e.g. "ListObjectsV2", "GetObject").
	ObserveOperation(operation string, duration time.Duration, err error)

	// RecordBytes records bytes transferred by an operation.
	RecordBytes(operation string, bytes int64)

	// RecordRetry records one retry attempt for an operation.
	RecordRetry(operation string)
}
