package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so that accounting
// runs can be correlated and queried in log aggregation.
const (
	// ========================================================================
	// Run correlation
	// ========================================================================
	KeyRunID   = "run_id"   // unique ID per usage invocation
	KeyTraceID = "trace_id" // OpenTelemetry trace ID
	KeySpanID  = "span_id"  // OpenTelemetry span ID

	// ========================================================================
	// Object store
	// ========================================================================
	KeyBucket       = "bucket"        // bucket name
	KeyKey          = "key"           // object key
	KeyPrefix       = "prefix"        // listing prefix
	KeyEndpoint     = "endpoint"      // store endpoint URL
	KeyRegion       = "region"        // store region
	KeyStorageClass = "storage_class" // raw storage-class string from the listing
	KeyOperation    = "operation"     // store operation: ListObjectsV2, GetObject, ...
	KeyAttempt      = "attempt"       // retry attempt number
	KeyMaxRetries   = "max_retries"   // maximum retry attempts
	KeyBackoff      = "backoff"       // backoff before the next attempt

	// ========================================================================
	// Accounting
	// ========================================================================
	KeyTier    = "tier"    // storage tier: standard, infrequent_access
	KeyRole    = "role"    // object role: payload, metadata, ignored
	KeySize    = "size"    // size in bytes
	KeyObjects = "objects" // object count
	KeyWorkers = "workers" // reconciler worker count

	// ========================================================================
	// Repository
	// ========================================================================
	KeyRepoVersion = "repo_version" // repository format version
	KeySnapshotID  = "snapshot_id"  // snapshot ID (short form)

	// ========================================================================
	// Transfer
	// ========================================================================
	KeyUploadID = "upload_id" // multipart upload ID
	KeyPart     = "part"      // multipart part number
	KeyPath     = "path"      // local file path

	// ========================================================================
	// Operation metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // operation duration in milliseconds
	KeyError      = "error"       // error message
	KeyStatus     = "status"      // operation status: success, error
)

// ----------------------------------------------------------------------------
// Field constructors for type safety
// ----------------------------------------------------------------------------

// RunID returns a slog.Attr for the per-invocation run ID
func RunID(id string) slog.Attr {
	return slog.String(KeyRunID, id)
}

// Bucket returns a slog.Attr for the bucket name
func Bucket(name string) slog.Attr {
	return slog.String(KeyBucket, name)
}

// Key returns a slog.Attr for an object key
func Key(key string) slog.Attr {
	return slog.String(KeyKey, key)
}

// Prefix returns a slog.Attr for a listing prefix
func Prefix(prefix string) slog.Attr {
	return slog.String(KeyPrefix, prefix)
}

// Operation returns a slog.Attr for a store operation name
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Tier returns a slog.Attr for a storage tier
func Tier(tier string) slog.Attr {
	return slog.String(KeyTier, tier)
}

// Role returns a slog.Attr for an object role
func Role(role string) slog.Attr {
	return slog.String(KeyRole, role)
}

// Size returns a slog.Attr for a byte size
func Size(size uint64) slog.Attr {
	return slog.Uint64(KeySize, size)
}

// Objects returns a slog.Attr for an object count
func Objects(n uint64) slog.Attr {
	return slog.Uint64(KeyObjects, n)
}

// Attempt returns a slog.Attr for a retry attempt number
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// DurationMs returns a slog.Attr for a duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error value
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
