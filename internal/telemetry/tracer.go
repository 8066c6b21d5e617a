package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for storage and accounting operations.
// These follow OpenTelemetry semantic conventions where applicable.
// Object-store keys use "storage." prefix, repository keys "repo.",
// accounting keys "usage.".
const (
	// ========================================================================
	// Object store attributes
	// ========================================================================
	AttrBucket       = "storage.bucket"
	AttrKey          = "storage.key"
	AttrPrefix       = "storage.prefix"
	AttrRegion       = "storage.region"
	AttrEndpoint     = "storage.endpoint"
	AttrStorageClass = "storage.class"
	AttrStoreType    = "store.type"
	AttrAttempt      = "store.attempt"
	AttrKeyCount     = "store.key_count"
	AttrTruncated    = "store.truncated"

	// ========================================================================
	// Repository attributes
	// ========================================================================
	AttrRepoVersion = "repo.version"
	AttrRepoLayout  = "repo.layout"
	AttrSnapshotID  = "snapshot.id"

	// ========================================================================
	// Usage accounting attributes
	// ========================================================================
	AttrTier    = "usage.tier"
	AttrRole    = "usage.role"
	AttrObjects = "usage.objects"
	AttrBytes   = "usage.bytes"
	AttrWorkers = "usage.workers"

	// ========================================================================
	// Upload attributes
	// ========================================================================
	AttrUploadID   = "upload.id"
	AttrPartNumber = "upload.part_number"
	AttrPartSize   = "upload.part_size"
	AttrFilePath   = "upload.path"
)

// Span names for operations.
// Format: <component>.<operation>
const (
	// Object store operations
	SpanStoreList   = "store.list"
	SpanStoreGet    = "store.get"
	SpanStoreHead   = "store.head"
	SpanStorePut    = "store.put"
	SpanStoreDelete = "store.delete"

	// Repository operations
	SpanRepoOpen      = "repo.open"
	SpanRepoSnapshots = "repo.snapshots"

	// Usage accounting operations
	SpanUsageCompute = "usage.compute"

	// Upload operations
	SpanUploadFile = "upload.file"
	SpanUploadPart = "upload.part"

	// Bucket administration operations
	SpanBucketList   = "bucket.list"
	SpanBucketCreate = "bucket.create"
	SpanBucketPurge  = "bucket.purge"
)

// Bucket returns an attribute for bucket name
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for object key
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

// Prefix returns an attribute for listing prefix
func Prefix(prefix string) attribute.KeyValue {
	return attribute.String(AttrPrefix, prefix)
}

// Region returns an attribute for cloud region
func Region(region string) attribute.KeyValue {
	return attribute.String(AttrRegion, region)
}

// Endpoint returns an attribute for store endpoint
func Endpoint(endpoint string) attribute.KeyValue {
	return attribute.String(AttrEndpoint, endpoint)
}

// StorageClass returns an attribute for object storage class
func StorageClass(class string) attribute.KeyValue {
	return attribute.String(AttrStorageClass, class)
}

// StoreType returns an attribute for store type
func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStoreType, t)
}

// Attempt returns an attribute for retry attempt number
func Attempt(n int) attribute.KeyValue {
	return attribute.Int(AttrAttempt, n)
}

// KeyCount returns an attribute for number of keys in a listing page
func KeyCount(n int) attribute.KeyValue {
	return attribute.Int(AttrKeyCount, n)
}

// Truncated returns an attribute for listing truncation indicator
func Truncated(truncated bool) attribute.KeyValue {
	return attribute.Bool(AttrTruncated, truncated)
}

// RepoVersion returns an attribute for repository format version
func RepoVersion(version uint32) attribute.KeyValue {
	return attribute.Int64(AttrRepoVersion, int64(version))
}

// RepoLayout returns an attribute for repository layout name
func RepoLayout(layout string) attribute.KeyValue {
	return attribute.String(AttrRepoLayout, layout)
}

// SnapshotID returns an attribute for snapshot ID
func SnapshotID(id string) attribute.KeyValue {
	return attribute.String(AttrSnapshotID, id)
}

// Tier returns an attribute for storage tier name
func Tier(tier string) attribute.KeyValue {
	return attribute.String(AttrTier, tier)
}

// Role returns an attribute for object role name
func Role(role string) attribute.KeyValue {
	return attribute.String(AttrRole, role)
}

// Objects returns an attribute for object count
func Objects(n uint64) attribute.KeyValue {
	return attribute.Int64(AttrObjects, int64(n))
}

// Bytes returns an attribute for byte count
func Bytes(n uint64) attribute.KeyValue {
	return attribute.Int64(AttrBytes, int64(n))
}

// Workers returns an attribute for worker pool size
func Workers(n int) attribute.KeyValue {
	return attribute.Int(AttrWorkers, n)
}

// UploadID returns an attribute for multipart upload ID
func UploadID(id string) attribute.KeyValue {
	return attribute.String(AttrUploadID, id)
}

// PartNumber returns an attribute for multipart part number
func PartNumber(n int32) attribute.KeyValue {
	return attribute.Int64(AttrPartNumber, int64(n))
}

// PartSize returns an attribute for multipart part size
func PartSize(size uint64) attribute.KeyValue {
	return attribute.Int64(AttrPartSize, int64(size))
}

// FilePath returns an attribute for local file path
func FilePath(path string) attribute.KeyValue {
	return attribute.String(AttrFilePath, path)
}

// StartStoreSpan starts a span for an object store operation.
// This is a convenience function that sets common attributes.
func StartStoreSpan(ctx context.Context, operation, bucket string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		Bucket(bucket),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "store."+operation, trace.WithAttributes(allAttrs...))
}

// StartRepoSpan starts a span for a repository operation. Repositories are
// addressed by prefix at this layer; the bucket is a store-level attribute.
func StartRepoSpan(ctx context.Context, operation, prefix string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		Prefix(prefix),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "repo."+operation, trace.WithAttributes(allAttrs...))
}

// StartUploadSpan starts a span for an upload operation.
func StartUploadSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "upload."+operation, trace.WithAttributes(attrs...))
}
