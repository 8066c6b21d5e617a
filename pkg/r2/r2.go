// Package r2 defines the object store access layer for R2 and other
// S3-compatible stores.
//
// The package contains only the storage-agnostic surface: the Store
// interface, the observation and tier types produced by listings, and the
// typed errors shared by every store implementation. Concrete stores live
// in subpackages (s3 for the real client, memory for tests).
//
// Separation of Concerns:
//
// The store layer knows nothing about the backup repository kept in the
// bucket. It reports physical objects (key, size, storage class) and fetches
// raw bytes. Interpreting keys as repository structure is the job of the
// restic package; turning observations into an accounting report is the job
// of the usage package.
package r2

import "context"

// ============================================================================
// Store Interface
// ============================================================================

// Store provides read access to an S3-compatible bucket.
//
// Implementations must be safe for concurrent use by multiple goroutines.
// All operations respect context cancellation.
//
// Error Contract:
// Operations return *UsageError values: transient store failures surface as
// ErrStoreUnavailable after the implementation's bounded retries are
// exhausted, credential and permission failures surface immediately as
// ErrAccessDenied and are never retried.
type Store interface {
	// List returns a lazy iterator over all objects under the given prefix.
	//
	// The listing is paginated; pages are fetched as the iterator advances.
	// The sequence is finite and not restartable mid-stream - a caller
	// needing to retry must call List again from the start.
	//
	// The context is captured for the lifetime of the iteration. Cancelling
	// it stops the iterator at the next page boundary with ErrCancelled.
	//
	// Keys are yielded in lexicographic order, matching S3 ListObjectsV2
	// semantics. Callers that must be robust against pagination replays
	// should deduplicate on that ordering.
	List(ctx context.Context, prefix string) ObjectIterator

	// Get fetches the complete content of the object at key.
	//
	// Intended for small repository objects (config, keys, snapshots),
	// not for bulk payload reads.
	Get(ctx context.Context, key string) ([]byte, error)

	// Head fetches size and storage class metadata for a single object
	// without reading its content. Used when a listing entry carries no
	// usable storage class and the configured policy demands a lookup.
	Head(ctx context.Context, key string) (*ObjectInfo, error)
}

// ObjectIterator walks a lazy object listing.
//
// Usage:
//
//	it := store.List(ctx, prefix)
//	for it.Next() {
//	    obs := it.Object()
//	    ...
//	}
//	if err := it.Err(); err != nil {
//	    return err
//	}
//
// Next advances to the next object, fetching further pages as needed, and
// reports false when the sequence is exhausted or an error occurred. Object
// returns the current observation and is only valid after a true Next. Err
// returns the terminal error, if any, once Next has returned false.
//
// Iterators are single-consumer: Next/Object/Err must not be called
// concurrently.
type ObjectIterator interface {
	Next() bool
	Object() Observation
	Err() error
}

// Observation is one listed object: its key, its size in bytes, and the
// storage tier it was observed in. Observations are transient - produced
// per listing entry and consumed immediately by the accounting layer, never
// persisted.
type Observation struct {
	Key  string
	Size uint64
	Tier Tier
}

// ObjectInfo is the metadata returned by Head.
//
// StorageClass is the raw class string as reported by the store; use
// TierFromStorageClass to map it to a Tier.
type ObjectInfo struct {
	Key          string
	Size         uint64
	StorageClass string
}
