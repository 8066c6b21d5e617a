// Package s3 implements the object store accessor for R2 and other
// S3-compatible stores.
//
// This file contains the main types, configuration, constructor, and the
// single-object operations (Get, Head).
package s3

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/robinvandernoord/r2-d2/internal/logger"
	"github.com/robinvandernoord/r2-d2/internal/telemetry"
	"github.com/robinvandernoord/r2-d2/pkg/r2"
)

// MissingClassPolicy decides what happens when a listing entry carries no
// recognizable storage class.
//
// The accounting must never silently miscount an object as cold, so the
// unknown case is always either logged, resolved with a lookup, or fatal.
type MissingClassPolicy int

const (
	// PolicyStandard counts the object as Standard tier and logs the key
	// and raw class at debug level. This is the default.
	PolicyStandard MissingClassPolicy = iota

	// PolicyHead issues a HeadObject lookup for the object's storage class
	// before falling back to Standard.
	PolicyHead

	// PolicyFail aborts the run when an object's storage class cannot be
	// resolved.
	PolicyFail
)

// String returns the policy name as used in configuration.
func (p MissingClassPolicy) String() string {
	switch p {
	case PolicyStandard:
		return "standard"
	case PolicyHead:
		return "head"
	case PolicyFail:
		return "fail"
	default:
		return fmt.Sprintf("MissingClassPolicy(%d)", int(p))
	}
}

// ParseMissingClassPolicy parses a policy name from configuration.
func ParseMissingClassPolicy(s string) (MissingClassPolicy, error) {
	switch s {
	case "", "standard":
		return PolicyStandard, nil
	case "head":
		return PolicyHead, nil
	case "fail":
		return PolicyFail, nil
	default:
		return PolicyStandard, fmt.Errorf("unknown missing-storage-class policy %q (valid: standard, head, fail)", s)
	}
}

// retryConfig holds retry settings for S3 operations.
type retryConfig struct {
	maxRetries        uint          // Maximum number of retry attempts (default: 3)
	initialBackoff    time.Duration // Initial backoff duration (default: 100ms)
	maxBackoff        time.Duration // Maximum backoff duration (default: 5s)
	backoffMultiplier float64       // Multiplier for exponential backoff (default: 2.0)
}

// StoreConfig configures a Store.
type StoreConfig struct {
	// Client is the S3 client to use (required). See NewClient.
	Client *s3.Client

	// Bucket is the bucket name (required).
	Bucket string

	// Metrics is an optional metrics collector. Nil disables collection.
	Metrics StoreMetrics

	// MissingStorageClass is the policy for listing entries without a
	// recognizable storage class. Default: PolicyStandard.
	MissingStorageClass MissingClassPolicy

	// PageSize caps the number of keys per listing page. Zero uses the
	// store's default (1000). Mainly useful in tests.
	PageSize int32

	// MaxRetries is the maximum number of retry attempts for transient
	// errors (default: 3). Set to 0 to disable retries.
	MaxRetries *uint

	// InitialBackoff is the backoff before the first retry (default: 100ms).
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff between retries (default: 5s).
	MaxBackoff time.Duration

	// BackoffMultiplier is the exponential backoff multiplier (default: 2.0).
	BackoffMultiplier float64
}

// Store implements r2.Store against an S3-compatible bucket.
//
// Thread Safety:
// Safe for concurrent use by multiple goroutines. Each List call returns an
// independent (single-consumer) iterator.
//
// Retry Behavior:
// Transient errors (network timeouts, throttling, 5xx) are retried with
// exponential backoff up to the configured maximum; exhaustion surfaces as
// r2.ErrStoreUnavailable. Credential and permission failures surface
// immediately as r2.ErrAccessDenied and are never retried.
type Store struct {
	client       *s3.Client
	bucket       string
	metrics      StoreMetrics
	retry        retryConfig
	missingClass MissingClassPolicy
	pageSize     int32
}

// NewStore creates a Store for the given bucket.
//
// The bucket must already exist; this constructor performs no network calls.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	retry := retryConfig{
		maxRetries:        3,
		initialBackoff:    100 * time.Millisecond,
		maxBackoff:        5 * time.Second,
		backoffMultiplier: 2.0,
	}
	if cfg.MaxRetries != nil {
		retry.maxRetries = *cfg.MaxRetries
	}
	if cfg.InitialBackoff > 0 {
		retry.initialBackoff = cfg.InitialBackoff
	}
	if cfg.MaxBackoff > 0 {
		retry.maxBackoff = cfg.MaxBackoff
	}
	if cfg.BackoffMultiplier > 0 {
		retry.backoffMultiplier = cfg.BackoffMultiplier
	}

	return &Store{
		client:       cfg.Client,
		bucket:       cfg.Bucket,
		metrics:      cfg.Metrics,
		retry:        retry,
		missingClass: cfg.MissingStorageClass,
		pageSize:     cfg.PageSize,
	}, nil
}

// Bucket returns the bucket this store is scoped to.
func (s *Store) Bucket() string {
	return s.bucket
}

// Get fetches the complete content of the object at key.
//
// Retry Behavior:
// Transient errors are retried with exponential backoff. A missing object
// returns r2.ErrNotFound (wrapped) without retries; access denial surfaces
// immediately as r2.ErrAccessDenied.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - key: Object key to fetch
//
// Returns:
//   - []byte: The object content
//   - error: Typed error as described above
func (s *Store) Get(ctx context.Context, key string) (data []byte, err error) {
	ctx, span := telemetry.StartStoreSpan(ctx, "get", s.bucket, telemetry.StorageKey(key))
	defer span.End()

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveOperation("GetObject", time.Since(start), err)
			if err == nil {
				s.metrics.RecordBytes("GetObject", int64(len(data)))
			}
		}
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
	}()

	if err = ctx.Err(); err != nil {
		return nil, r2.NewCancelledError(err)
	}

	var lastErr error

	for attempt := 0; attempt <= int(s.retry.maxRetries); attempt++ {
		if attempt > 0 {
			backoff := s.calculateBackoff(attempt - 1)
			logger.Debug("Get: retrying", "backoff", backoff, "attempt", attempt, "max_retries", s.retry.maxRetries, "key", key)
			if s.metrics != nil {
				s.metrics.RecordRetry("GetObject")
			}

			select {
			case <-ctx.Done():
				return nil, r2.NewCancelledError(ctx.Err())
			case <-time.After(backoff):
			}
		}

		var result *s3.GetObjectOutput
		result, lastErr = s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})

		if lastErr == nil {
			data, lastErr = io.ReadAll(result.Body)
			_ = result.Body.Close()
			if lastErr == nil {
				return data, nil
			}
		}

		// Don't retry non-retryable errors
		if isNotFoundError(lastErr) {
			return nil, fmt.Errorf("object %s: %w", key, r2.ErrNotFound)
		}

		if isAccessDeniedError(lastErr) {
			return nil, r2.NewAccessDeniedError(fmt.Sprintf("access denied reading %s/%s", s.bucket, key), lastErr)
		}

		if !isRetryableError(lastErr) {
			break
		}

		logger.Debug("Get: transient error", "attempt", attempt+1, "max_retries", s.retry.maxRetries+1, "key", key, "error", lastErr)
	}

	// A request aborted by cancellation is a cancellation, not an outage.
	if ctx.Err() != nil {
		return nil, r2.NewCancelledError(ctx.Err())
	}

	return nil, r2.NewStoreUnavailableError(
		fmt.Sprintf("failed to get object after %d attempts", s.retry.maxRetries+1), lastErr)
}

// Head fetches size and storage class metadata for a single object without
// reading its content.
//
// Retry Behavior:
// Same as Get: transient errors retried, missing objects return
// r2.ErrNotFound, access denial surfaces immediately.
func (s *Store) Head(ctx context.Context, key string) (info *r2.ObjectInfo, err error) {
	ctx, span := telemetry.StartStoreSpan(ctx, "head", s.bucket, telemetry.StorageKey(key))
	defer span.End()

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveOperation("HeadObject", time.Since(start), err)
		}
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
	}()

	if err = ctx.Err(); err != nil {
		return nil, r2.NewCancelledError(err)
	}

	var result *s3.HeadObjectOutput
	var lastErr error

	for attempt := 0; attempt <= int(s.retry.maxRetries); attempt++ {
		if attempt > 0 {
			backoff := s.calculateBackoff(attempt - 1)
			logger.Debug("Head: retrying", "backoff", backoff, "attempt", attempt, "max_retries", s.retry.maxRetries, "key", key)
			if s.metrics != nil {
				s.metrics.RecordRetry("HeadObject")
			}

			select {
			case <-ctx.Done():
				return nil, r2.NewCancelledError(ctx.Err())
			case <-time.After(backoff):
			}
		}

		result, lastErr = s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})

		if lastErr == nil {
			break
		}

		// Don't retry non-retryable errors
		if isNotFoundError(lastErr) {
			return nil, fmt.Errorf("object %s: %w", key, r2.ErrNotFound)
		}

		if isAccessDeniedError(lastErr) {
			return nil, r2.NewAccessDeniedError(fmt.Sprintf("access denied to %s/%s", s.bucket, key), lastErr)
		}

		if !isRetryableError(lastErr) {
			break
		}

		logger.Debug("Head: transient error", "attempt", attempt+1, "max_retries", s.retry.maxRetries+1, "key", key, "error", lastErr)
	}

	if lastErr != nil {
		if ctx.Err() != nil {
			return nil, r2.NewCancelledError(ctx.Err())
		}
		return nil, r2.NewStoreUnavailableError(
			fmt.Sprintf("failed to head object after %d attempts", s.retry.maxRetries+1), lastErr)
	}

	var size uint64
	if result.ContentLength != nil {
		size = uint64(*result.ContentLength)
	}

	return &r2.ObjectInfo{
		Key:          key,
		Size:         size,
		StorageClass: string(result.StorageClass),
	}, nil
}

// resolveTier maps a raw storage class to a tier, applying the configured
// missing-storage-class policy when the class is unrecognized.
func (s *Store) resolveTier(ctx context.Context, key, class string) (r2.Tier, error) {
	tier, ok := r2.TierFromStorageClass(class)
	if ok {
		return tier, nil
	}

	switch s.missingClass {
	case PolicyHead:
		info, err := s.Head(ctx, key)
		if err != nil {
			return 0, err
		}
		if tier, ok := r2.TierFromStorageClass(info.StorageClass); ok {
			return tier, nil
		}
		logger.Warn("storage class unknown after head lookup, counting as Standard", "key", key, "storage_class", info.StorageClass)
		return r2.TierStandard, nil

	case PolicyFail:
		return 0, &r2.UsageError{
			Code:    r2.ErrUnclassifiedObject,
			Message: fmt.Sprintf("object has unrecognized storage class %q", class),
			Key:     key,
		}

	default: // PolicyStandard
		logger.Debug("object has no recognized storage class, counting as Standard", "key", key, "storage_class", class)
		return r2.TierStandard, nil
	}
}
