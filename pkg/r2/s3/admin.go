// Package s3 implements the object store accessor for R2 and other
// S3-compatible stores.
//
// This file contains account- and bucket-level administration operations
// used by the CLI (bucket listing, creation, wiping). These are not part of
// the r2.Store interface; they operate on the raw client or the concrete
// Store.
package s3

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.opentelemetry.io/otel/trace"

	"github.com/robinvandernoord/r2-d2/internal/logger"
	"github.com/robinvandernoord/r2-d2/internal/telemetry"
	"github.com/robinvandernoord/r2-d2/pkg/r2"
)

// BucketInfo describes one bucket in the account.
type BucketInfo struct {
	Name         string
	CreationDate time.Time
}

// ListBuckets returns all buckets in the account.
func ListBuckets(ctx context.Context, client *awss3.Client) ([]BucketInfo, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanBucketList)
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, r2.NewCancelledError(err)
	}

	result, err := client.ListBuckets(ctx, &awss3.ListBucketsInput{})
	if err != nil {
		telemetry.RecordError(ctx, err)
		if isAccessDeniedError(err) {
			return nil, r2.NewAccessDeniedError("access denied listing buckets", err)
		}
		return nil, r2.NewStoreUnavailableError("failed to list buckets", err)
	}

	buckets := make([]BucketInfo, 0, len(result.Buckets))
	for _, b := range result.Buckets {
		info := BucketInfo{}
		if b.Name != nil {
			info.Name = *b.Name
		}
		if b.CreationDate != nil {
			info.CreationDate = *b.CreationDate
		}
		buckets = append(buckets, info)
	}

	return buckets, nil
}

// CreateBucket creates a bucket. The location hint is optional (R2 accepts
// hints like "weur" or "apac"; an empty string lets the store choose).
func CreateBucket(ctx context.Context, client *awss3.Client, name, location string) error {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanBucketCreate,
		trace.WithAttributes(telemetry.Bucket(name)))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return r2.NewCancelledError(err)
	}

	input := &awss3.CreateBucketInput{
		Bucket: aws.String(name),
	}
	if location != "" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(location),
		}
	}

	_, err := client.CreateBucket(ctx, input)
	if err != nil {
		telemetry.RecordError(ctx, err)

		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return fmt.Errorf("bucket %s already exists", name)
		}
		if isAccessDeniedError(err) {
			return r2.NewAccessDeniedError(fmt.Sprintf("access denied creating bucket %s", name), err)
		}
		return r2.NewStoreUnavailableError(fmt.Sprintf("failed to create bucket %s", name), err)
	}

	return nil
}

// DeleteBucket removes an empty bucket. Use Purge first to empty it.
func DeleteBucket(ctx context.Context, client *awss3.Client, name string) error {
	if err := ctx.Err(); err != nil {
		return r2.NewCancelledError(err)
	}

	_, err := client.DeleteBucket(ctx, &awss3.DeleteBucketInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		if isAccessDeniedError(err) {
			return r2.NewAccessDeniedError(fmt.Sprintf("access denied deleting bucket %s", name), err)
		}
		return r2.NewStoreUnavailableError(fmt.Sprintf("failed to delete bucket %s", name), err)
	}

	return nil
}

// Purge deletes every object under prefix and returns how many were removed.
//
// S3 allows at most 1000 objects per DeleteObjects request; larger listings
// are chunked automatically. Individual per-key delete failures abort the
// purge with the first failure.
func (s *Store) Purge(ctx context.Context, prefix string) (deleted int, err error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanBucketPurge,
		trace.WithAttributes(telemetry.Bucket(s.bucket), telemetry.Prefix(prefix)))
	defer func() {
		telemetry.SetAttributes(ctx, telemetry.Objects(uint64(deleted)))
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
		span.End()
	}()

	// S3 allows max 1000 objects per delete request
	const maxBatchSize = 1000

	batch := make([]types.ObjectIdentifier, 0, maxBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		start := time.Now()
		result, derr := s.client.DeleteObjects(ctx, &awss3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{
				Objects: batch,
				Quiet:   aws.Bool(true),
			},
		})

		if s.metrics != nil {
			s.metrics.ObserveOperation("DeleteObjects", time.Since(start), derr)
		}

		if derr != nil {
			if ctx.Err() != nil {
				return r2.NewCancelledError(ctx.Err())
			}
			if isAccessDeniedError(derr) {
				return r2.NewAccessDeniedError(fmt.Sprintf("access denied deleting from bucket %s", s.bucket), derr)
			}
			return r2.NewStoreUnavailableError("failed to delete objects", derr)
		}

		for _, delErr := range result.Errors {
			key := ""
			if delErr.Key != nil {
				key = *delErr.Key
			}
			msg := "unknown error"
			if delErr.Code != nil && delErr.Message != nil {
				msg = fmt.Sprintf("%s: %s", *delErr.Code, *delErr.Message)
			}
			return &r2.UsageError{
				Code:    r2.ErrStoreUnavailable,
				Message: fmt.Sprintf("failed to delete object: %s", msg),
				Key:     key,
			}
		}

		deleted += len(batch)
		logger.Debug("purged objects", "bucket", s.bucket, "count", len(batch), "total", deleted)
		batch = batch[:0]
		return nil
	}

	it := s.List(ctx, prefix)
	for it.Next() {
		batch = append(batch, types.ObjectIdentifier{
			Key: aws.String(it.Object().Key),
		})
		if len(batch) == maxBatchSize {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := it.Err(); err != nil {
		return deleted, err
	}

	if err := flush(); err != nil {
		return deleted, err
	}

	return deleted, nil
}
