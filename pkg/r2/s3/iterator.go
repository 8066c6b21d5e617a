// Package s3 implements the object store accessor for R2 and other
// S3-compatible stores.
//
// This file contains the paginated listing iterator.
package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/robinvandernoord/r2-d2/internal/logger"
	"github.com/robinvandernoord/r2-d2/internal/telemetry"
	"github.com/robinvandernoord/r2-d2/pkg/r2"
)

// List returns a lazy iterator over all objects under prefix.
//
// Pages are fetched on demand as the iterator advances. Each page fetch is
// retried with exponential backoff on transient errors; exhaustion surfaces
// as r2.ErrStoreUnavailable through the iterator's Err. The sequence is not
// restartable - to retry an interrupted listing, call List again.
//
// The context is captured for the lifetime of the iteration; cancellation
// stops the iterator with r2.ErrCancelled.
func (s *Store) List(ctx context.Context, prefix string) r2.ObjectIterator {
	input := &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}
	if s.pageSize > 0 {
		input.MaxKeys = aws.Int32(s.pageSize)
	}

	return &objectIterator{
		ctx:       ctx,
		store:     s,
		prefix:    prefix,
		paginator: awss3.NewListObjectsV2Paginator(s.client, input),
	}
}

// objectIterator walks a paginated listing, one page buffer at a time.
//
// Single-consumer; see r2.ObjectIterator.
type objectIterator struct {
	ctx       context.Context
	store     *Store
	prefix    string
	paginator *awss3.ListObjectsV2Paginator

	buf  []r2.Observation
	idx  int
	cur  r2.Observation
	err  error
	done bool
}

// Next advances to the next object, fetching further pages as needed.
func (it *objectIterator) Next() bool {
	if it.err != nil || it.done {
		return false
	}

	for it.idx >= len(it.buf) {
		if !it.paginator.HasMorePages() {
			it.done = true
			return false
		}
		if err := it.fetchPage(); err != nil {
			it.err = err
			return false
		}
	}

	it.cur = it.buf[it.idx]
	it.idx++
	return true
}

// Object returns the current observation. Only valid after a true Next.
func (it *objectIterator) Object() r2.Observation {
	return it.cur
}

// Err returns the terminal error, if any, once Next has returned false.
func (it *objectIterator) Err() error {
	return it.err
}

// fetchPage retrieves the next listing page and refills the buffer.
func (it *objectIterator) fetchPage() error {
	s := it.store

	ctx, span := telemetry.StartStoreSpan(it.ctx, "list", s.bucket, telemetry.Prefix(it.prefix))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return r2.NewCancelledError(err)
	}

	var page *awss3.ListObjectsV2Output
	var lastErr error

	start := time.Now()
	for attempt := 0; attempt <= int(s.retry.maxRetries); attempt++ {
		if attempt > 0 {
			backoff := s.calculateBackoff(attempt - 1)
			logger.Debug("List: retrying page", "backoff", backoff, "attempt", attempt, "max_retries", s.retry.maxRetries, "prefix", it.prefix)
			if s.metrics != nil {
				s.metrics.RecordRetry("ListObjectsV2")
			}

			select {
			case <-ctx.Done():
				return r2.NewCancelledError(ctx.Err())
			case <-time.After(backoff):
			}
		}

		// The paginator only advances its continuation token on success,
		// so a failed NextPage can be re-issued safely.
		page, lastErr = it.paginator.NextPage(ctx)

		if lastErr == nil {
			break
		}

		if isAccessDeniedError(lastErr) {
			err := r2.NewAccessDeniedError(fmt.Sprintf("access denied listing bucket %s", s.bucket), lastErr)
			telemetry.RecordError(ctx, err)
			return err
		}

		if !isRetryableError(lastErr) {
			break
		}

		logger.Debug("List: transient error", "attempt", attempt+1, "max_retries", s.retry.maxRetries+1, "prefix", it.prefix, "error", lastErr)
	}

	if s.metrics != nil {
		s.metrics.ObserveOperation("ListObjectsV2", time.Since(start), lastErr)
	}

	if lastErr != nil {
		// A page fetch aborted by cancellation is a cancellation, not an
		// outage.
		if ctx.Err() != nil {
			return r2.NewCancelledError(ctx.Err())
		}
		err := r2.NewStoreUnavailableError(
			fmt.Sprintf("failed to list objects after %d attempts", s.retry.maxRetries+1), lastErr)
		telemetry.RecordError(ctx, err)
		return err
	}

	buf := make([]r2.Observation, 0, len(page.Contents))
	for _, obj := range page.Contents {
		if obj.Key == nil {
			continue
		}

		var size uint64
		if obj.Size != nil {
			size = uint64(*obj.Size)
		}

		tier, err := s.resolveTier(ctx, *obj.Key, string(obj.StorageClass))
		if err != nil {
			telemetry.RecordError(ctx, err)
			return err
		}

		buf = append(buf, r2.Observation{
			Key:  *obj.Key,
			Size: size,
			Tier: tier,
		})
	}

	telemetry.SetAttributes(ctx,
		telemetry.KeyCount(len(buf)),
		telemetry.Truncated(it.paginator.HasMorePages()),
	)

	it.buf = buf
	it.idx = 0
	return nil
}
