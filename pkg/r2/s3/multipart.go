// Package s3 implements the object store accessor for R2 and other
// S3-compatible stores.
//
// This file contains the write operations used by the upload command:
// single-shot puts and the multipart upload primitives the transfer manager
// drives. Part bookkeeping (numbering, completion order) belongs to the
// caller; the store only wraps the S3 calls with metrics and typed errors.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/robinvandernoord/r2-d2/internal/telemetry"
	"github.com/robinvandernoord/r2-d2/pkg/r2"
)

// Part identifies one completed part of a multipart upload.
type Part struct {
	Number int32
	ETag   string
}

// Put uploads data as a single object. The storage class is optional
// (empty string uses the bucket default).
func (s *Store) Put(ctx context.Context, key string, data []byte, storageClass string) (err error) {
	ctx, span := telemetry.StartStoreSpan(ctx, "put", s.bucket,
		telemetry.StorageKey(key), telemetry.Bytes(uint64(len(data))))
	defer span.End()

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveOperation("PutObject", time.Since(start), err)
			if err == nil {
				s.metrics.RecordBytes("PutObject", int64(len(data)))
			}
		}
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
	}()

	if err = ctx.Err(); err != nil {
		return r2.NewCancelledError(err)
	}

	input := &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if storageClass != "" {
		input.StorageClass = types.StorageClass(storageClass)
	}

	_, err = s.client.PutObject(ctx, input)
	if err != nil {
		if ctx.Err() != nil {
			return r2.NewCancelledError(ctx.Err())
		}
		if isAccessDeniedError(err) {
			return r2.NewAccessDeniedError(fmt.Sprintf("access denied writing %s/%s", s.bucket, key), err)
		}
		return r2.NewStoreUnavailableError(fmt.Sprintf("failed to put object %s", key), err)
	}

	return nil
}

// CreateMultipartUpload initiates a multipart upload for key and returns the
// upload ID for subsequent part uploads.
func (s *Store) CreateMultipartUpload(ctx context.Context, key, storageClass string) (uploadID string, err error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveOperation("CreateMultipartUpload", time.Since(start), err)
		}
	}()

	if err = ctx.Err(); err != nil {
		return "", r2.NewCancelledError(err)
	}

	input := &awss3.CreateMultipartUploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if storageClass != "" {
		input.StorageClass = types.StorageClass(storageClass)
	}

	result, err := s.client.CreateMultipartUpload(ctx, input)
	if err != nil {
		if ctx.Err() != nil {
			return "", r2.NewCancelledError(ctx.Err())
		}
		if isAccessDeniedError(err) {
			return "", r2.NewAccessDeniedError(fmt.Sprintf("access denied writing %s/%s", s.bucket, key), err)
		}
		return "", r2.NewStoreUnavailableError("failed to create multipart upload", err)
	}

	return *result.UploadId, nil
}

// UploadPart uploads one part. Parts may be uploaded in parallel; part
// numbers must be unique within the upload (1-10000).
func (s *Store) UploadPart(ctx context.Context, key, uploadID string, partNumber int32, data []byte) (part Part, err error) {
	ctx, span := telemetry.StartUploadSpan(ctx, "part",
		telemetry.Bucket(s.bucket),
		telemetry.StorageKey(key),
		telemetry.PartNumber(partNumber),
		telemetry.PartSize(uint64(len(data))))
	defer span.End()

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveOperation("UploadPart", time.Since(start), err)
			if err == nil {
				s.metrics.RecordBytes("UploadPart", int64(len(data)))
			}
		}
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
	}()

	if err = ctx.Err(); err != nil {
		return Part{}, r2.NewCancelledError(err)
	}

	result, err := s.client.UploadPart(ctx, &awss3.UploadPartInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(key),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int32(partNumber),
		Body:       bytes.NewReader(data),
	})
	if err != nil {
		if ctx.Err() != nil {
			return Part{}, r2.NewCancelledError(ctx.Err())
		}
		return Part{}, r2.NewStoreUnavailableError(fmt.Sprintf("failed to upload part %d", partNumber), err)
	}

	part = Part{Number: partNumber}
	if result.ETag != nil {
		part.ETag = *result.ETag
	}

	return part, nil
}

// CompleteMultipartUpload assembles the uploaded parts into the final
// object. Parts are sorted by part number before completion, so callers may
// collect them in any order.
func (s *Store) CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []Part) (err error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveOperation("CompleteMultipartUpload", time.Since(start), err)
		}
	}()

	if err = ctx.Err(); err != nil {
		return r2.NewCancelledError(err)
	}

	sorted := make([]Part, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Number < sorted[j].Number
	})

	completed := make([]types.CompletedPart, len(sorted))
	for i, p := range sorted {
		completed[i] = types.CompletedPart{
			ETag:       aws.String(p.ETag),
			PartNumber: aws.Int32(p.Number),
		}
	}

	_, err = s.client.CompleteMultipartUpload(ctx, &awss3.CompleteMultipartUploadInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: completed,
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return r2.NewCancelledError(ctx.Err())
		}
		return r2.NewStoreUnavailableError("failed to complete multipart upload", err)
	}

	return nil
}

// AbortMultipartUpload cancels an in-progress multipart upload. Idempotent:
// aborting an unknown upload succeeds.
func (s *Store) AbortMultipartUpload(ctx context.Context, key, uploadID string) (err error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveOperation("AbortMultipartUpload", time.Since(start), err)
		}
	}()

	if err = ctx.Err(); err != nil {
		return r2.NewCancelledError(err)
	}

	_, err = s.client.AbortMultipartUpload(ctx, &awss3.AbortMultipartUploadInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		// Ignore NoSuchUpload error (idempotent behavior)
		var noSuchUpload *types.NoSuchUpload
		if errors.As(err, &noSuchUpload) {
			return nil
		}
		return r2.NewStoreUnavailableError("failed to abort multipart upload", err)
	}

	return nil
}
