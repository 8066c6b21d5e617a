// Package transfer implements the multipart upload pipeline behind the
// upload command.
//
// The transfer package is responsible for:
//   - Splitting a local file into fixed-size parts (15 MiB by default)
//   - Uploading parts with bounded parallelism
//   - Assembling the finished parts into the final object, or aborting the
//     upload so no orphaned parts linger server-side
//
// Key design principles:
//   - Bounded memory: part buffers are pooled, so peak usage is the part
//     size times the parallelism setting
//   - Fail fast: the first part failure cancels the remaining parts
//   - Small files skip the multipart dance entirely and go up in one put
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robinvandernoord/r2-d2/internal/bytesize"
	"github.com/robinvandernoord/r2-d2/internal/logger"
	"github.com/robinvandernoord/r2-d2/internal/telemetry"
	"github.com/robinvandernoord/r2-d2/pkg/r2"
	"github.com/robinvandernoord/r2-d2/pkg/r2/s3"
)

// DefaultPartSize is the size of each uploaded part. The S3 API requires
// every part but the last to be at least 5 MiB; 15 MiB keeps the part count
// low for large files at a modest per-connection memory cost.
const DefaultPartSize = 15 * 1024 * 1024

// MaxParts is the S3 API ceiling on parts per multipart upload.
const MaxParts = 10000

// DefaultParallelParts is the default number of concurrently uploaded parts.
// Eight in-flight 15 MiB parts keep pooled buffers around 120 MiB at peak.
const DefaultParallelParts = 8

// abortTimeout bounds the cleanup call after a failed upload. The upload
// context is usually already cancelled by then, so abort runs on its own.
const abortTimeout = 30 * time.Second

// Store is the slice of the object store the uploader drives.
// *s3.Store implements it.
type Store interface {
	Put(ctx context.Context, key string, data []byte, storageClass string) error
	CreateMultipartUpload(ctx context.Context, key, storageClass string) (string, error)
	UploadPart(ctx context.Context, key, uploadID string, partNumber int32, data []byte) (s3.Part, error)
	CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []s3.Part) error
	AbortMultipartUpload(ctx context.Context, key, uploadID string) error
}

// Config controls upload behavior.
type Config struct {
	// PartSize is the bytes per multipart part. Defaults to DefaultPartSize.
	PartSize uint64

	// ParallelParts bounds concurrent part uploads. Defaults to
	// DefaultParallelParts.
	ParallelParts int

	// StorageClass is applied to the created object when non-empty
	// (for example "STANDARD_IA"). Empty uses the bucket default.
	StorageClass string

	// Progress, when non-nil, receives cumulative uploaded bytes and the
	// expected total after every finished part. Called from upload
	// goroutines, so implementations must be safe for concurrent use.
	Progress func(uploaded, total uint64)
}

// UploadResult describes a finished upload.
type UploadResult struct {
	Key   string
	Size  uint64
	Parts int

	// Multipart is false when the file fit in a single put.
	Multipart bool
}

// Uploader uploads local files to the object store.
type Uploader struct {
	store Store
	cfg   Config

	// pool reuses part-sized buffers across uploads to reduce GC pressure.
	// Uses *[]byte to satisfy staticcheck SA6002 (sync.Pool prefers pointer
	// types).
	pool sync.Pool
}

// New creates an Uploader. Zero config fields take their defaults.
func New(store Store, cfg Config) *Uploader {
	if cfg.PartSize == 0 {
		cfg.PartSize = DefaultPartSize
	}
	if cfg.ParallelParts <= 0 {
		cfg.ParallelParts = DefaultParallelParts
	}

	u := &Uploader{store: store, cfg: cfg}
	u.pool.New = func() any {
		buf := make([]byte, u.cfg.PartSize)
		return &buf
	}
	return u
}

// Upload sends the file at path to the store under key. Files no larger
// than one part go up as a single put; larger files use a multipart upload
// with ParallelParts concurrent part transfers. On any failure the
// multipart upload is aborted before the error is returned.
func (u *Uploader) Upload(ctx context.Context, path, key string) (*UploadResult, error) {
	if key == "" {
		return nil, errors.New("upload: key is required")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	size := uint64(info.Size())
	if size == 0 {
		return nil, fmt.Errorf("%s is empty, nothing to upload", path)
	}

	ctx, span := telemetry.StartUploadSpan(ctx, "file",
		telemetry.StorageKey(key),
		telemetry.FilePath(path),
		telemetry.Bytes(size),
	)
	defer span.End()

	var result *UploadResult
	if size <= u.cfg.PartSize {
		result, err = u.uploadSingle(ctx, f, key, size)
	} else {
		result, err = u.uploadMultipart(ctx, f, key, size)
	}
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	return result, nil
}

// uploadSingle sends a file that fits in one part via PutObject.
func (u *Uploader) uploadSingle(ctx context.Context, f *os.File, key string, size uint64) (*UploadResult, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name(), err)
	}

	if err := u.store.Put(ctx, key, data, u.cfg.StorageClass); err != nil {
		return nil, err
	}
	u.reportProgress(size, size)

	logger.Debug("single-shot upload complete",
		"key", key,
		"bytes", size)

	return &UploadResult{Key: key, Size: size, Parts: 1}, nil
}

func (u *Uploader) uploadMultipart(ctx context.Context, f *os.File, key string, size uint64) (*UploadResult, error) {
	partSize := u.cfg.PartSize
	partCount := size / partSize
	lastSize := size % partSize
	if lastSize == 0 {
		lastSize = partSize
	} else {
		partCount++
	}
	if partCount > MaxParts {
		return nil, fmt.Errorf("%s needs %d parts of %s, the limit is %d: increase the part size",
			f.Name(), partCount, bytesize.ByteSize(partSize), MaxParts)
	}

	uploadID, err := u.store.CreateMultipartUpload(ctx, key, u.cfg.StorageClass)
	if err != nil {
		return nil, err
	}

	logger.Debug("multipart upload starting",
		"key", key,
		"uploadID", uploadID,
		"bytes", size,
		"parts", partCount,
		"parallel", u.cfg.ParallelParts)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
		uploaded atomic.Uint64
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	sem := make(chan struct{}, u.cfg.ParallelParts)
	parts := make([]s3.Part, partCount)

	for i := uint64(0); i < partCount; i++ {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}

		go func(i uint64) {
			defer func() {
				<-sem
				wg.Done()
			}()

			length := partSize
			if i == partCount-1 {
				length = lastSize
			}

			bufPtr := u.pool.Get().(*[]byte)
			defer u.pool.Put(bufPtr)
			chunk := (*bufPtr)[:length]

			n, err := f.ReadAt(chunk, int64(i*partSize))
			if err != nil && !errors.Is(err, io.EOF) {
				fail(fmt.Errorf("read part %d of %s: %w", i+1, f.Name(), err))
				return
			}
			if uint64(n) != length {
				fail(fmt.Errorf("read part %d of %s: file shrank during upload", i+1, f.Name()))
				return
			}

			// Part numbers start at 1.
			part, err := u.store.UploadPart(ctx, key, uploadID, int32(i+1), chunk)
			if err != nil {
				fail(err)
				return
			}
			parts[i] = part

			u.reportProgress(uploaded.Add(length), size)
		}(i)
	}

	wg.Wait()

	if firstErr != nil {
		u.abort(key, uploadID)
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		u.abort(key, uploadID)
		return nil, r2.NewCancelledError(err)
	}

	if err := u.store.CompleteMultipartUpload(ctx, key, uploadID, parts); err != nil {
		u.abort(key, uploadID)
		return nil, err
	}

	logger.Debug("multipart upload complete",
		"key", key,
		"bytes", size,
		"parts", partCount)

	return &UploadResult{Key: key, Size: size, Parts: int(partCount), Multipart: true}, nil
}

// abort releases the server-side state of a failed upload. It runs on a
// fresh context because the upload context is usually already cancelled by
// the time abort is needed.
func (u *Uploader) abort(key, uploadID string) {
	ctx, cancel := context.WithTimeout(context.Background(), abortTimeout)
	defer cancel()

	if err := u.store.AbortMultipartUpload(ctx, key, uploadID); err != nil {
		logger.Warn("failed to abort multipart upload, orphaned parts may remain",
			"key", key,
			"uploadID", uploadID,
			"error", err)
	}
}

func (u *Uploader) reportProgress(uploaded, total uint64) {
	if u.cfg.Progress != nil {
		u.cfg.Progress(uploaded, total)
	}
}

// Ensure the S3 store satisfies the uploader's contract.
var _ Store = (*s3.Store)(nil)
