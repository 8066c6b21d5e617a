package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/robinvandernoord/r2-d2/pkg/r2"
	"github.com/robinvandernoord/r2-d2/pkg/r2/s3"
)

// fakeStore records uploader calls and assembles completed uploads so tests
// can verify the final object bytes.
type fakeStore struct {
	mu sync.Mutex

	objects map[string][]byte         // completed objects (puts and assemblies)
	classes map[string]string         // key -> storage class
	parts   map[string][]uploadedPart // uploadID -> parts received
	aborted []string                  // uploadIDs aborted
	created int

	failCreate   error
	failPartNum  int32
	failPartErr  error
	failComplete error
}

type uploadedPart struct {
	number int32
	data   []byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects: make(map[string][]byte),
		classes: make(map[string]string),
		parts:   make(map[string][]uploadedPart),
	}
}

func (s *fakeStore) Put(ctx context.Context, key string, data []byte, storageClass string) error {
	if err := ctx.Err(); err != nil {
		return r2.NewCancelledError(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	s.classes[key] = storageClass
	return nil
}

func (s *fakeStore) CreateMultipartUpload(ctx context.Context, key, storageClass string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", r2.NewCancelledError(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate != nil {
		return "", s.failCreate
	}
	s.created++
	uploadID := fmt.Sprintf("upload-%d", s.created)
	s.classes[key] = storageClass
	return uploadID, nil
}

func (s *fakeStore) UploadPart(ctx context.Context, key, uploadID string, partNumber int32, data []byte) (s3.Part, error) {
	if err := ctx.Err(); err != nil {
		return s3.Part{}, r2.NewCancelledError(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPartErr != nil && partNumber == s.failPartNum {
		return s3.Part{}, s.failPartErr
	}
	s.parts[uploadID] = append(s.parts[uploadID], uploadedPart{
		number: partNumber,
		data:   append([]byte(nil), data...),
	})
	return s3.Part{Number: partNumber, ETag: fmt.Sprintf("etag-%d", partNumber)}, nil
}

func (s *fakeStore) CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []s3.Part) error {
	if err := ctx.Err(); err != nil {
		return r2.NewCancelledError(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failComplete != nil {
		return s.failComplete
	}

	received := s.parts[uploadID]
	if len(received) != len(parts) {
		return fmt.Errorf("completed with %d parts, received %d", len(parts), len(received))
	}
	sort.Slice(received, func(i, j int) bool {
		return received[i].number < received[j].number
	})

	var assembled []byte
	for _, p := range received {
		assembled = append(assembled, p.data...)
	}
	s.objects[key] = assembled
	return nil
}

func (s *fakeStore) AbortMultipartUpload(ctx context.Context, key, uploadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aborted = append(s.aborted, uploadID)
	delete(s.parts, uploadID)
	return nil
}

func (s *fakeStore) object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}

func (s *fakeStore) abortCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.aborted)
}

func writeTestFile(t *testing.T, size int) string {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(t.TempDir(), "payload.bin")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing test file: %v", err)
	}
	return path
}

func TestUploader_SingleShot(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	path := writeTestFile(t, 10)

	var gotUploaded, gotTotal uint64
	u := New(store, Config{
		PartSize: 1024,
		Progress: func(uploaded, total uint64) {
			gotUploaded, gotTotal = uploaded, total
		},
	})

	result, err := u.Upload(ctx, path, "files/payload.bin")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if result.Multipart {
		t.Error("small file used a multipart upload")
	}
	if result.Parts != 1 || result.Size != 10 || result.Key != "files/payload.bin" {
		t.Errorf("result = %+v", result)
	}
	if store.created != 0 {
		t.Errorf("created %d multipart uploads, want 0", store.created)
	}

	want, _ := os.ReadFile(path)
	got, ok := store.object("files/payload.bin")
	if !ok || !bytes.Equal(got, want) {
		t.Error("stored object does not match the file")
	}
	if gotUploaded != 10 || gotTotal != 10 {
		t.Errorf("progress = (%d, %d), want (10, 10)", gotUploaded, gotTotal)
	}
}

func TestUploader_Multipart(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	path := writeTestFile(t, 10)

	u := New(store, Config{PartSize: 4, ParallelParts: 2})

	result, err := u.Upload(ctx, path, "files/payload.bin")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if !result.Multipart {
		t.Error("result not marked multipart")
	}
	if result.Parts != 3 || result.Size != 10 {
		t.Errorf("result = %+v, want 3 parts of 10 bytes", result)
	}

	want, _ := os.ReadFile(path)
	got, ok := store.object("files/payload.bin")
	if !ok {
		t.Fatal("object was not completed")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("assembled object %q does not match file %q", got, want)
	}
	if store.abortCount() != 0 {
		t.Error("successful upload was aborted")
	}
}

func TestUploader_MultipartExactBoundary(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	path := writeTestFile(t, 8)

	u := New(store, Config{PartSize: 4})

	result, err := u.Upload(ctx, path, "k")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if result.Parts != 2 {
		t.Errorf("Parts = %d, want 2 for a size divisible by the part size", result.Parts)
	}

	want, _ := os.ReadFile(path)
	if got, _ := store.object("k"); !bytes.Equal(got, want) {
		t.Error("assembled object does not match the file")
	}
}

func TestUploader_ProgressSequence(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	path := writeTestFile(t, 10)

	var mu sync.Mutex
	var seen []uint64
	u := New(store, Config{
		PartSize:      4,
		ParallelParts: 1,
		Progress: func(uploaded, total uint64) {
			mu.Lock()
			defer mu.Unlock()
			if total != 10 {
				t.Errorf("total = %d, want 10", total)
			}
			seen = append(seen, uploaded)
		},
	})

	if _, err := u.Upload(ctx, path, "k"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	want := []uint64{4, 8, 10}
	if len(seen) != len(want) {
		t.Fatalf("progress called %d times, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("progress[%d] = %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestUploader_StorageClass(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	path := writeTestFile(t, 10)

	u := New(store, Config{PartSize: 4, StorageClass: "STANDARD_IA"})
	if _, err := u.Upload(ctx, path, "cold"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if store.classes["cold"] != "STANDARD_IA" {
		t.Errorf("storage class = %q, want STANDARD_IA", store.classes["cold"])
	}
}

func TestUploader_PartFailureAborts(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.failPartNum = 2
	store.failPartErr = r2.NewStoreUnavailableError("failed to upload part 2", errors.New("boom"))
	path := writeTestFile(t, 10)

	u := New(store, Config{PartSize: 4, ParallelParts: 1})

	result, err := u.Upload(ctx, path, "k")
	if result != nil {
		t.Error("failed upload returned a result")
	}
	if !r2.IsCode(err, r2.ErrStoreUnavailable) {
		t.Errorf("Upload returned %v, want store unavailable", err)
	}
	if store.abortCount() != 1 {
		t.Errorf("abort called %d times, want 1", store.abortCount())
	}
	if _, ok := store.object("k"); ok {
		t.Error("failed upload left a completed object")
	}
}

func TestUploader_CompleteFailureAborts(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.failComplete = r2.NewStoreUnavailableError("failed to complete multipart upload", errors.New("boom"))
	path := writeTestFile(t, 10)

	u := New(store, Config{PartSize: 4})

	if _, err := u.Upload(ctx, path, "k"); err == nil {
		t.Fatal("Upload succeeded despite completion failure")
	}
	if store.abortCount() != 1 {
		t.Errorf("abort called %d times, want 1", store.abortCount())
	}
}

func TestUploader_TooManyParts(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	path := writeTestFile(t, MaxParts+1)

	u := New(store, Config{PartSize: 1})

	_, err := u.Upload(ctx, path, "k")
	if err == nil {
		t.Fatal("Upload accepted a file exceeding the part limit")
	}
	if !strings.Contains(err.Error(), "increase the part size") {
		t.Errorf("error does not suggest a fix: %v", err)
	}
	if store.created != 0 {
		t.Error("multipart upload was created before the part-count check")
	}
}

func TestUploader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := newFakeStore()
	path := writeTestFile(t, 10)

	u := New(store, Config{PartSize: 4})

	_, err := u.Upload(ctx, path, "k")
	if !r2.IsCancelled(err) {
		t.Errorf("Upload returned %v, want cancelled", err)
	}
}

func TestUploader_RejectsBadInputs(t *testing.T) {
	ctx := context.Background()
	u := New(newFakeStore(), Config{})

	if _, err := u.Upload(ctx, writeTestFile(t, 1), ""); err == nil {
		t.Error("Upload accepted an empty key")
	}
	if _, err := u.Upload(ctx, filepath.Join(t.TempDir(), "missing"), "k"); err == nil {
		t.Error("Upload accepted a missing file")
	}
	if _, err := u.Upload(ctx, t.TempDir(), "k"); err == nil {
		t.Error("Upload accepted a directory")
	}

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatalf("writing empty file: %v", err)
	}
	if _, err := u.Upload(ctx, empty, "k"); err == nil {
		t.Error("Upload accepted an empty file")
	}
}
