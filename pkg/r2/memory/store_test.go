package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/robinvandernoord/r2-d2/pkg/r2"
)

func TestStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	s := New()

	s.Put("snapshots/abc", []byte("hello world"), r2.TierStandard)

	data, err := s.Get(ctx, "snapshots/abc")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("Get returned %q, want %q", data, "hello world")
	}
}

func TestStore_GetNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Get(ctx, "nonexistent")
	if !errors.Is(err, r2.ErrNotFound) {
		t.Errorf("Get returned error %v, want ErrNotFound", err)
	}
}

func TestStore_Head(t *testing.T) {
	ctx := context.Background()
	s := New()

	s.PutSized("data/ab/cdef", 900, r2.TierInfrequentAccess)

	info, err := s.Head(ctx, "data/ab/cdef")
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if info.Size != 900 {
		t.Errorf("Size = %d, want 900", info.Size)
	}
	if info.StorageClass != "STANDARD_IA" {
		t.Errorf("StorageClass = %q, want STANDARD_IA", info.StorageClass)
	}
}

func TestStore_ListOrderAndPrefix(t *testing.T) {
	ctx := context.Background()
	s := New()

	s.PutSized("data/ab/one", 1, r2.TierStandard)
	s.PutSized("data/cd/two", 2, r2.TierStandard)
	s.PutSized("snapshots/three", 3, r2.TierStandard)

	var keys []string
	it := s.List(ctx, "data/")
	for it.Next() {
		keys = append(keys, it.Object().Key)
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterator failed: %v", err)
	}

	want := []string{"data/ab/one", "data/cd/two"}
	if len(keys) != len(want) {
		t.Fatalf("listed %d keys, want %d: %v", len(keys), len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestStore_ListPagesOverlap(t *testing.T) {
	ctx := context.Background()
	s := New()

	s.PutSized("data/a", 1, r2.TierStandard)
	s.PutSized("data/b", 1, r2.TierStandard)
	s.PutSized("data/c", 1, r2.TierStandard)
	s.PutSized("data/d", 1, r2.TierStandard)
	s.SetPageSize(2)
	s.SetPageOverlap(1)

	var keys []string
	it := s.List(ctx, "data/")
	for it.Next() {
		keys = append(keys, it.Object().Key)
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterator failed: %v", err)
	}

	// Pages: [a b] [b c d] -> the overlap re-emits b.
	want := []string{"data/a", "data/b", "data/b", "data/c", "data/d"}
	if len(keys) != len(want) {
		t.Fatalf("listed %d keys, want %d: %v", len(keys), len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestStore_FailListAfter(t *testing.T) {
	ctx := context.Background()
	s := New()

	s.PutSized("data/a", 1, r2.TierStandard)
	s.PutSized("data/b", 1, r2.TierStandard)
	s.PutSized("data/c", 1, r2.TierStandard)
	s.SetPageSize(1)

	injected := r2.NewStoreUnavailableError("listing failed", errors.New("boom"))
	s.FailListAfter(2, injected)

	var listed int
	it := s.List(ctx, "data/")
	for it.Next() {
		listed++
	}

	if listed != 2 {
		t.Errorf("listed %d objects before failure, want 2", listed)
	}
	if !r2.IsCode(it.Err(), r2.ErrStoreUnavailable) {
		t.Errorf("iterator error = %v, want store unavailable", it.Err())
	}
}

func TestStore_ListCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New()

	s.PutSized("data/a", 1, r2.TierStandard)
	cancel()

	it := s.List(ctx, "data/")
	if it.Next() {
		t.Error("Next returned true after cancellation")
	}
	if !r2.IsCancelled(it.Err()) {
		t.Errorf("iterator error = %v, want cancelled", it.Err())
	}
}

func TestStore_FailGet(t *testing.T) {
	ctx := context.Background()
	s := New()

	s.Put("keys/abc", []byte("key material"), r2.TierStandard)
	injected := r2.NewAccessDeniedError("get denied", errors.New("403"))
	s.FailGet("keys/abc", injected)

	_, err := s.Get(ctx, "keys/abc")
	if !r2.IsCode(err, r2.ErrAccessDenied) {
		t.Errorf("Get returned %v, want access denied", err)
	}
}

func TestStore_Totals(t *testing.T) {
	s := New()

	s.PutSized("data/a", 100, r2.TierStandard)
	s.PutSized("data/b", 900, r2.TierInfrequentAccess)

	if got := s.ObjectCount(); got != 2 {
		t.Errorf("ObjectCount = %d, want 2", got)
	}
	if got := s.TotalSize(); got != 1000 {
		t.Errorf("TotalSize = %d, want 1000", got)
	}
}
