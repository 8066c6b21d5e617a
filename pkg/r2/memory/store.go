// Package memory provides an in-memory object store implementation for testing.
//
// The store serves listings in pages like a real object store and can be
// told to overlap consecutive pages or fail mid-listing, which is how the
// usage reconciler's duplicate suppression and error propagation get
// exercised without a bucket.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/robinvandernoord/r2-d2/pkg/r2"
)

const defaultPageSize = 1000

type object struct {
	data  []byte
	tier  r2.Tier
	class string
}

// Store is an in-memory implementation of r2.Store for testing.
type Store struct {
	mu      sync.RWMutex
	objects map[string]object

	pageSize    int
	pageOverlap int

	listErr       error
	listErrAtPage int
	getErrs       map[string]error
}

// New creates a new in-memory object store.
func New() *Store {
	return &Store{
		objects:  make(map[string]object),
		pageSize: defaultPageSize,
		getErrs:  make(map[string]error),
	}
}

// Put stores an object under key with the given tier.
func (s *Store) Put(key string, data []byte, tier r2.Tier) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Make a copy of the data to prevent mutation
	copied := make([]byte, len(data))
	copy(copied, data)

	class := "STANDARD"
	if tier == r2.TierInfrequentAccess {
		class = "STANDARD_IA"
	}
	s.objects[key] = object{data: copied, tier: tier, class: class}
}

// PutSized stores a zero-filled object of the given size. Listing tests
// only care about key, size and tier, not contents.
func (s *Store) PutSized(key string, size uint64, tier r2.Tier) {
	s.Put(key, make([]byte, size), tier)
}

// Delete removes an object.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
}

// SetPageSize controls how many objects each listing page carries.
func (s *Store) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
}

// SetPageOverlap makes every page after the first re-emit the last n keys
// of the previous page. Real listings can repeat keys across page
// boundaries when a page is retried; consumers must suppress them.
func (s *Store) SetPageOverlap(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageOverlap = n
}

// FailListAfter makes listings fail with err once page pages have been
// served.
func (s *Store) FailListAfter(pages int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
	s.listErrAtPage = pages
}

// FailGet makes Get and Head return err for the given key.
func (s *Store) FailGet(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErrs[key] = err
}

// Get reads an object's contents.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, r2.NewCancelledError(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err, ok := s.getErrs[key]; ok {
		return nil, err
	}

	obj, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", key, r2.ErrNotFound)
	}

	// Return a copy to prevent mutation
	copied := make([]byte, len(obj.data))
	copy(copied, obj.data)
	return copied, nil
}

// Head returns an object's metadata without its contents.
func (s *Store) Head(ctx context.Context, key string) (*r2.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, r2.NewCancelledError(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err, ok := s.getErrs[key]; ok {
		return nil, err
	}

	obj, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", key, r2.ErrNotFound)
	}

	return &r2.ObjectInfo{
		Key:          key,
		Size:         uint64(len(obj.data)),
		StorageClass: obj.class,
	}, nil
}

// List returns an iterator over objects under prefix in key order.
func (s *Store) List(ctx context.Context, prefix string) r2.ObjectIterator {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}

	// Sort for deterministic output
	sort.Strings(keys)

	return &iterator{ctx: ctx, store: s, keys: keys}
}

// ObjectCount returns the number of objects stored (for testing).
func (s *Store) ObjectCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// TotalSize returns the total size of all objects stored (for testing).
func (s *Store) TotalSize() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total uint64
	for _, obj := range s.objects {
		total += uint64(len(obj.data))
	}
	return total
}

type iterator struct {
	ctx   context.Context
	store *Store
	keys  []string

	pos   int
	pages int
	page  []r2.Observation
	idx   int
	cur   r2.Observation
	err   error
}

func (it *iterator) Next() bool {
	if it.err != nil {
		return false
	}
	for it.idx >= len(it.page) {
		if !it.fetchPage() {
			return false
		}
	}
	it.cur = it.page[it.idx]
	it.idx++
	return true
}

func (it *iterator) Object() r2.Observation {
	return it.cur
}

func (it *iterator) Err() error {
	return it.err
}

func (it *iterator) fetchPage() bool {
	if err := it.ctx.Err(); err != nil {
		it.err = r2.NewCancelledError(err)
		return false
	}
	if it.pos >= len(it.keys) {
		return false
	}

	it.store.mu.RLock()
	defer it.store.mu.RUnlock()

	if it.store.listErr != nil && it.pages >= it.store.listErrAtPage {
		it.err = it.store.listErr
		return false
	}

	pageSize := it.store.pageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	start := it.pos
	if it.pages > 0 && it.store.pageOverlap > 0 {
		start = it.pos - it.store.pageOverlap
		if start < 0 {
			start = 0
		}
	}
	end := it.pos + pageSize
	if end > len(it.keys) {
		end = len(it.keys)
	}

	it.page = it.page[:0]
	for _, key := range it.keys[start:end] {
		obj, ok := it.store.objects[key]
		if !ok {
			// Deleted since the listing snapshot was taken.
			continue
		}
		it.page = append(it.page, r2.Observation{
			Key:  key,
			Size: uint64(len(obj.data)),
			Tier: obj.tier,
		})
	}

	it.pos = end
	it.pages++
	it.idx = 0
	return true
}

// Ensure Store implements r2.Store.
var _ r2.Store = (*Store)(nil)
