package storage

import (
	"context"
	"strings"
	"sync"

	"github.com/hupe1980/sketchdex/internal/cache"
	"golang.org/x/sync/singleflight"
)

// CachingStore wraps a Storage and keeps loaded payloads in an LRU.
//
// Concurrent loads of the same missing key share one inner Load. Many index
// entries commonly point at the same backing file, so this keeps a cold index
// from fetching it once per entry.
type CachingStore struct {
	inner Storage
	cache *cache.LRU
	group singleflight.Group

	// mu orders cache fills against invalidations. A fill is dropped when a
	// write or delete happened since its inner Load started.
	mu  sync.Mutex
	gen uint64
}

var _ Storage = (*CachingStore)(nil)

// NewCachingStore creates a CachingStore holding up to capacityBytes.
// capacityBytes defaults to 64MB if <= 0.
func NewCachingStore(inner Storage, capacityBytes int64) *CachingStore {
	if capacityBytes <= 0 {
		capacityBytes = 64 << 20
	}
	return &CachingStore{
		inner: inner,
		cache: cache.NewLRU(capacityBytes),
	}
}

// Load returns the cached payload or loads it from the inner store.
// The returned slice is shared with the cache and must not be modified.
func (s *CachingStore) Load(ctx context.Context, key string) ([]byte, error) {
	if b, ok := s.cache.Get(key); ok {
		return b, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		if b, ok := s.cache.Get(key); ok {
			return b, nil
		}
		gen := s.generation()
		b, err := s.inner.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.gen == gen {
			s.cache.Set(key, b)
		}
		s.mu.Unlock()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Save writes through and invalidates the cached payload.
func (s *CachingStore) Save(ctx context.Context, key string, data []byte) error {
	err := s.inner.Save(ctx, key, data)
	s.invalidate(key)
	return err
}

// Delete removes the key from the inner store and the cache.
func (s *CachingStore) Delete(ctx context.Context, key string) error {
	err := s.inner.Delete(ctx, key)
	s.invalidate(key)
	return err
}

func (s *CachingStore) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *CachingStore) invalidate(key string) {
	s.mu.Lock()
	s.gen++
	s.cache.Remove(key)
	s.mu.Unlock()
	s.group.Forget(key)
}

// List delegates to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Purge drops every cached payload under prefix.
func (s *CachingStore) Purge(prefix string) {
	s.cache.Invalidate(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

// Stats returns cache hit and miss counters.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}
