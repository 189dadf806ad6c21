package storage

import (
	"context"

	"golang.org/x/time/rate"
)

// ThrottledStore limits the byte throughput of Load and Save on the inner
// store. Loads are charged after the payload arrives, since its size is not
// known up front.
type ThrottledStore struct {
	inner   Storage
	limiter *rate.Limiter
}

var _ Storage = (*ThrottledStore)(nil)

// NewThrottledStore limits inner to bytesPerSec. A non-positive rate
// disables throttling.
func NewThrottledStore(inner Storage, bytesPerSec int) *ThrottledStore {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if bytesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec)
	}
	return &ThrottledStore{inner: inner, limiter: limiter}
}

// Load loads from the inner store, then waits for the payload's byte budget.
func (s *ThrottledStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.inner.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.wait(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}

// Save waits for the payload's byte budget, then writes.
func (s *ThrottledStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.wait(ctx, len(data)); err != nil {
		return err
	}
	return s.inner.Save(ctx, key, data)
}

// Delete delegates to the inner store.
func (s *ThrottledStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// List delegates to the inner store.
func (s *ThrottledStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// wait charges n bytes in burst-sized chunks; WaitN rejects requests larger
// than the burst.
func (s *ThrottledStore) wait(ctx context.Context, n int) error {
	if s.limiter.Limit() == rate.Inf {
		return nil
	}
	burst := s.limiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := s.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
