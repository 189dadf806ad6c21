// Package lazy provides a memoizing, thread-safe single-assignment cell.
package lazy

import (
	"sync"
	"sync/atomic"
)

// Cell holds a value that is materialized at most once.
//
// Reads of a populated cell are a single atomic load. Initialization is
// serialized: concurrent callers of GetOrInit wait for the one running
// initializer and observe its result. A failed initialization leaves the cell
// empty, so a later call runs the initializer again.
//
// The zero value is an empty cell. A Cell must not be copied after first use.
type Cell[T any] struct {
	v  atomic.Pointer[T]
	mu sync.Mutex
}

// Of returns a cell already holding v.
func Of[T any](v *T) *Cell[T] {
	c := &Cell[T]{}
	c.v.Store(v)
	return c
}

// Get returns the value if the cell is populated.
func (c *Cell[T]) Get() (*T, bool) {
	v := c.v.Load()
	return v, v != nil
}

// Set populates an empty cell. It reports false if the cell was already set.
func (c *Cell[T]) Set(v *T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v.CompareAndSwap(nil, v)
}

// GetOrInit returns the cached value or runs init to produce it.
// init runs with the cell's lock held and must not touch the same cell.
func (c *Cell[T]) GetOrInit(init func() (*T, error)) (*T, error) {
	if v := c.v.Load(); v != nil {
		return v, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if v := c.v.Load(); v != nil {
		return v, nil
	}

	v, err := init()
	if err != nil {
		return nil, err
	}
	c.v.Store(v)
	return v, nil
}
