// Package mmap provides read-only memory-mapped file access.
//
// The local storage backend maps signature files instead of reading them
// through buffered IO; callers copy what they keep before Close.
package mmap

import (
	"errors"
	"os"
	"sync/atomic"
)

// Mapping is a read-only memory-mapped file.
type Mapping struct {
	data   []byte
	closed atomic.Bool
}

// Open maps the file at path into memory.
// Empty files produce a mapping with no data.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size < 0 {
		return nil, errors.New("mmap: file size is negative")
	}
	if size == 0 {
		return &Mapping{}, nil
	}

	data, err := mmap(f, int(size))
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data}, nil
}

// Bytes returns the mapped region. It is invalid after Close.
func (m *Mapping) Bytes() []byte {
	return m.data
}

// Len returns the size of the mapping in bytes.
func (m *Mapping) Len() int {
	return len(m.data)
}

// Close unmaps the file. It is idempotent.
func (m *Mapping) Close() error {
	if m == nil || !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	if len(m.data) == 0 {
		return nil
	}
	data := m.data
	m.data = nil
	return munmap(data)
}
