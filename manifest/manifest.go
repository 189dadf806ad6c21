// Package manifest persists the list of datasets an index holds.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/sketchdex/codec"
	"github.com/hupe1980/sketchdex/index"
	"github.com/hupe1980/sketchdex/storage"
)

const CurrentVersion = 1

// ErrUnsupportedVersion is returned when a manifest was written by an
// incompatible version.
var ErrUnsupportedVersion = errors.New("unsupported manifest version")

// Manifest describes the contents of an index at a specific point in time.
type Manifest struct {
	Version    int                 `json:"version"`
	Signatures []index.DatasetInfo `json:"signatures"`
}

// Store reads and writes manifests in a storage backend.
type Store struct {
	st    storage.Storage
	codec codec.Codec
	mu    sync.Mutex
}

// NewStore creates a new manifest store. A nil codec selects codec.Default.
func NewStore(st storage.Storage, c codec.Codec) *Store {
	if c == nil {
		c = codec.Default
	}
	return &Store{
		st:    st,
		codec: c,
	}
}

// Load reads the manifest stored under path.
func (s *Store) Load(ctx context.Context, path string) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.st.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := s.codec.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %q: %w", path, err)
	}

	if m.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: %d (expected %d)", ErrUnsupportedVersion, m.Version, CurrentVersion)
	}

	return &m, nil
}

// Save writes m under path, stamping the current version.
func (s *Store) Save(ctx context.Context, path string, m *Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.Version = CurrentVersion
	if m.Signatures == nil {
		m.Signatures = []index.DatasetInfo{}
	}

	data, err := s.codec.Marshal(m)
	if err != nil {
		return err
	}
	return s.st.Save(ctx, path, data)
}
