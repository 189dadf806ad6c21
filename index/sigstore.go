package index

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/hupe1980/sketchdex/codec"
	"github.com/hupe1980/sketchdex/internal/lazy"
	"github.com/hupe1980/sketchdex/sketch"
	"github.com/hupe1980/sketchdex/storage"
)

// SigStore is a named, lazily materialized handle to a signature.
//
// The signature is read from storage under Filename on first access and
// cached; the handle never loads twice once a load succeeded. SigStores are
// shared by pointer, so every holder observes the same cached value.
type SigStore struct {
	filename string
	name     string
	metadata string

	storage  atomic.Pointer[storageRef]
	codec    codec.Codec
	selector sketch.Selector
	data     *lazy.Cell[sketch.Signature]
}

// storageRef boxes the Storage interface for atomic.Pointer.
type storageRef struct {
	storage.Storage
}

var _ Comparable[*SigStore] = (*SigStore)(nil)

// SigStoreOption configures a SigStore.
type SigStoreOption func(s *SigStore)

// WithStorage attaches the backend the signature is loaded from.
func WithStorage(st storage.Storage) SigStoreOption {
	return func(s *SigStore) {
		s.SetStorage(st)
	}
}

// WithData pre-populates the handle with an in-memory signature.
func WithData(sig *sketch.Signature) SigStoreOption {
	return func(s *SigStore) {
		s.data = lazy.Of(sig)
	}
}

// WithSelector sets the strategy that picks the sketch to compare.
// The default is sketch.FirstSlot.
func WithSelector(sel sketch.Selector) SigStoreOption {
	return func(s *SigStore) {
		s.selector = sel
	}
}

// WithCodec sets the codec used to decode stored signatures.
func WithCodec(c codec.Codec) SigStoreOption {
	return func(s *SigStore) {
		s.codec = c
	}
}

// NewSigStore creates a handle for the signature stored under filename.
func NewSigStore(filename, name, metadata string, opts ...SigStoreOption) *SigStore {
	s := &SigStore{
		filename: filename,
		name:     name,
		metadata: metadata,
		codec:    codec.Default,
		selector: sketch.FirstSlot,
		data:     &lazy.Cell[sketch.Signature]{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromSignature wraps an in-memory signature. The handle needs no storage.
func FromSignature(sig *sketch.Signature, opts ...SigStoreOption) *SigStore {
	opts = append([]SigStoreOption{WithData(sig)}, opts...)
	return NewSigStore(sig.Filename, sig.DisplayName(), "", opts...)
}

func (s *SigStore) Filename() string { return s.filename }
func (s *SigStore) Name() string     { return s.name }
func (s *SigStore) Metadata() string { return s.metadata }

// Storage returns the attached backend, or nil.
func (s *SigStore) Storage() storage.Storage {
	if ref := s.storage.Load(); ref != nil {
		return ref.Storage
	}
	return nil
}

// SetStorage attaches st. Attaching nil detaches the current backend.
func (s *SigStore) SetStorage(st storage.Storage) {
	if st == nil {
		s.storage.Store(nil)
		return
	}
	s.storage.Store(&storageRef{st})
}

// Loaded reports whether the signature is materialized.
func (s *SigStore) Loaded() bool {
	_, ok := s.data.Get()
	return ok
}

// Data returns the signature, loading it on first use.
func (s *SigStore) Data() (*sketch.Signature, error) {
	return s.DataContext(context.Background())
}

// DataContext is like Data but passes ctx to the storage backend.
func (s *SigStore) DataContext(ctx context.Context) (*sketch.Signature, error) {
	return s.data.GetOrInit(func() (*sketch.Signature, error) {
		return s.load(ctx)
	})
}

func (s *SigStore) load(ctx context.Context) (*sketch.Signature, error) {
	st := s.Storage()
	if st == nil {
		return nil, &LoadError{Filename: s.filename, cause: ErrNoStorage}
	}

	raw, err := st.Load(ctx, s.filename)
	if err != nil {
		return nil, &LoadError{Filename: s.filename, cause: err}
	}

	sigs, err := sketch.LoadSignatures(s.codec, raw)
	if err != nil {
		return nil, &LoadError{Filename: s.filename, cause: fmt.Errorf("%w: %w", sketch.ErrMalformed, err)}
	}
	if len(sigs) == 0 || sigs[0] == nil {
		return nil, &LoadError{Filename: s.filename, cause: fmt.Errorf("%w: empty signature list", sketch.ErrMalformed)}
	}
	return sigs[0], nil
}

// MustSignature returns the materialized signature. It panics if the handle
// has not been loaded; use Data to load it.
func (s *SigStore) MustSignature() *sketch.Signature {
	sig, ok := s.data.Get()
	if !ok {
		panic(fmt.Sprintf("index: SigStore %q is not loaded", s.filename))
	}
	return sig
}

// Clone returns an independent handle with the same storage and any data
// already loaded.
func (s *SigStore) Clone() *SigStore {
	c := &SigStore{
		filename: s.filename,
		name:     s.name,
		metadata: s.metadata,
		codec:    s.codec,
		selector: s.selector,
		data:     &lazy.Cell[sketch.Signature]{},
	}
	c.storage.Store(s.storage.Load())
	if sig, ok := s.data.Get(); ok {
		c.data = lazy.Of(sig)
	}
	return c
}

// DatasetInfo returns the metadata record of the handle.
func (s *SigStore) DatasetInfo() DatasetInfo {
	return DatasetInfo{
		Filename: s.filename,
		Name:     s.name,
		Metadata: s.metadata,
	}
}

// Similarity loads both handles and compares their selected sketches.
func (s *SigStore) Similarity(other *SigStore) (float64, error) {
	a, b, err := s.pair(other)
	if err != nil {
		return 0, err
	}
	return sketch.SimilarityWith(s.selector, a, b)
}

// Containment loads both handles and returns the fraction of this sketch
// found in other.
func (s *SigStore) Containment(other *SigStore) (float64, error) {
	a, b, err := s.pair(other)
	if err != nil {
		return 0, err
	}
	return sketch.ContainmentWith(s.selector, a, b)
}

// CountCommon returns the number of hashes shared with other.
func (s *SigStore) CountCommon(other *SigStore) (uint64, error) {
	a, b, err := s.pair(other)
	if err != nil {
		return 0, err
	}
	return sketch.CountCommonWith(s.selector, a, b)
}

// Mins returns the sorted hashes of the selected sketch.
func (s *SigStore) Mins() ([]uint64, error) {
	mh, err := s.MinHash()
	if err != nil {
		return nil, err
	}
	return mh.Mins(), nil
}

// MinHash returns the selected sketch.
func (s *SigStore) MinHash() (*sketch.MinHash, error) {
	return s.MinHashContext(context.Background())
}

// MinHashContext is like MinHash but passes ctx to the storage backend.
func (s *SigStore) MinHashContext(ctx context.Context) (*sketch.MinHash, error) {
	sig, err := s.DataContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.selector(sig)
}

func (s *SigStore) pair(other *SigStore) (*sketch.Signature, *sketch.Signature, error) {
	a, err := s.Data()
	if err != nil {
		return nil, nil, err
	}
	b, err := other.Data()
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}
