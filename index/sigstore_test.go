package index

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/sketchdex/codec"
	"github.com/hupe1980/sketchdex/sketch"
	"github.com/hupe1980/sketchdex/storage"
	"github.com/hupe1980/sketchdex/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// panicStore fails the test on any access.
type panicStore struct{}

func (panicStore) Load(context.Context, string) ([]byte, error) { panic("unexpected Load") }
func (panicStore) Save(context.Context, string, []byte) error   { panic("unexpected Save") }
func (panicStore) Delete(context.Context, string) error         { panic("unexpected Delete") }
func (panicStore) List(context.Context, string) ([]string, error) {
	panic("unexpected List")
}

// flakyStore fails the first `fail` loads, then delegates.
type flakyStore struct {
	storage.Storage
	fail  atomic.Int32
	loads atomic.Int32
}

func (f *flakyStore) Load(ctx context.Context, key string) ([]byte, error) {
	f.loads.Add(1)
	if f.fail.Add(-1) >= 0 {
		return nil, errors.New("transient")
	}
	return f.Storage.Load(ctx, key)
}

func saveSig(t *testing.T, st storage.Storage, key string, sigs ...*sketch.Signature) {
	t.Helper()
	raw, err := sketch.MarshalSignatures(codec.Default, sigs...)
	require.NoError(t, err)
	require.NoError(t, st.Save(context.Background(), key, raw))
}

func TestFromSignature(t *testing.T) {
	sig := testutil.Signature("genome-a", 1, 2, 3)
	ss := FromSignature(sig, WithStorage(panicStore{}))

	assert.True(t, ss.Loaded())
	assert.Equal(t, "genome-a", ss.Name())
	assert.Equal(t, "genome-a.sig", ss.Filename())
	assert.Empty(t, ss.Metadata())

	got, err := ss.Data()
	require.NoError(t, err)
	assert.Same(t, sig, got)
	assert.Same(t, sig, ss.MustSignature())
}

func TestDatasetInfoWithoutStorage(t *testing.T) {
	ss := DatasetInfo{Filename: "a.sig", Name: "a"}.SigStore()
	assert.False(t, ss.Loaded())

	_, err := ss.Data()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoad)
	assert.ErrorIs(t, err, ErrNoStorage)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "a.sig", le.Filename)

	assert.Panics(t, func() { ss.MustSignature() })
}

func TestSigStoreLoad(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()

	t.Run("List", func(t *testing.T) {
		saveSig(t, st, "list.sig", testutil.Signature("first", 1, 2), testutil.Signature("second", 3))

		ss := NewSigStore("list.sig", "first", "", WithStorage(st))
		sig, err := ss.DataContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, "first", sig.Name)
	})

	t.Run("Single", func(t *testing.T) {
		raw, err := codec.Default.Marshal(testutil.Signature("single", 9))
		require.NoError(t, err)
		require.NoError(t, st.Save(ctx, "single.sig", raw))

		sig, err := NewSigStore("single.sig", "", "", WithStorage(st)).Data()
		require.NoError(t, err)
		assert.Equal(t, "single", sig.Name)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := NewSigStore("missing.sig", "", "", WithStorage(st)).Data()
		assert.ErrorIs(t, err, ErrLoad)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Malformed", func(t *testing.T) {
		require.NoError(t, st.Save(ctx, "bad.sig", []byte("not json")))
		_, err := NewSigStore("bad.sig", "", "", WithStorage(st)).Data()
		assert.ErrorIs(t, err, ErrLoad)
		assert.ErrorIs(t, err, sketch.ErrMalformed)
	})

	t.Run("EmptyList", func(t *testing.T) {
		require.NoError(t, st.Save(ctx, "empty.sig", []byte("[]")))
		_, err := NewSigStore("empty.sig", "", "", WithStorage(st)).Data()
		assert.ErrorIs(t, err, sketch.ErrMalformed)
	})
}

func TestSigStoreLoadsOnce(t *testing.T) {
	st := storage.NewMemoryStore()
	saveSig(t, st, "a.sig", testutil.Signature("a", 1, 2, 3))

	ss := NewSigStore("a.sig", "a", "", WithStorage(st))

	const n = 32
	results := make([]*sketch.Signature, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sig, err := ss.Data()
			assert.NoError(t, err)
			results[i] = sig
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), st.Loads())
	for _, sig := range results {
		assert.Same(t, results[0], sig)
	}

	// Cached: storage is no longer consulted.
	ss.SetStorage(panicStore{})
	_, err := ss.Data()
	assert.NoError(t, err)
}

func TestSigStoreFailureNotMemoized(t *testing.T) {
	mem := storage.NewMemoryStore()
	saveSig(t, mem, "a.sig", testutil.Signature("a", 1))

	st := &flakyStore{Storage: mem}
	st.fail.Store(1)

	ss := NewSigStore("a.sig", "a", "", WithStorage(st))

	_, err := ss.Data()
	require.ErrorIs(t, err, ErrLoad)
	assert.False(t, ss.Loaded())

	sig, err := ss.Data()
	require.NoError(t, err)
	assert.Equal(t, "a", sig.Name)
	assert.Equal(t, int32(2), st.loads.Load())
}

func TestSigStoreAttachStorageLater(t *testing.T) {
	st := storage.NewMemoryStore()
	saveSig(t, st, "late.sig", testutil.Signature("late", 4, 5))

	ss := DatasetInfo{Filename: "late.sig", Name: "late"}.SigStore()
	assert.Nil(t, ss.Storage())

	_, err := ss.Data()
	require.ErrorIs(t, err, ErrNoStorage)

	ss.SetStorage(st)
	assert.Equal(t, st, ss.Storage())

	mins, err := ss.Mins()
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 5}, mins)
}

func TestSigStoreClone(t *testing.T) {
	st := storage.NewMemoryStore()
	saveSig(t, st, "a.sig", testutil.Signature("a", 1, 2))

	unloaded := NewSigStore("a.sig", "a", "meta", WithStorage(st))
	c := unloaded.Clone()
	assert.NotSame(t, unloaded, c)
	assert.Equal(t, unloaded.DatasetInfo(), c.DatasetInfo())
	assert.False(t, c.Loaded())

	_, err := c.Data()
	require.NoError(t, err)
	assert.False(t, unloaded.Loaded(), "clones load independently")

	loaded := c.Clone()
	assert.True(t, loaded.Loaded())
	assert.Same(t, c.MustSignature(), loaded.MustSignature())
}

func TestSigStoreComparable(t *testing.T) {
	a := FromSignature(testutil.Signature("a", 1, 2, 3, 4))
	b := FromSignature(testutil.Signature("b", 3, 4, 5, 6))

	sim, err := a.Similarity(b)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/6.0, sim, 1e-9)

	cont, err := a.Containment(b)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, cont, 1e-9)

	common, err := a.CountCommon(b)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), common)

	mins, err := b.Mins()
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 4, 5, 6}, mins)

	t.Run("Incompatible", func(t *testing.T) {
		opaque := FromSignature(sketch.NewSignature("o", "o.sig", sketch.NewOpaqueSketch([]byte(`{}`))))
		_, err := a.Similarity(opaque)
		assert.ErrorIs(t, err, sketch.ErrIncompatible)
	})

	t.Run("Selector", func(t *testing.T) {
		k21 := sketch.NewMinHash(func(o *sketch.MinHashOptions) { o.KSize = 21 })
		k21.AddMany([]uint64{1, 2})
		multi := sketch.NewSignature("m", "m.sig", k21, testutil.MinHash(1, 2, 3, 4))

		m := FromSignature(multi, WithSelector(sketch.ByKSize(31)))
		sim, err := m.Similarity(a)
		require.NoError(t, err)
		assert.Equal(t, 1.0, sim)
	})

	t.Run("LoadErrorPropagates", func(t *testing.T) {
		_, err := a.Similarity(DatasetInfo{Filename: "x"}.SigStore())
		assert.ErrorIs(t, err, ErrLoad)
	})
}
