package manifest

import (
	"context"
	"testing"

	"github.com/hupe1980/sketchdex/codec"
	"github.com/hupe1980/sketchdex/index"
	"github.com/hupe1980/sketchdex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	ms := NewStore(st, nil)

	in := &Manifest{Signatures: []index.DatasetInfo{
		{Filename: "a.sig", Name: "a", Metadata: "x"},
		{Filename: "b.sig", Name: "b"},
	}}
	require.NoError(t, ms.Save(ctx, "db.manifest", in))
	assert.Equal(t, CurrentVersion, in.Version)

	out, err := ms.Load(ctx, "db.manifest")
	require.NoError(t, err)
	assert.Equal(t, in.Signatures, out.Signatures)

	raw, err := st.Load(ctx, "db.manifest")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"signatures":[
		{"filename":"a.sig","name":"a","metadata":"x"},
		{"filename":"b.sig","name":"b","metadata":""}]}`, string(raw))
}

func TestStoreEmpty(t *testing.T) {
	ctx := context.Background()
	ms := NewStore(storage.NewMemoryStore(), codec.JSON{})

	require.NoError(t, ms.Save(ctx, "empty", &Manifest{}))
	m, err := ms.Load(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, m.Signatures)
}

func TestStoreVersionMismatch(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	require.NoError(t, st.Save(ctx, "old", []byte(`{"version":7,"signatures":[]}`)))

	_, err := NewStore(st, nil).Load(ctx, "old")
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestStoreMissing(t *testing.T) {
	_, err := NewStore(storage.NewMemoryStore(), nil).Load(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
