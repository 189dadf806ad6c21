package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Filename string   `json:"filename"`
	Mins     []uint64 `json:"mins"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecsInterop(t *testing.T) {
	in := record{Filename: "a.sig", Mins: []uint64{1, 2, 18446744073709551615}}

	b := MustMarshal(JSON{}, in)

	var out record
	require.NoError(t, GoJSON{}.Unmarshal(b, &out))
	assert.Equal(t, in, out)

	b = MustMarshal(nil, in)
	out = record{}
	require.NoError(t, JSON{}.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}
