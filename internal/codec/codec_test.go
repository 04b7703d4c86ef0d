package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kiosk/pkg/types"
)

type sampleAsset struct {
	ID    types.ID `cbor:"id"`
	Name  string   `cbor:"name"`
	Power int      `cbor:"power"`
}

func TestTypeTag(t *testing.T) {
	want := "github.com/mesh-intelligence/kiosk/internal/codec.sampleAsset"
	assert.Equal(t, want, TypeTag[sampleAsset]())
	assert.Equal(t, want, TypeTag[*sampleAsset](), "pointer types share the element tag")
	assert.Equal(t, "uint64", TypeTag[uint64]())
}

func TestEncodeDecode(t *testing.T) {
	original := sampleAsset{ID: types.NewID(), Name: "sword", Power: 7}

	rec, err := Encode(original)
	require.NoError(t, err)
	assert.Equal(t, TypeTag[sampleAsset](), rec.Type)

	got, err := Decode[sampleAsset](rec)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestDecodeTypeMismatch(t *testing.T) {
	rec, err := Encode(uint64(100))
	require.NoError(t, err)

	_, err = Decode[sampleAsset](rec)
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
}

func TestMarshalDeterministic(t *testing.T) {
	v := map[string]any{"b": 2, "a": 1, "c": []int{3}}

	first, err := Marshal(v)
	require.NoError(t, err)
	for range 10 {
		again, err := Marshal(v)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(first, again), "encoding must be stable")
	}
}
