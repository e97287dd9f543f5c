package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridSerializeRoundTrip(t *testing.T) {
	g := mustGrid(t, 3, 2, []uint64{0, 1, 127, 255, 42, 7})

	for _, w := range []Width{Width8, Width16, Width32, Width64} {
		b, err := MarshalGrid(g, w)
		require.NoError(t, err)
		assert.Len(t, b, 16+6*w.Bytes())

		out, width, err := UnmarshalGrid(b)
		require.NoError(t, err)
		assert.Equal(t, w, width)
		assert.True(t, out.Equal(g), "width %s", w)
	}
}

func TestMarshalGridErrors(t *testing.T) {
	g := mustGrid(t, 1, 1, []uint64{256})

	_, err := MarshalGrid(g, Width8)
	assert.True(t, errorIs(err, ErrRange))

	_, err = MarshalGrid(g, Width(3))
	assert.True(t, errorIs(err, ErrRange))

	b, err := MarshalGrid(g, Width16)
	require.NoError(t, err)

	out, _, err := UnmarshalGrid(b)
	require.NoError(t, err)
	assert.Equal(t, uint64(256), out.At(0, 0))
}

func TestUnmarshalGridErrors(t *testing.T) {
	_, _, err := UnmarshalGrid(nil)
	assert.Error(t, err)

	_, _, err = UnmarshalGrid([]byte("not a grid at all"))
	assert.Error(t, err)

	// Truncated payload
	g := mustGrid(t, 2, 2, []uint64{1, 2, 3, 4})
	b, err := MarshalGrid(g, Width32)
	require.NoError(t, err)

	_, _, err = UnmarshalGrid(b[:len(b)-3])
	assert.Error(t, err)
}
