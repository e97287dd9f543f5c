package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brendan-ward/datatiles/grid"
)

func mustGrid(t *testing.T, w, h int, data []uint64) *grid.Grid {
	t.Helper()
	g, err := grid.NewFromData(w, h, data)
	require.NoError(t, err)
	return g
}

func TestNewEncoder(t *testing.T) {
	_, err := NewEncoder(1, Width8)
	assert.True(t, errorIs(err, ErrInvalidBase))

	_, err = NewEncoder(10, Width(9))
	assert.True(t, errorIs(err, ErrRange))

	// A single digit must already fit the width
	_, err = NewEncoder(300, Width8)
	assert.True(t, errorIs(err, ErrRange))

	enc, err := NewEncoder(10, Width32)
	require.NoError(t, err)
	assert.Equal(t, 0, enc.Layers())
	assert.Nil(t, enc.Values())
}

func TestEncoderAdd(t *testing.T) {
	enc, err := NewEncoder(10, Width32)
	require.NoError(t, err)

	first := mustGrid(t, 2, 2, []uint64{1, 2, 3, 4})
	require.NoError(t, enc.Add(first))
	assert.True(t, enc.Values().Equal(first))

	// Mutating the accessor's copy must not reach encoder state
	enc.Values().Data[0] = 99
	assert.True(t, enc.Values().Equal(first))

	second := mustGrid(t, 2, 2, []uint64{5, 6, 7, 8})
	require.NoError(t, enc.Add(second))
	assert.Equal(t, 2, enc.Layers())

	expected := mustGrid(t, 2, 2, []uint64{51, 62, 73, 84})
	assert.True(t, enc.Values().Equal(expected))
}

func TestEncoderShapeGuard(t *testing.T) {
	enc, err := NewEncoder(10, Width32)
	require.NoError(t, err)

	// Any shape is accepted first
	require.NoError(t, enc.Add(grid.New(3, 2)))

	err = enc.Add(grid.New(2, 3))
	assert.True(t, errorIs(err, ErrShapeMismatch))

	// A rejected layer must leave the encoder usable
	require.NoError(t, enc.Add(grid.New(3, 2)))
	assert.Equal(t, 2, enc.Layers())
}

func TestEncoderValueRange(t *testing.T) {
	enc, err := NewEncoder(4, Width8)
	require.NoError(t, err)

	err = enc.Add(mustGrid(t, 1, 1, []uint64{4}))
	assert.True(t, errorIs(err, ErrValueTooLarge))
	assert.Equal(t, 0, enc.Layers())

	require.NoError(t, enc.Add(mustGrid(t, 1, 1, []uint64{3})))
}

func TestEncoderWidthRange(t *testing.T) {
	// base 4: three layers need 0..63, a fourth needs 0..255 which
	// still fits uint8, a fifth does not
	enc, err := NewEncoder(4, Width8)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.NoError(t, enc.Add(grid.New(1, 1)))
	}

	err = enc.Add(grid.New(1, 1))
	assert.True(t, errorIs(err, ErrRange))
	assert.Equal(t, 4, enc.Layers())
}

func TestEncoderStreamingScenario(t *testing.T) {
	// The documented single-pixel scenario: 1 + 2*4 + 3*16 = 57
	enc, err := NewEncoder(4, Width8)
	require.NoError(t, err)

	for _, v := range []uint64{1, 2, 3} {
		require.NoError(t, enc.Add(mustGrid(t, 1, 1, []uint64{v})))
	}

	assert.Equal(t, uint64(57), enc.Values().At(0, 0))

	cfg := enc.Config()
	assert.Equal(t, uint64(4), cfg.Base)
	assert.Equal(t, 3, cfg.Size)
	assert.Equal(t, Width8, cfg.Width)
	assert.Equal(t, uint64(255), cfg.Nodata)
	require.NoError(t, cfg.Validate())
}

func TestEncoderMatchesScalarEncode(t *testing.T) {
	const base = 6
	layers := [][]uint64{
		{0, 1, 2, 3},
		{5, 4, 3, 2},
		{1, 1, 0, 5},
	}

	enc, err := NewEncoder(base, Width16)
	require.NoError(t, err)
	for _, l := range layers {
		require.NoError(t, enc.Add(mustGrid(t, 2, 2, l)))
	}

	combined := enc.Values()
	for i := 0; i < 4; i++ {
		expected, err := Encode([]uint64{layers[0][i], layers[1][i], layers[2][i]}, base)
		require.NoError(t, err)
		assert.Equal(t, expected, combined.Data[i], "pixel %d", i)
	}
}
