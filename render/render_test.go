package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brendan-ward/datatiles/grid"
)

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0xff, 0x80, 0x00, 0xff}, c)

	c, err = ParseColor("#10203040")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0x10, 0x20, 0x30, 0x40}, c)

	for _, s := range []string{"", "ff8000", "#ff80", "#gggggg"} {
		_, err := ParseColor(s)
		assert.Error(t, err, "%q", s)
	}
}

func TestParseCLUT(t *testing.T) {
	clut, err := ParseCLUT([]string{"#ff0000", "", "#0000ff"})
	require.NoError(t, err)
	require.Len(t, clut, 3)
	assert.NotNil(t, clut[0])
	assert.Nil(t, clut[1])
	assert.NotNil(t, clut[2])

	_, err = ParseCLUT([]string{"#ff0000", "bogus"})
	assert.Error(t, err)
}

func TestPaletted(t *testing.T) {
	g, err := grid.NewFromData(2, 2, []uint64{0, 1, 2, 9})
	require.NoError(t, err)

	clut, err := ParseCLUT([]string{"#ff0000", "#00ff00", "#0000ff"})
	require.NoError(t, err)

	m := Paletted(g, clut)
	assert.Equal(t, 2, m.Bounds().Dx())
	assert.Equal(t, 2, m.Bounds().Dy())

	// Index 0 is the transparent entry
	assert.Equal(t, color.NRGBA{}, m.Palette[0])

	assert.Equal(t, color.NRGBA{0xff, 0, 0, 0xff}, m.Palette[m.ColorIndexAt(0, 0)])
	assert.Equal(t, color.NRGBA{0, 0xff, 0, 0xff}, m.Palette[m.ColorIndexAt(1, 0)])
	assert.Equal(t, color.NRGBA{0, 0, 0xff, 0xff}, m.Palette[m.ColorIndexAt(0, 1)])

	// A value without a table entry renders transparent
	assert.Equal(t, uint8(0), m.ColorIndexAt(1, 1))
}

func TestPalettedSharedColors(t *testing.T) {
	g, err := grid.NewFromData(3, 1, []uint64{0, 1, 2})
	require.NoError(t, err)

	// Two values sharing a color share a palette entry
	clut, err := ParseCLUT([]string{"#ff0000", "#ff0000", "#0000ff"})
	require.NoError(t, err)

	m := Paletted(g, clut)
	assert.Len(t, m.Palette, 3)
	assert.Equal(t, m.ColorIndexAt(0, 0), m.ColorIndexAt(1, 0))
	assert.NotEqual(t, m.ColorIndexAt(0, 0), m.ColorIndexAt(2, 0))
}

func TestPalettedManyColors(t *testing.T) {
	// More distinct colors than a palette can carry forces the
	// quantize path; image.NewPaletted would panic past 256 entries
	clut := make(CLUT, 300)
	for i := range clut {
		clut[i] = color.NRGBA{uint8(i), uint8(i >> 8), 0, 0xff}
	}

	g, err := grid.NewFromData(3, 1, []uint64{0, 150, 299})
	require.NoError(t, err)

	m := Paletted(g, clut)
	assert.True(t, len(m.Palette) <= 256, "palette has %d entries", len(m.Palette))
	assert.Equal(t, color.NRGBA{}, m.Palette[0])

	// Every mapped value still renders a non-transparent color
	for x := 0; x < 3; x++ {
		assert.NotEqual(t, uint8(0), m.ColorIndexAt(x, 0), "pixel %d", x)
	}
}

func TestFromImage(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	m.Set(0, 0, color.NRGBA{0xff, 0, 0, 0xff})
	m.Set(1, 0, color.NRGBA{0xff, 0, 0, 0xff})
	m.Set(2, 0, color.NRGBA{0, 0xff, 0, 0xff})
	m.Set(3, 0, color.NRGBA{0, 0, 0xff, 0xff})

	clut := FromImage(m, 8)
	require.NotEmpty(t, clut)
	assert.True(t, len(clut) <= 8, "table has %d entries", len(clut))
	for i, c := range clut {
		assert.NotNil(t, c, "entry %d", i)
	}

	// The table renders directly
	g, err := grid.NewFromData(1, 1, []uint64{0})
	require.NoError(t, err)
	p := Paletted(g, clut)
	assert.NotEqual(t, uint8(0), p.ColorIndexAt(0, 0))

	// Out-of-range caps are clamped rather than erroring
	clut = FromImage(m, 0)
	assert.NotEmpty(t, clut)
	clut = FromImage(m, 1000)
	assert.True(t, len(clut) <= 255, "table has %d entries", len(clut))
}

func TestWritePNG(t *testing.T) {
	g, err := grid.NewFromData(2, 1, []uint64{0, 1})
	require.NoError(t, err)

	clut, err := ParseCLUT([]string{"#ff0000", "#00ff00"})
	require.NoError(t, err)

	b := new(bytes.Buffer)
	require.NoError(t, WritePNG(b, g, clut))

	m, err := png.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Bounds().Dx())

	r, _, _, a := m.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)
}
