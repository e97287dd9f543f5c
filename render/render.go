/*
Package render turns decoded data grids into paletted PNG images.

A color lookup table assigns one color per layer value; values without an
entry, including the layer-local nodata slot, render transparent. Palette
index 0 is always the transparent entry.
*/
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/ericpauley/go-quantize/quantize"

	"github.com/brendan-ward/datatiles/grid"
)

const paletteSize = 256

var errBadColor = errors.New("render: invalid hex color")

// CLUT is a color lookup table indexed by layer value: a value v renders
// as the color at position v. A nil entry, or a value beyond the end of
// the table, renders transparent.
type CLUT []color.Color

// ParseColor parses a "#rrggbb" or "#rrggbbaa" hex color.
func ParseColor(s string) (color.Color, error) {
	if len(s) == 0 || s[0] != '#' {
		return nil, fmt.Errorf("%w: %q", errBadColor, s)
	}

	var c color.NRGBA
	c.A = 0xff
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 9:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	default:
		err = errBadColor
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q", errBadColor, s)
	}
	return c, nil
}

// ParseCLUT builds a CLUT from hex colors, one per layer value starting
// at zero. Empty strings leave transparent entries.
func ParseCLUT(colors []string) (CLUT, error) {
	clut := make(CLUT, len(colors))
	for i, s := range colors {
		if s == "" {
			continue
		}
		c, err := ParseColor(s)
		if err != nil {
			return nil, err
		}
		clut[i] = c
	}
	return clut, nil
}

func uniqueColors(clut CLUT) []color.Color {
	seen := make(map[color.Color]struct{})
	var colors []color.Color
	for _, c := range clut {
		if c == nil {
			continue
		}
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			colors = append(colors, c)
		}
	}
	return colors
}

// FromImage builds a lookup table by median-cut quantization of an
// arbitrary image: layer value i maps to the i'th of at most maxColors
// quantized colors. maxColors is capped so the resulting table always
// renders alongside the transparent palette entry.
func FromImage(m image.Image, maxColors int) CLUT {
	if maxColors < 1 || maxColors > paletteSize-1 {
		maxColors = paletteSize - 1
	}
	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, maxColors), m)

	clut := make(CLUT, len(p))
	for i, c := range p {
		clut[i] = c
	}
	return clut
}

// reduce quantizes an oversized set of lookup colors down to a palette
// that fits alongside the transparent entry.
func reduce(colors []color.Color) color.Palette {
	m := image.NewNRGBA(image.Rect(0, 0, len(colors), 1))
	for i, c := range colors {
		m.Set(i, 0, c)
	}
	q := quantize.MedianCutQuantizer{}
	return q.Quantize(make(color.Palette, 0, paletteSize-1), m)
}

// Paletted renders g as an indexed image through clut. When the table
// holds more distinct colors than a palette can carry they are reduced by
// median-cut quantization.
func Paletted(g *grid.Grid, clut CLUT) *image.Paletted {
	colors := uniqueColors(clut)

	var sub color.Palette
	if len(colors) <= paletteSize-1 {
		sub = color.Palette(colors)
	} else {
		sub = reduce(colors)
	}

	palette := make(color.Palette, 0, len(sub)+1)
	palette = append(palette, color.NRGBA{})
	palette = append(palette, sub...)

	// Resolve each table entry once; pixels then map through this index.
	indices := make(map[uint64]uint8, len(clut))
	for v, c := range clut {
		if c != nil {
			indices[uint64(v)] = uint8(sub.Index(c)) + 1
		}
	}

	m := image.NewPaletted(image.Rect(0, 0, g.W, g.H), palette)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			m.SetColorIndex(x, y, indices[g.At(x, y)])
		}
	}

	return m
}

// WritePNG renders g through clut and writes it to w as a PNG.
func WritePNG(w io.Writer, g *grid.Grid, clut CLUT) error {
	return png.Encode(w, Paletted(g, clut))
}
