package encoding

import (
	"fmt"

	"github.com/brendan-ward/datatiles/grid"
)

// Encoder accumulates 2D layers one at a time into a single combined grid,
// without needing the final layer count up front. Layers are pushed in
// caller order and must later be popped off a Decoder in reverse.
//
// An Encoder is not safe for concurrent use; encode independent tiles with
// independent Encoder instances.
type Encoder struct {
	base     uint64
	width    Width
	combined *grid.Grid
	factor   uint64 // base^index
	max      uint64 // largest combinable value so far
	index    int
}

// NewEncoder returns an Encoder combining layers at the given base into
// values of the given width.
func NewEncoder(base uint64, width Width) (*Encoder, error) {
	if base <= 1 {
		return nil, ErrInvalidBase
	}
	if !width.Valid() {
		return nil, fmt.Errorf("%w: width %d", ErrRange, width)
	}
	if base-1 > width.Max() {
		return nil, fmt.Errorf("%w: base %d exceeds %s", ErrRange, base, width)
	}
	return &Encoder{
		base:   base,
		width:  width,
		factor: 1,
	}, nil
}

// Add accumulates the next layer into the combined grid. The first layer
// establishes the shape; subsequent layers must match it. Every value must
// lie in [0, base) and the combined range must stay within the configured
// width; an out-of-range layer fails fast rather than silently corrupting
// the encoding.
func (e *Encoder) Add(layer *grid.Grid) error {
	if e.index > 0 && !layer.SameShape(e.combined) {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrShapeMismatch,
			layer.W, layer.H, e.combined.W, e.combined.H)
	}

	// Validate before touching any state so a rejected layer leaves the
	// encoder usable.
	for i, v := range layer.Data {
		if v >= e.base {
			return fmt.Errorf("%w: %d at pixel %d, base %d", ErrValueTooLarge, v, i, e.base)
		}
	}
	if e.max > (e.width.Max()-(e.base-1))/e.base {
		return fmt.Errorf("%w: %d layers at base %d exceed %s", ErrRange,
			e.index+1, e.base, e.width)
	}
	e.max = e.max*e.base + e.base - 1

	if e.index == 0 {
		e.combined = layer.Clone()
	} else {
		for i, v := range layer.Data {
			e.combined.Data[i] += v * e.factor
		}
	}

	e.factor *= e.base
	e.index++

	return nil
}

// Layers returns the number of layers added so far.
func (e *Encoder) Layers() int {
	return e.index
}

// Values returns a copy of the current combined grid, reflecting every
// layer added so far, or nil before the first Add. Callers cannot mutate
// encoder state through the returned grid.
func (e *Encoder) Values() *grid.Grid {
	if e.combined == nil {
		return nil
	}
	return e.combined.Clone()
}

// Config returns the record a decoder needs to recover the added layers.
// Per-layer metadata is filled in by the caller that produced the layers.
func (e *Encoder) Config() Config {
	return Config{
		Base:   e.base,
		Size:   e.index,
		Width:  e.width,
		Nodata: e.width.Nodata(),
	}
}
