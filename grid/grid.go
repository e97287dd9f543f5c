/*
Package grid implements the 2D integer arrays the datatiles codec operates
on. A Grid stores one unsigned value per pixel in row-major order; a Mask
records which pixels hold valid data.
*/
package grid

import "errors"

var errShortData = errors.New("grid: data length does not match shape")

// Grid is a 2D array of unsigned integer values in row-major order.
type Grid struct {
	W, H int
	Data []uint64
}

// New returns a zero-filled Grid of the given dimensions.
func New(w, h int) *Grid {
	return &Grid{
		W:    w,
		H:    h,
		Data: make([]uint64, w*h),
	}
}

// NewFromData wraps an existing row-major slice. The slice is not copied.
func NewFromData(w, h int, data []uint64) (*Grid, error) {
	if len(data) != w*h {
		return nil, errShortData
	}
	return &Grid{
		W:    w,
		H:    h,
		Data: data,
	}, nil
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	dup := New(g.W, g.H)
	copy(dup.Data, g.Data)
	return dup
}

// At returns the value at (x, y).
func (g *Grid) At(x, y int) uint64 {
	return g.Data[y*g.W+x]
}

// Set stores v at (x, y).
func (g *Grid) Set(x, y int, v uint64) {
	g.Data[y*g.W+x] = v
}

// SameShape reports whether g and o have identical dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return g.W == o.W && g.H == o.H
}

// Equal reports whether g and o have identical shape and values.
func (g *Grid) Equal(o *Grid) bool {
	if !g.SameShape(o) {
		return false
	}
	for i, v := range g.Data {
		if o.Data[i] != v {
			return false
		}
	}
	return true
}

// Max returns the largest value in g, or zero for an empty grid.
func (g *Grid) Max() uint64 {
	var max uint64
	for _, v := range g.Data {
		if v > max {
			max = v
		}
	}
	return max
}

// FillInvalid overwrites every pixel m marks invalid with sentinel. A nil
// mask leaves g untouched.
func (g *Grid) FillInvalid(m *Mask, sentinel uint64) {
	if m == nil {
		return
	}
	for i, ok := range m.Valid {
		if !ok {
			g.Data[i] = sentinel
		}
	}
}
