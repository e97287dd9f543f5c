package encoding

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/brendan-ward/datatiles/grid"
)

// Combined grids are serialized as a small little-endian header followed
// by one fixed-width value per pixel in row-major order.
const gridMagic = uint32(0x31475444) // "DTG1"

var (
	errBadMagic = errors.New("encoding: not a serialized grid")
	errBadShape = errors.New("encoding: serialized grid has inconsistent shape")
)

// MarshalGrid encodes g into binary form at width w. Every value must be
// representable at w.
func MarshalGrid(g *grid.Grid, w Width) ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("%w: width %d", ErrRange, w)
	}
	if max := g.Max(); max > w.Max() {
		return nil, fmt.Errorf("%w: %d does not fit %s", ErrRange, max, w)
	}

	b := new(bytes.Buffer)
	for _, v := range []interface{}{gridMagic, uint8(w), uint8(0), uint16(0), uint32(g.W), uint32(g.H)} {
		if err := binary.Write(b, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}

	var err error
	switch w {
	case Width8:
		out := make([]uint8, len(g.Data))
		for i, v := range g.Data {
			out[i] = uint8(v)
		}
		err = binary.Write(b, binary.LittleEndian, out)
	case Width16:
		out := make([]uint16, len(g.Data))
		for i, v := range g.Data {
			out[i] = uint16(v)
		}
		err = binary.Write(b, binary.LittleEndian, out)
	case Width32:
		out := make([]uint32, len(g.Data))
		for i, v := range g.Data {
			out[i] = uint32(v)
		}
		err = binary.Write(b, binary.LittleEndian, out)
	case Width64:
		err = binary.Write(b, binary.LittleEndian, g.Data)
	}
	if err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// UnmarshalGrid decodes a grid serialized by MarshalGrid, returning the
// grid and the width it was stored at.
func UnmarshalGrid(data []byte) (*grid.Grid, Width, error) {
	r := bytes.NewReader(data)

	var header struct {
		Magic    uint32
		Width    uint8
		Reserved uint8
		Pad      uint16
		W, H     uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, 0, errBadMagic
	}
	if header.Magic != gridMagic {
		return nil, 0, errBadMagic
	}
	w := Width(header.Width)
	if !w.Valid() {
		return nil, 0, errBadMagic
	}

	n := int(header.W) * int(header.H)
	if r.Len() != n*w.Bytes() {
		return nil, 0, errBadShape
	}

	g := grid.New(int(header.W), int(header.H))
	var err error
	switch w {
	case Width8:
		in := make([]uint8, n)
		if err = binary.Read(r, binary.LittleEndian, in); err == nil {
			for i, v := range in {
				g.Data[i] = uint64(v)
			}
		}
	case Width16:
		in := make([]uint16, n)
		if err = binary.Read(r, binary.LittleEndian, in); err == nil {
			for i, v := range in {
				g.Data[i] = uint64(v)
			}
		}
	case Width32:
		in := make([]uint32, n)
		if err = binary.Read(r, binary.LittleEndian, in); err == nil {
			for i, v := range in {
				g.Data[i] = uint64(v)
			}
		}
	case Width64:
		err = binary.Read(r, binary.LittleEndian, g.Data)
	}
	if err != nil {
		return nil, 0, err
	}

	return g, w, nil
}
