package encoding

import "math"

// Width is a fixed-width unsigned integer representation, identified by its
// size in bits. It is plain data rather than a host type name so that the
// choice can be persisted and read back by any consumer.
type Width uint8

const (
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

// Valid reports whether w is one of the supported widths.
func (w Width) Valid() bool {
	switch w {
	case Width8, Width16, Width32, Width64:
		return true
	}
	return false
}

// Bytes returns the size of w in bytes.
func (w Width) Bytes() int {
	return int(w) >> 3
}

// Max returns the largest value representable at w.
func (w Width) Max() uint64 {
	if w == Width64 {
		return math.MaxUint64
	}
	return 1<<w - 1
}

// Nodata returns the reserved sentinel denoting "no valid encoded value",
// conventionally the largest representable value.
func (w Width) Nodata() uint64 {
	return w.Max()
}

func (w Width) String() string {
	switch w {
	case Width8:
		return "uint8"
	case Width16:
		return "uint16"
	case Width32:
		return "uint32"
	case Width64:
		return "uint64"
	}
	return "invalid"
}

// SelectWidth returns the smallest supported width whose capacity is at
// least max.
func SelectWidth(max uint64) Width {
	switch {
	case max <= math.MaxUint8:
		return Width8
	case max <= math.MaxUint16:
		return Width16
	case max <= math.MaxUint32:
		return Width32
	default:
		return Width64
	}
}

// SelectWidthFor returns the smallest supported width able to hold every
// combined value of size layers at the given base, along with that maximum
// combined value. It returns ErrRange when no supported width suffices.
func SelectWidthFor(base uint64, size int) (Width, uint64, error) {
	max, err := CombinedMax(base, size)
	if err != nil {
		return 0, 0, err
	}
	return SelectWidth(max), max, nil
}
