/*
Package encoding implements the positional (mixed-radix) codec used to pack
several co-registered data layers into a single array of wider integers.

Each layer contributes one digit, weighted by base^index, to the combined
value at every pixel. Provided every layer value is strictly less than the
base, the combined value is a bijection with the tuple of layer values and
the layers can be recovered exactly by repeated division. Layers are pushed
onto an Encoder in a fixed order and popped off a Decoder in reverse order.
*/
package encoding

import (
	"errors"
	"math"
)

var (
	// ErrInvalidInput is returned when there are no values to encode or
	// decode.
	ErrInvalidInput = errors.New("encoding: values must be non-empty")
	// ErrInvalidBase is returned for a base that cannot carry any digit.
	ErrInvalidBase = errors.New("encoding: base must be greater than 1")
	// ErrValueTooLarge is returned when a value does not fit in [0, base).
	ErrValueTooLarge = errors.New("encoding: value out of range for base")
	// ErrShapeMismatch is returned when a layer does not match the shape
	// established by the first layer added to an Encoder.
	ErrShapeMismatch = errors.New("encoding: all layers must be the same shape")
	// ErrRange is returned when the combined value range exceeds the
	// largest supported width.
	ErrRange = errors.New("encoding: combined value range exceeds supported width")
	// ErrExhausted is returned by Decoder.Next once every layer has been
	// popped.
	ErrExhausted = errors.New("encoding: no layers remaining")
	// ErrConfigMismatch is returned when a Config disagrees with the
	// encoded data it is presented with.
	ErrConfigMismatch = errors.New("encoding: config does not match encoded data")
)

// CombinedMax returns base^size - 1, the largest value size layers can
// combine to, or ErrRange if that value does not fit in 64 bits.
func CombinedMax(base uint64, size int) (uint64, error) {
	if size < 1 {
		return 0, ErrInvalidInput
	}
	if base <= 1 {
		return 0, ErrInvalidBase
	}
	var max uint64
	for i := 0; i < size; i++ {
		if max > (math.MaxUint64-(base-1))/base {
			return 0, ErrRange
		}
		max = max*base + base - 1
	}
	return max, nil
}

// pow returns base^exp. Callers are expected to have bounded exp via
// CombinedMax; overflow wraps silently otherwise.
func pow(base uint64, exp int) uint64 {
	f := uint64(1)
	for i := 0; i < exp; i++ {
		f *= base
	}
	return f
}
