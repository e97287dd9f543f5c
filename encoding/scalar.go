package encoding

import "fmt"

// Encode combines an ordered list of values into a single integer, with
// each value weighted by base^position. Every value must lie in [0, base).
//
// This path suits small metadata computations and validation; use an
// Encoder to combine whole layers.
func Encode(values []uint64, base uint64) (uint64, error) {
	if len(values) == 0 {
		return 0, ErrInvalidInput
	}
	if base <= 1 {
		return 0, ErrInvalidBase
	}
	// Proving base^len(values)-1 representable up front keeps the loop
	// below free of overflow.
	if _, err := CombinedMax(base, len(values)); err != nil {
		return 0, err
	}

	var encoded uint64
	factor := uint64(1)
	for i, v := range values {
		if v >= base {
			return 0, fmt.Errorf("%w: %d at position %d, base %d", ErrValueTooLarge, v, i, base)
		}
		encoded += v * factor
		if i < len(values)-1 {
			factor *= base
		}
	}

	return encoded, nil
}

// Decode recovers the size values previously combined by Encode with the
// same base. The caller must supply the exact (base, size) pair used to
// encode; a mismatch yields wrong values rather than an error.
func Decode(encoded, base uint64, size int) ([]uint64, error) {
	if size < 1 {
		return nil, ErrInvalidInput
	}
	if base <= 1 {
		return nil, ErrInvalidBase
	}
	if _, err := CombinedMax(base, size); err != nil {
		return nil, err
	}

	values := make([]uint64, size)
	// Peel off digits from the most significant position down; the final
	// position is the residual and needs no division.
	for i := size - 1; i > 0; i-- {
		factor := pow(base, i)
		values[i] = encoded / factor
		encoded %= factor
	}
	values[0] = encoded

	return values, nil
}
