package encoding

import (
	"github.com/brendan-ward/datatiles/grid"
)

// Decoder pops layers back off a combined grid in reverse insertion order,
// one layer per call to Next. It is an explicit sequential state machine:
// partial consumption leaves a decoder that continues correctly for the
// remaining suffix.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	remaining *grid.Grid
	base      uint64
	size      int
}

// NewDecoder returns a Decoder over a copy of combined, expecting the
// exact (size, base) pair used at encode time. A mismatched pair yields
// wrong values rather than an error; prefer NewDecoderConfig with a
// persisted Config wherever one is available.
func NewDecoder(combined *grid.Grid, size int, base uint64) *Decoder {
	return &Decoder{
		remaining: combined.Clone(),
		base:      base,
		size:      size,
	}
}

// NewDecoderConfig returns a Decoder configured from the Config record
// persisted at encode time. The grid is checked against the recorded
// width so a record belonging to different data is rejected.
func NewDecoderConfig(combined *grid.Grid, cfg Config) (*Decoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if combined.Max() > cfg.Width.Max() {
		return nil, ErrConfigMismatch
	}
	return NewDecoder(combined, cfg.Size, cfg.Base), nil
}

// Remaining returns the number of layers left to pop.
func (d *Decoder) Remaining() int {
	return d.size
}

// Next pops the most recently encoded of the remaining layers. After the
// final layer it returns ErrExhausted.
func (d *Decoder) Next() (*grid.Grid, error) {
	if d.size == 0 {
		return nil, ErrExhausted
	}

	i := d.size - 1
	d.size--

	// The lowest-order layer is the residual itself.
	if i == 0 {
		g := d.remaining
		d.remaining = nil
		return g, nil
	}

	factor := pow(d.base, i)
	decoded := grid.New(d.remaining.W, d.remaining.H)
	for j, v := range d.remaining.Data {
		decoded.Data[j] = v / factor
		d.remaining.Data[j] = v % factor
	}

	return decoded, nil
}
