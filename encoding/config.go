package encoding

// Layer is the per-layer metadata recorded alongside an encoding: the
// layer-local nodata value (the reserved top slot, base-1) and the mapping
// from index space back to the original raw values, where index i held
// Values[i].
type Layer struct {
	Name   string   `json:"name,omitempty"`
	Nodata uint64   `json:"nodata"`
	Values []uint64 `json:"values,omitempty"`
}

// Config is the typed record that must be persisted alongside a combined
// grid for it to be decodable: the combined grid is not self-describing.
// Decoding with any other (base, size) pair silently yields wrong values,
// which is why stored tiles are only decoded through a persisted Config.
type Config struct {
	Base   uint64  `json:"base"`
	Size   int     `json:"size"`
	Width  Width   `json:"width"`
	Nodata uint64  `json:"nodata"`
	Layers []Layer `json:"layers,omitempty"`
}

// Validate checks the record is internally consistent: a usable base and
// size, a supported width wide enough for base^size-1, a sentinel equal to
// the width's reserved value and per-layer metadata, when present, for
// exactly size layers.
func (c Config) Validate() error {
	if c.Size < 1 {
		return ErrInvalidInput
	}
	if c.Base <= 1 {
		return ErrInvalidBase
	}
	if !c.Width.Valid() {
		return ErrRange
	}
	max, err := CombinedMax(c.Base, c.Size)
	if err != nil {
		return err
	}
	if max > c.Width.Max() {
		return ErrRange
	}
	if c.Nodata != c.Width.Nodata() {
		return ErrConfigMismatch
	}
	if c.Layers != nil && len(c.Layers) != c.Size {
		return ErrConfigMismatch
	}
	return nil
}
