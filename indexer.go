package datatiles

import (
	"sort"

	"github.com/brendan-ward/datatiles/encoding"
	"github.com/brendan-ward/datatiles/grid"
)

// IndexedLayer is a raw layer remapped into dense index space: the i'th
// smallest distinct raw value among valid pixels becomes value i. The
// Values slice records the inverse mapping. Invalid pixels hold zero in
// the indexed grid; they are replaced with the layer-local nodata slot
// once the encoding base is known.
type IndexedLayer struct {
	Name   string
	Grid   *grid.Grid
	Mask   *grid.Mask
	Values []uint64
}

// Cardinality returns the number of distinct raw values in the layer.
func (l *IndexedLayer) Cardinality() uint64 {
	return uint64(len(l.Values))
}

// IndexLayer remaps raw into index space. A nil mask treats every pixel
// as valid.
func IndexLayer(name string, raw *grid.Grid, valid *grid.Mask) *IndexedLayer {
	if valid == nil {
		valid = grid.NewMask(raw.W, raw.H)
	}

	distinct := make(map[uint64]struct{})
	for i, v := range raw.Data {
		if valid.Valid[i] {
			distinct[v] = struct{}{}
		}
	}

	values := make([]uint64, 0, len(distinct))
	for v := range distinct {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	indices := make(map[uint64]uint64, len(values))
	for i, v := range values {
		indices[v] = uint64(i)
	}

	indexed := grid.New(raw.W, raw.H)
	for i, v := range raw.Data {
		if valid.Valid[i] {
			indexed.Data[i] = indices[v]
		}
	}

	return &IndexedLayer{
		Name:   name,
		Grid:   indexed,
		Mask:   valid.Clone(),
		Values: values,
	}
}

// RestoreLayer is the inverse of IndexLayer: it maps a decoded layer grid
// back to raw values using the persisted per-layer metadata. Pixels
// holding the layer-local nodata value, or an index with no raw value,
// come back invalid.
func RestoreLayer(g *grid.Grid, meta encoding.Layer) (*grid.Grid, *grid.Mask) {
	raw := grid.New(g.W, g.H)
	valid := grid.NewMask(g.W, g.H)

	for i, v := range g.Data {
		if v == meta.Nodata || v >= uint64(len(meta.Values)) {
			valid.Valid[i] = false
			continue
		}
		raw.Data[i] = meta.Values[v]
	}

	return raw, valid
}

// Sizing derives the codec configuration for a set of layers: the base is
// one more than the largest cardinality, leaving the top slot of every
// layer's value space free as its nodata marker, and the width is the
// smallest able to hold the combined range.
func Sizing(layers []*IndexedLayer) (encoding.Config, error) {
	if len(layers) == 0 {
		return encoding.Config{}, encoding.ErrInvalidInput
	}

	var maxCardinality uint64
	for _, l := range layers {
		if c := l.Cardinality(); c > maxCardinality {
			maxCardinality = c
		}
	}

	base := maxCardinality + 1
	width, _, err := encoding.SelectWidthFor(base, len(layers))
	if err != nil {
		return encoding.Config{}, err
	}

	cfg := encoding.Config{
		Base:   base,
		Size:   len(layers),
		Width:  width,
		Nodata: width.Nodata(),
	}
	for _, l := range layers {
		cfg.Layers = append(cfg.Layers, encoding.Layer{
			Name:   l.Name,
			Nodata: base - 1,
			Values: l.Values,
		})
	}

	return cfg, cfg.Validate()
}

// EncodeLayers combines the layers into a single grid using the sizing in
// cfg. Layers are pushed in slice order; invalid pixels carry the
// layer-local nodata slot, and pixels invalid in any layer are
// overwritten with the wide nodata sentinel afterwards.
func EncodeLayers(layers []*IndexedLayer, cfg encoding.Config) (*grid.Grid, error) {
	enc, err := encoding.NewEncoder(cfg.Base, cfg.Width)
	if err != nil {
		return nil, err
	}

	var combined *grid.Mask
	for _, l := range layers {
		g := l.Grid.Clone()
		g.FillInvalid(l.Mask, cfg.Base-1)
		if err := enc.Add(g); err != nil {
			return nil, err
		}

		if combined == nil {
			combined = l.Mask.Clone()
		} else {
			combined.And(l.Mask)
		}
	}

	out := enc.Values()
	out.FillInvalid(combined, cfg.Nodata)

	return out, nil
}
