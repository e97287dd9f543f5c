package datatiles

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/brendan-ward/datatiles/encoding"
	"github.com/brendan-ward/datatiles/grid"
)

const (
	defaultTileSize = 256
	defaultWorkers  = 4
)

// Options controls how Encode cuts and encodes tiles.
type Options struct {
	// Zoom is the zoom level tiles are stored under.
	Zoom int
	// TileSize is the width and height of each tile in pixels.
	TileSize int
	// Workers is the number of concurrent tile encoders; each worker owns
	// its own encoder instance.
	Workers int
}

func (o Options) withDefaults() Options {
	if o.TileSize <= 0 {
		o.TileSize = defaultTileSize
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	return o
}

type tileKey struct {
	z, x, y int
}

type encodedTile struct {
	key      tileKey
	combined *grid.Grid
}

func (p *Pipeline) findTiles(ctx context.Context, shape *grid.Grid, opts Options) (<-chan tileKey, <-chan error, error) {
	out := make(chan tileKey)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		cols := (shape.W + opts.TileSize - 1) / opts.TileSize
		rows := (shape.H + opts.TileSize - 1) / opts.TileSize
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				select {
				case out <- tileKey{opts.Zoom, x, y}:
				case <-ctx.Done():
					errc <- errors.New("encode cancelled")
					return
				}
			}
		}
	}()
	return out, errc, nil
}

func (p *Pipeline) tileWorker(ctx context.Context, wg *sync.WaitGroup, layers []*IndexedLayer, cfg encoding.Config, opts Options, in <-chan tileKey, out chan<- encodedTile) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer wg.Done()
		for key := range in {
			window := make([]*IndexedLayer, len(layers))
			for i, l := range layers {
				window[i] = &IndexedLayer{
					Name:   l.Name,
					Grid:   l.Grid.Window(key.x*opts.TileSize, key.y*opts.TileSize, opts.TileSize, opts.TileSize),
					Mask:   l.Mask.Window(key.x*opts.TileSize, key.y*opts.TileSize, opts.TileSize, opts.TileSize),
					Values: l.Values,
				}
			}

			combined, err := EncodeLayers(window, cfg)
			if err != nil {
				errc <- err
				return
			}

			select {
			case out <- encodedTile{key, combined}:
			case <-ctx.Done():
				errc <- errors.New("encode cancelled")
				return
			}
		}
	}()
	return errc, nil
}

func (p *Pipeline) tileWriter(cfg encoding.Config, in <-chan encodedTile) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		var written int
		var failed bool
		// Keep draining after a failure so the workers never block.
		for t := range in {
			if failed {
				continue
			}
			if err := p.store.WriteTile(t.key.z, t.key.x, t.key.y, t.combined, cfg.Width); err != nil {
				errc <- err
				failed = true
				continue
			}
			written++
			p.logger.WithFields(logrus.Fields{
				"zoom": t.key.z,
				"x":    t.key.x,
				"y":    t.key.y,
			}).Debug("wrote tile")
		}
		p.logger.WithField("tiles", written).Info("encode complete")
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Encode cuts the layers into tiles, combines each tile with the
// positional codec and writes the result to the container along with the
// codec config. All layers must share a shape; tiles are encoded
// concurrently, one encoder instance per worker.
func (p *Pipeline) Encode(layers []*IndexedLayer, opts Options) error {
	opts = opts.withDefaults()

	if len(layers) == 0 {
		return encoding.ErrInvalidInput
	}
	for _, l := range layers[1:] {
		if !l.Grid.SameShape(layers[0].Grid) {
			return encoding.ErrShapeMismatch
		}
	}

	cfg, err := Sizing(layers)
	if err != nil {
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"layers": cfg.Size,
		"base":   cfg.Base,
		"width":  cfg.Width.String(),
	}).Info("encoding layers")

	if err := p.store.WriteConfig(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var errcList []<-chan error

	keys, errc, err := p.findTiles(ctx, layers[0].Grid, opts)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	encoded := make(chan encodedTile)
	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		errc, err := p.tileWorker(ctx, &wg, layers, cfg, opts, keys, encoded)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}
	go func() {
		wg.Wait()
		close(encoded)
	}()

	errc, err = p.tileWriter(cfg, encoded)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	return waitForPipeline(errcList...)
}

// DecodeTile pops every layer back off the stored tile at z/x/y and
// returns them in their original insertion order, together with the
// persisted config.
func (p *Pipeline) DecodeTile(z, x, y int) ([]*grid.Grid, encoding.Config, error) {
	cfg, err := p.store.ReadConfig()
	if err != nil {
		return nil, cfg, err
	}

	dec, err := p.store.Decoder(z, x, y)
	if err != nil {
		return nil, cfg, err
	}

	layers := make([]*grid.Grid, cfg.Size)
	for i := cfg.Size - 1; i >= 0; i-- {
		layers[i], err = dec.Next()
		if err != nil {
			return nil, cfg, err
		}
	}

	return layers, cfg, nil
}
