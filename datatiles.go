/*
Package datatiles packs several co-registered data layers into single-band
tiles and recovers them again.

Raw layers are first remapped into a dense index space, then combined with
the positional codec in package encoding, one digit per layer, and written
to an MBTiles-flavoured container along with the codec configuration
needed to decode them.
*/
package datatiles

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/brendan-ward/datatiles/store"
)

// Pipeline drives encoding and decoding of tiles against a container.
type Pipeline struct {
	store  *store.Store
	logger logrus.FieldLogger
}

// New returns a Pipeline writing to and reading from st. A nil logger
// discards all progress output.
func New(st *store.Store, logger logrus.FieldLogger) *Pipeline {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Pipeline{
		store:  st,
		logger: logger,
	}
}
