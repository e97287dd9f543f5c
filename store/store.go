/*
Package store implements an MBTiles-flavoured SQLite container for encoded
tiles. Combined grids are stored gzip-compressed under their z/x/y key and
the codec configuration is persisted in the metadata table, so a stored
tile can only ever be decoded with the exact (base, size) pair that was
used to encode it.
*/
package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	_ "github.com/mattn/go-sqlite3"

	"github.com/brendan-ward/datatiles/encoding"
	"github.com/brendan-ward/datatiles/grid"
)

const configName = "datatiles.config"

var (
	// ErrTileNotFound is returned when no tile exists at the given key.
	ErrTileNotFound = errors.New("store: tile not found")
	// ErrNoConfig is returned when the container holds no codec config.
	ErrNoConfig = errors.New("store: no codec config stored")
)

// Store is an open tile container.
type Store struct {
	db *sql.DB
}

// New opens the container at file, creating it and its schema if needed.
func New(file string) (*Store, error) {
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS metadata (name TEXT NOT NULL UNIQUE, value TEXT NOT NULL)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS tiles (zoom_level INTEGER NOT NULL, tile_column INTEGER NOT NULL, tile_row INTEGER NOT NULL, tile_data BLOB NOT NULL)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS tile_index ON tiles (zoom_level, tile_column, tile_row)"); err != nil {
		return nil, err
	}

	return &Store{
		db: db,
	}, nil
}

// Close closes the container.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetMetadata stores a name/value pair, replacing any previous value.
func (s *Store) SetMetadata(name, value string) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)", name, value)
	return err
}

// Metadata returns the value stored under name, or an empty string when
// there is none.
func (s *Store) Metadata(name string) (string, error) {
	var value string
	switch err := s.db.QueryRow("SELECT value FROM metadata WHERE name = ?", name).Scan(&value); err {
	case sql.ErrNoRows:
		return "", nil
	case nil:
		return value, nil
	default:
		return "", err
	}
}

// WriteConfig persists the codec config the container's tiles were
// encoded with.
func (s *Store) WriteConfig(cfg encoding.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.SetMetadata(configName, string(b))
}

// ReadConfig returns the persisted codec config.
func (s *Store) ReadConfig() (encoding.Config, error) {
	var cfg encoding.Config

	value, err := s.Metadata(configName)
	if err != nil {
		return cfg, err
	}
	if value == "" {
		return cfg, ErrNoConfig
	}

	if err := json.Unmarshal([]byte(value), &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// WriteTile stores the combined grid g at z/x/y, serialized at width w and
// gzip-compressed, replacing any previous tile at that key.
func (s *Store) WriteTile(z, x, y int, g *grid.Grid, w encoding.Width) error {
	blob, err := encoding.MarshalGrid(g, w)
	if err != nil {
		return err
	}

	b := new(bytes.Buffer)
	zw := gzip.NewWriter(b)
	if _, err := zw.Write(blob); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	_, err = s.db.Exec("INSERT OR REPLACE INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)",
		z, x, y, b.Bytes())
	return err
}

// ReadTile returns the combined grid stored at z/x/y and the width it was
// serialized at.
func (s *Store) ReadTile(z, x, y int) (*grid.Grid, encoding.Width, error) {
	var blob []byte
	switch err := s.db.QueryRow("SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?",
		z, x, y).Scan(&blob); err {
	case sql.ErrNoRows:
		return nil, 0, fmt.Errorf("%w: %d/%d/%d", ErrTileNotFound, z, x, y)
	case nil:
	default:
		return nil, 0, err
	}

	zr, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, 0, err
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, 0, err
	}

	return encoding.UnmarshalGrid(raw)
}

// Count returns the number of stored tiles.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM tiles").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Decoder returns a layer decoder for the tile at z/x/y, configured from
// the persisted codec config. This is the only decode entry point for
// stored tiles; an ad hoc (base, size) pair is never accepted.
func (s *Store) Decoder(z, x, y int) (*encoding.Decoder, error) {
	cfg, err := s.ReadConfig()
	if err != nil {
		return nil, err
	}

	g, w, err := s.ReadTile(z, x, y)
	if err != nil {
		return nil, err
	}
	if w != cfg.Width {
		return nil, encoding.ErrConfigMismatch
	}

	return encoding.NewDecoderConfig(g, cfg)
}
