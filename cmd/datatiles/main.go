package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/brendan-ward/datatiles"
	"github.com/brendan-ward/datatiles/encoding"
	"github.com/brendan-ward/datatiles/grid"
	"github.com/brendan-ward/datatiles/render"
	"github.com/brendan-ward/datatiles/store"
)

const defaultStore = "datatiles.mbtiles"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if c.Bool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func readLayer(file string) (*grid.Grid, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	g, _, err := encoding.UnmarshalGrid(b)
	return g, err
}

// writeLayer marshals g at the narrowest width that fits its values. Pixels
// marked invalid in valid are written as the chosen width's nodata sentinel,
// widening one step if the data already uses the sentinel value.
func writeLayer(file string, g *grid.Grid, valid *grid.Mask) error {
	w := encoding.SelectWidth(g.Max())
	if valid != nil && valid.CountValid() < len(valid.Valid) {
		if g.Max() == w.Max() && w != encoding.Width64 {
			w = encoding.SelectWidth(w.Max() + 1)
		}
		g = g.Clone()
		g.FillInvalid(valid, w.Nodata())
	}
	b, err := encoding.MarshalGrid(g, w)
	if err != nil {
		return err
	}
	return os.WriteFile(file, b, 0644)
}

func tileArgs(c *cli.Context, offset int) (z, x, y int, err error) {
	for i, out := range []*int{&z, &x, &y} {
		if *out, err = strconv.Atoi(c.Args().Get(offset + i)); err != nil {
			return 0, 0, 0, fmt.Errorf("expected numeric z x y arguments: %v", err)
		}
	}
	return
}

func main() {
	app := cli.NewApp()

	app.Name = "datatiles"
	app.Usage = "Pack co-registered data layers into single-band tiles"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		logrus.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "store",
			EnvVars: []string{"DATATILES_STORE"},
			Value:   filepath.Join(cwd, defaultStore),
			Usage:   "path to tile container",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "encode",
			Usage:       "Encode layer grid files into tiles",
			Description: "Layers are pushed in argument order and popped off in reverse when decoding.",
			ArgsUsage:   "FILE [FILE...]",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "zoom",
					Usage: "zoom level to store tiles under",
				},
				&cli.IntFlag{
					Name:  "tile-size",
					Value: 256,
					Usage: "tile width and height in pixels",
				},
				&cli.IntFlag{
					Name:  "workers",
					Value: 4,
					Usage: "concurrent tile encoders",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				st, err := store.New(c.String("store"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer st.Close()

				var layers []*datatiles.IndexedLayer
				for i := 0; i < c.NArg(); i++ {
					file := c.Args().Get(i)
					g, err := readLayer(file)
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
					layers = append(layers, datatiles.IndexLayer(name, g, nil))
				}

				p := datatiles.New(st, newLogger(c))
				if err := p.Encode(layers, datatiles.Options{
					Zoom:     c.Int("zoom"),
					TileSize: c.Int("tile-size"),
					Workers:  c.Int("workers"),
				}); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "decode",
			Usage:       "Decode a stored tile back into layer grid files",
			Description: "Layers are written in their original insertion order, mapped back to raw values. Nodata pixels carry the written width's top value.",
			ArgsUsage:   "Z X Y DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 4 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				z, x, y, err := tileArgs(c, 0)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				dir := c.Args().Get(3)

				st, err := store.New(c.String("store"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer st.Close()

				p := datatiles.New(st, newLogger(c))
				layers, cfg, err := p.DecodeTile(z, x, y)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for i, g := range layers {
					name := fmt.Sprintf("layer_%d", i)
					var valid *grid.Mask
					if cfg.Layers != nil {
						g, valid = datatiles.RestoreLayer(g, cfg.Layers[i])
						if cfg.Layers[i].Name != "" {
							name = cfg.Layers[i].Name
						}
					}
					if err := writeLayer(filepath.Join(dir, name+".dtg"), g, valid); err != nil {
						return cli.NewExitError(err, 1)
					}
				}

				return nil
			},
		},
		{
			Name:        "render",
			Usage:       "Render one layer of a stored tile as a paletted PNG",
			ArgsUsage:   "Z X Y LAYER FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "colors",
					Usage: "comma-separated #rrggbb colors, one per layer value",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 5 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				z, x, y, err := tileArgs(c, 0)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				layer, err := strconv.Atoi(c.Args().Get(3))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				clut, err := render.ParseCLUT(strings.Split(c.String("colors"), ","))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				st, err := store.New(c.String("store"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer st.Close()

				p := datatiles.New(st, newLogger(c))
				layers, _, err := p.DecodeTile(z, x, y)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				if layer < 0 || layer >= len(layers) {
					return cli.NewExitError(fmt.Errorf("no layer %d in tile", layer), 1)
				}

				f, err := os.Create(c.Args().Get(4))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				if err := render.WritePNG(f, layers[layer], clut); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "info",
			Usage:     "Print the codec config stored in a tile container",
			ArgsUsage: " ",
			Action: func(c *cli.Context) error {
				st, err := store.New(c.String("store"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer st.Close()

				cfg, err := st.ReadConfig()
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				b, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				fmt.Println(string(b))

				count, err := st.Count()
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				fmt.Printf("%d tiles\n", count)

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
