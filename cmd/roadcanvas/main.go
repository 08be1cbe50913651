package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/carlmjohnson/versioninfo"
	"github.com/iancoleman/strcase"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	roadcanvas "github.com/twpayne/go-roadcanvas"
)

const (
	flagName     = "name"
	flagPreset   = "preset"
	flagNorth    = "north"
	flagSouth    = "south"
	flagEast     = "east"
	flagWest     = "west"
	flagNetwork  = "network"
	flagZoom     = "zoom"
	flagBasemap  = "basemap"
	flagTileURL  = "tile-url"
	flagOverpass = "overpass-url"
	flagOutDir   = "out-dir"
	flagMaxTiles = "max-tiles"
	flagMaxNodes = "max-nodes"
	flagMaxEdges = "max-edges"
	flagVerbose  = "verbose"
)

// presets are well-known city bounding boxes as north, south, east, west.
var presets = map[string][4]float64{
	"tokyo-tower":  {35.660, 35.657, 139.747, 139.743},
	"shibuya":      {35.663, 35.655, 139.704, 139.696},
	"kamakura":     {35.325, 35.315, 139.555, 139.545},
	"kyoto":        {34.991, 34.983, 135.765, 135.757},
	"osaka-castle": {34.691, 34.683, 135.531, 135.523},
}

func envVars(name string) []string {
	return []string{"ROADCANVAS_" + strcase.ToScreamingSnake(name)}
}

func main() {
	app := cli.NewApp()
	app.Name = "roadcanvas"
	app.Usage = "Fetch a road network for a bounding box and export it as CSV tables and canvas images"
	app.Version = versioninfo.Short()

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    flagName,
			Aliases: []string{"n"},
			Usage:   "Name used as the output file prefix",
			Value:   "area",
			EnvVars: envVars(flagName),
		},
		&cli.StringFlag{
			Name:    flagPreset,
			Usage:   "Preset bounding box: tokyo-tower, shibuya, kamakura, kyoto, or osaka-castle",
			EnvVars: envVars(flagPreset),
		},
		&cli.Float64Flag{
			Name:    flagNorth,
			Usage:   "North latitude in degrees",
			EnvVars: envVars(flagNorth),
		},
		&cli.Float64Flag{
			Name:    flagSouth,
			Usage:   "South latitude in degrees",
			EnvVars: envVars(flagSouth),
		},
		&cli.Float64Flag{
			Name:    flagEast,
			Usage:   "East longitude in degrees",
			EnvVars: envVars(flagEast),
		},
		&cli.Float64Flag{
			Name:    flagWest,
			Usage:   "West longitude in degrees",
			EnvVars: envVars(flagWest),
		},
		&cli.StringFlag{
			Name:    flagNetwork,
			Usage:   "Network type: drive, walk, bike, or all",
			Value:   string(roadcanvas.NetworkDrive),
			EnvVars: envVars(flagNetwork),
		},
		&cli.IntFlag{
			Name:    flagZoom,
			Usage:   "Basemap zoom level",
			Value:   16,
			EnvVars: envVars(flagZoom),
		},
		&cli.BoolFlag{
			Name:    flagBasemap,
			Usage:   "Also render an image over a basemap tile mosaic",
			EnvVars: envVars(flagBasemap),
		},
		&cli.StringFlag{
			Name:    flagTileURL,
			Usage:   "Basemap tile URL template with {z}, {x}, and {y} placeholders",
			Value:   roadcanvas.DefaultTileURLTemplate,
			EnvVars: envVars(flagTileURL),
		},
		&cli.StringFlag{
			Name:    flagOverpass,
			Usage:   "Overpass API endpoint",
			Value:   roadcanvas.DefaultOverpassEndpoint,
			EnvVars: envVars(flagOverpass),
		},
		&cli.StringFlag{
			Name:    flagOutDir,
			Aliases: []string{"o"},
			Usage:   "Output directory",
			Value:   ".",
			EnvVars: envVars(flagOutDir),
		},
		&cli.IntFlag{
			Name:    flagMaxTiles,
			Usage:   "Maximum number of basemap tiles per mosaic",
			Value:   roadcanvas.DefaultMaxTiles,
			EnvVars: envVars(flagMaxTiles),
		},
		&cli.IntFlag{
			Name:    flagMaxNodes,
			Usage:   "Maximum number of network nodes, 0 for no limit",
			EnvVars: envVars(flagMaxNodes),
		},
		&cli.IntFlag{
			Name:    flagMaxEdges,
			Usage:   "Maximum number of network edges, 0 for no limit",
			EnvVars: envVars(flagMaxEdges),
		},
		&cli.BoolFlag{
			Name:    flagVerbose,
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
			EnvVars: envVars(flagVerbose),
		},
	}

	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().
		Level(zerolog.InfoLevel)
	if c.Bool(flagVerbose) {
		logger = logger.Level(zerolog.DebugLevel)
	}

	request := roadcanvas.Request{
		North:       c.Float64(flagNorth),
		South:       c.Float64(flagSouth),
		East:        c.Float64(flagEast),
		West:        c.Float64(flagWest),
		NetworkType: roadcanvas.NetworkType(c.String(flagNetwork)),
		Zoom:        c.Int(flagZoom),
		Basemap:     c.Bool(flagBasemap),
	}
	if preset := c.String(flagPreset); preset != "" {
		bounds, ok := presets[preset]
		if !ok {
			return fmt.Errorf("unknown preset %q", preset)
		}
		request.North, request.South, request.East, request.West = bounds[0], bounds[1], bounds[2], bounds[3]
	}

	client := roadcanvas.NewClient(
		roadcanvas.WithEndpoint(c.String(flagOverpass)),
		roadcanvas.WithClientLogger(logger),
	)
	fetcher, err := roadcanvas.NewTileFetcher(
		roadcanvas.WithTileURLTemplate(c.String(flagTileURL)),
		roadcanvas.WithTileLogger(logger),
	)
	if err != nil {
		return err
	}
	converter, err := roadcanvas.NewConverter(
		roadcanvas.WithClient(client),
		roadcanvas.WithTileFetcher(fetcher),
		roadcanvas.WithMaxTiles(c.Int(flagMaxTiles)),
		roadcanvas.WithNetworkLimits(roadcanvas.NetworkLimits{
			MaxNodes: c.Int(flagMaxNodes),
			MaxEdges: c.Int(flagMaxEdges),
		}),
		roadcanvas.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	result, err := converter.Convert(c.Context, request)
	if err != nil {
		return err
	}

	network := result.Network
	minX, maxX, minY, maxY := coordRanges(network)
	logger.Info().
		Int("nodes", len(network.Nodes)).
		Int("edges", len(network.Edges)).
		Str("x_range", fmt.Sprintf("%.1f..%.1f", minX, maxX)).
		Str("y_range", fmt.Sprintf("%.1f..%.1f", minY, maxY)).
		Msg("conversion complete")

	outDir := c.String(flagOutDir)
	name := c.String(flagName)

	outputs := []struct {
		suffix string
		data   []byte
	}{
		{"_nodes.csv", result.NodesCSV},
		{"_edges.csv", result.EdgesCSV},
		{"_network.geojson", result.GeoJSON},
	}
	for _, output := range outputs {
		path := filepath.Join(outDir, name+output.suffix)
		if err := os.WriteFile(path, output.data, 0o644); err != nil {
			return err
		}
		logger.Info().Str("path", path).Msg("wrote artifact")
	}

	if err := writePNG(filepath.Join(outDir, name+"_plain.png"), result.PlainImage, logger); err != nil {
		return err
	}
	if result.BasemapImage != nil {
		if err := writePNG(filepath.Join(outDir, name+"_basemap.png"), result.BasemapImage, logger); err != nil {
			return err
		}
	}
	return nil
}

func coordRanges(network *roadcanvas.RoadNetwork) (minX, maxX, minY, maxY float64) {
	for i, node := range network.Nodes {
		if i == 0 || node.X < minX {
			minX = node.X
		}
		if i == 0 || node.X > maxX {
			maxX = node.X
		}
		if i == 0 || node.Y < minY {
			minY = node.Y
		}
		if i == 0 || node.Y > maxY {
			maxY = node.Y
		}
	}
	return minX, maxX, minY, maxY
}

func writePNG(path string, img image.Image, logger zerolog.Logger) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info().Str("path", path).Msg("wrote artifact")
	return nil
}
