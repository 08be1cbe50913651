package roadcanvas

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// A Request describes one conversion: the bounding box to fetch, the network
// type, and the basemap zoom.
type Request struct {
	North       float64     `validate:"gte=-90,lte=90"`
	South       float64     `validate:"gte=-90,lte=90"`
	East        float64     `validate:"gte=-180,lte=180"`
	West        float64     `validate:"gte=-180,lte=180"`
	NetworkType NetworkType `validate:"oneof=drive walk bike all"`
	Zoom        int         `validate:"gte=0,lte=19"`
	Basemap     bool
}

// A Result holds every artifact of a successful conversion. Results are
// write-once: a Result is only returned when the whole pipeline succeeded.
type Result struct {
	Network      *RoadNetwork
	NodesCSV     []byte
	EdgesCSV     []byte
	GeoJSON      []byte
	PlainImage   image.Image
	BasemapImage image.Image // nil unless Request.Basemap was set
}

// A Converter runs the fetch, re-key, export, and render pipeline for one
// request at a time.
type Converter struct {
	client   *Client
	fetcher  *TileFetcher
	canvas   Canvas
	limits   NetworkLimits
	maxTiles int
	validate *validator.Validate
	logger   zerolog.Logger
}

// A ConverterOption sets an option on a Converter.
type ConverterOption func(*Converter)

// NewConverter returns a new Converter with the given options.
func NewConverter(options ...ConverterOption) (*Converter, error) {
	c := &Converter{
		canvas:   DefaultCanvas,
		maxTiles: DefaultMaxTiles,
		validate: validator.New(),
		logger:   zerolog.Nop(),
	}
	for _, option := range options {
		option(c)
	}
	if c.client == nil {
		c.client = NewClient()
	}
	if c.fetcher == nil {
		fetcher, err := NewTileFetcher()
		if err != nil {
			return nil, err
		}
		c.fetcher = fetcher
	}
	return c, nil
}

func WithCanvas(canvas Canvas) ConverterOption {
	return func(c *Converter) {
		c.canvas = canvas
	}
}

func WithClient(client *Client) ConverterOption {
	return func(c *Converter) {
		c.client = client
	}
}

func WithTileFetcher(fetcher *TileFetcher) ConverterOption {
	return func(c *Converter) {
		c.fetcher = fetcher
	}
}

func WithNetworkLimits(limits NetworkLimits) ConverterOption {
	return func(c *Converter) {
		c.limits = limits
	}
}

func WithMaxTiles(maxTiles int) ConverterOption {
	return func(c *Converter) {
		c.maxTiles = maxTiles
	}
}

func WithLogger(logger zerolog.Logger) ConverterOption {
	return func(c *Converter) {
		c.logger = logger
	}
}

// Convert runs the whole pipeline for one request. Outputs are
// all-or-nothing: if any stage fails, no artifact is returned.
func (c *Converter) Convert(ctx context.Context, request Request) (*Result, error) {
	if err := c.validate.Struct(request); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	box, err := NewBoundingBox(request.North, request.South, request.East, request.West)
	if err != nil {
		return nil, err
	}

	osmNodes, ways, err := c.client.FetchNetwork(ctx, box, request.NetworkType)
	if err != nil {
		return nil, err
	}

	network, err := BuildNetwork(box, c.canvas, osmNodes, ways, c.limits)
	if err != nil {
		return nil, err
	}
	c.logger.Info().
		Int("nodes", len(network.Nodes)).
		Int("edges", len(network.Edges)).
		Msg("built road network")

	result := &Result{
		Network:    network,
		PlainImage: network.RenderPlain(),
	}

	var nodesCSV, edgesCSV, geoJSON bytes.Buffer
	if err := network.WriteNodesCSV(&nodesCSV); err != nil {
		return nil, err
	}
	if err := network.WriteEdgesCSV(&edgesCSV); err != nil {
		return nil, err
	}
	if err := network.WriteGeoJSON(&geoJSON); err != nil {
		return nil, err
	}
	result.NodesCSV = nodesCSV.Bytes()
	result.EdgesCSV = edgesCSV.Bytes()
	result.GeoJSON = geoJSON.Bytes()

	if request.Basemap {
		basemap, err := network.RenderBasemap(ctx, c.fetcher, request.Zoom, c.maxTiles)
		if err != nil {
			return nil, err
		}
		result.BasemapImage = basemap
	}

	return result, nil
}
