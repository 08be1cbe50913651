package roadcanvas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

// DefaultOverpassEndpoint is the public Overpass API interpreter.
const DefaultOverpassEndpoint = "https://overpass-api.de/api/interpreter"

// A NetworkType selects which highway classes are fetched.
type NetworkType string

const (
	NetworkDrive NetworkType = "drive"
	NetworkWalk  NetworkType = "walk"
	NetworkBike  NetworkType = "bike"
	NetworkAll   NetworkType = "all"
)

// highwayFilters are Overpass tag filters per network type.
var highwayFilters = map[NetworkType]string{
	NetworkAll:   `["highway"]`,
	NetworkDrive: `["highway"]["highway"!~"footway|pedestrian|steps|path|cycleway|bridleway|corridor|platform"]`,
	NetworkWalk:  `["highway"]["highway"!~"motorway|motorway_link"]["foot"!~"no"]`,
	NetworkBike:  `["highway"]["highway"!~"motorway|motorway_link|footway|steps|pedestrian"]["bicycle"!~"no"]`,
}

// Valid reports whether t is a known network type.
func (t NetworkType) Valid() bool {
	_, ok := highwayFilters[t]
	return ok
}

// An OSMNode is a raw node element returned by the upstream source.
type OSMNode struct {
	ID  int64   `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// An OSMWay is a raw way element returned by the upstream source.
type OSMWay struct {
	ID    int64   `json:"id"`
	Nodes []int64 `json:"nodes"`
}

type overpassElement struct {
	Type  string  `json:"type"`
	ID    int64   `json:"id"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Nodes []int64 `json:"nodes"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// A Client fetches road networks from an Overpass-compatible endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
	timeoutSec int
	logger     zerolog.Logger
}

// A ClientOption sets an option on a Client.
type ClientOption func(*Client)

// NewClient returns a new Client with the given options.
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		endpoint:   DefaultOverpassEndpoint,
		userAgent:  "go-roadcanvas",
		timeoutSec: 25,
		logger:     zerolog.Nop(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

func WithClientHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithClientLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithClientUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// Query returns the Overpass QL query for box and networkType.
func (c *Client) Query(box BoundingBox, networkType NetworkType) string {
	filter := highwayFilters[networkType]
	if filter == "" {
		filter = highwayFilters[NetworkAll]
	}
	bbox := fmt.Sprintf("%f,%f,%f,%f", box.South, box.West, box.North, box.East)
	return fmt.Sprintf("[out:json][timeout:%d];way%s(%s);(._;>;);out body;",
		c.timeoutSec, filter, bbox)
}

// FetchNetwork fetches all ways and their nodes inside box.
func (c *Client) FetchNetwork(ctx context.Context, box BoundingBox, networkType NetworkType) ([]OSMNode, []OSMWay, error) {
	query := c.Query(box, networkType)
	c.logger.Debug().Str("endpoint", c.endpoint).Str("query", query).Msg("fetching road network")

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%w: status %d", ErrUpstreamFetch, resp.StatusCode)
	}

	var body overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUpstreamFetch, err)
	}

	var nodes []OSMNode
	var ways []OSMWay
	for _, element := range body.Elements {
		switch element.Type {
		case "node":
			nodes = append(nodes, OSMNode{ID: element.ID, Lat: element.Lat, Lon: element.Lon})
		case "way":
			ways = append(ways, OSMWay{ID: element.ID, Nodes: element.Nodes})
		}
	}
	c.logger.Debug().Int("nodes", len(nodes)).Int("ways", len(ways)).Msg("fetched road network")
	return nodes, ways, nil
}
