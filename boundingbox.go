// Package roadcanvas fetches road networks for a geographic bounding box and
// converts them to a fixed logical canvas: tabular node and segment exports
// plus raster renderings, optionally composited over a Web-Mercator basemap
// tile mosaic.
package roadcanvas

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBoundingBox is returned when north <= south or east <= west.
	ErrInvalidBoundingBox = errors.New("invalid bounding box")

	// ErrRangeTooSmall is returned when a bounding box collapses to a single
	// tile column or row at the requested zoom, so no meaningful crop exists.
	ErrRangeTooSmall = errors.New("range too small for this zoom")

	// ErrTooManyTiles is returned when a bounding box spans more tiles than
	// the configured limit at the requested zoom.
	ErrTooManyTiles = errors.New("too many tiles")

	// ErrNetworkTooLarge is returned when the fetched road network exceeds
	// the configured node or edge limit.
	ErrNetworkTooLarge = errors.New("road network too large")

	// ErrTileFetch is returned when a basemap tile cannot be fetched.
	ErrTileFetch = errors.New("tile fetch failed")

	// ErrUpstreamFetch is returned when the road network source cannot be
	// fetched or decoded.
	ErrUpstreamFetch = errors.New("upstream fetch failed")
)

// A BoundingBox is a geographic bounding box in degrees. It is validated
// once by NewBoundingBox and never mutated.
type BoundingBox struct {
	North float64
	South float64
	East  float64
	West  float64
}

// NewBoundingBox returns a validated BoundingBox.
func NewBoundingBox(north, south, east, west float64) (BoundingBox, error) {
	b := BoundingBox{
		North: north,
		South: south,
		East:  east,
		West:  west,
	}
	if north <= south {
		return BoundingBox{}, fmt.Errorf("%w: north %f <= south %f", ErrInvalidBoundingBox, north, south)
	}
	if east <= west {
		return BoundingBox{}, fmt.Errorf("%w: east %f <= west %f", ErrInvalidBoundingBox, east, west)
	}
	return b, nil
}

// Center returns b's center point.
func (b BoundingBox) Center() (lat, lon float64) {
	return (b.North + b.South) / 2, (b.East + b.West) / 2
}

// NorthWest returns b's north-west corner.
func (b BoundingBox) NorthWest() (lat, lon float64) {
	return b.North, b.West
}

// SouthEast returns b's south-east corner.
func (b BoundingBox) SouthEast() (lat, lon float64) {
	return b.South, b.East
}

// Contains reports whether the point is inside b. Points outside a bounding
// box still normalize, so this is informational only.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return b.South <= lat && lat <= b.North && b.West <= lon && lon <= b.East
}
