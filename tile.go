package roadcanvas

import (
	"fmt"
	"math"
)

// TileSize is the pixel size of a slippy-map tile.
const TileSize = 256

// A Tile is a slippy-map tile index at a zoom level.
type Tile struct {
	Z int
	X int
	Y int
}

func (t Tile) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}

// tileEpsilon absorbs the rounding error of re-encoding a tile corner, so
// that corner coordinates floor back into the same tile. It is far smaller
// than any meaningful fraction of a tile.
const tileEpsilon = 1e-9

// LatLonTile returns the tile containing the given point at the given zoom.
// Latitudes beyond the Web-Mercator limit are clamped to the valid tile
// rows rather than producing out-of-range indexes.
func LatLonTile(lat, lon float64, zoom int) Tile {
	n := float64(int(1) << uint(zoom))
	x := int(math.Floor((lon+180)/360*n + tileEpsilon))
	latRad := lat * math.Pi / 180
	y := int(math.Floor((1-math.Asinh(math.Tan(latRad))/math.Pi)/2*n + tileEpsilon))
	return Tile{Z: zoom, X: clampTileIndex(x, int(n)), Y: clampTileIndex(y, int(n))}
}

func clampTileIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// NorthWest returns the latitude and longitude of t's north-west corner.
func (t Tile) NorthWest() (lat, lon float64) {
	n := float64(int(1) << uint(t.Z))
	lon = float64(t.X)/n*360 - 180
	lat = math.Atan(math.Sinh(math.Pi*(1-2*float64(t.Y)/n))) * 180 / math.Pi
	return lat, lon
}

// A TileRange is the inclusive rectangle of tile indexes spanning a bounding
// box at a zoom level.
type TileRange struct {
	Z    int
	XMin int
	XMax int
	YMin int
	YMax int
}

// NewTileRange returns the tile range spanning box at zoom. It returns
// ErrRangeTooSmall if the box collapses to a single tile column or row, as
// such a range cannot be cropped to the box meaningfully.
func NewTileRange(box BoundingBox, zoom int) (TileRange, error) {
	nw := LatLonTile(box.North, box.West, zoom)
	se := LatLonTile(box.South, box.East, zoom)
	r := TileRange{
		Z:    zoom,
		XMin: nw.X,
		XMax: se.X,
		YMin: nw.Y,
		YMax: se.Y,
	}
	if r.XMin == r.XMax || r.YMin == r.YMax {
		return TileRange{}, fmt.Errorf("%w: box spans %dx%d tiles at zoom %d",
			ErrRangeTooSmall, r.CountX(), r.CountY(), zoom)
	}
	return r, nil
}

// CountX returns the number of tile columns in r.
func (r TileRange) CountX() int {
	return r.XMax - r.XMin + 1
}

// CountY returns the number of tile rows in r.
func (r TileRange) CountY() int {
	return r.YMax - r.YMin + 1
}

// Count returns the total number of tiles in r.
func (r TileRange) Count() int {
	return r.CountX() * r.CountY()
}

// Tiles returns all tiles in r in row-major order. Order is irrelevant to
// mosaic assembly as each tile is pasted by absolute offset.
func (r TileRange) Tiles() []Tile {
	tiles := make([]Tile, 0, r.Count())
	for y := r.YMin; y <= r.YMax; y++ {
		for x := r.XMin; x <= r.XMax; x++ {
			tiles = append(tiles, Tile{Z: r.Z, X: x, Y: y})
		}
	}
	return tiles
}
