package roadcanvas

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// DefaultMaxTiles caps the number of tiles a single mosaic may span.
const DefaultMaxTiles = 100

// A Mosaic is an assembled basemap raster cropped to a bounding box and
// resized to a canvas pixel size. It is a write-once output of
// AssembleMosaic.
type Mosaic struct {
	Image image.Image
	Range TileRange
}

// AssembleMosaic fetches the tiles spanning box at zoom, pastes them into a
// single raster by index offset, crops the raster to the fractional pixel
// rectangle of box, and resizes the crop to the canvas pixel size.
//
// The tile count is checked against maxTiles before any fetch is issued. A
// maxTiles of zero or less uses DefaultMaxTiles.
func AssembleMosaic(ctx context.Context, fetcher *TileFetcher, box BoundingBox, zoom int, canvas Canvas, maxTiles int) (*Mosaic, error) {
	if maxTiles <= 0 {
		maxTiles = DefaultMaxTiles
	}

	r, err := NewTileRange(box, zoom)
	if err != nil {
		return nil, err
	}
	if count := r.Count(); count > maxTiles {
		return nil, fmt.Errorf("%w: %d tiles at zoom %d, limit %d",
			ErrTooManyTiles, count, zoom, maxTiles)
	}

	images, err := fetcher.FetchRange(ctx, r)
	if err != nil {
		return nil, err
	}

	mosaic := image.NewRGBA(image.Rect(0, 0, r.CountX()*TileSize, r.CountY()*TileSize))
	for i, img := range images {
		x := (i % r.CountX()) * TileSize
		y := (i / r.CountX()) * TileSize
		draw.Draw(mosaic, image.Rect(x, y, x+TileSize, y+TileSize), img, img.Bounds().Min, draw.Src)
	}

	crop := cropRect(mosaic.Bounds(), r, box)
	if crop.Empty() {
		return nil, fmt.Errorf("%w: empty crop at zoom %d", ErrRangeTooSmall, zoom)
	}

	resized := image.NewRGBA(image.Rect(0, 0, canvas.Width, canvas.Height))
	xdraw.CatmullRom.Scale(resized, resized.Bounds(), mosaic, crop, xdraw.Src, nil)

	return &Mosaic{Image: resized, Range: r}, nil
}

// cropRect returns the pixel rectangle inside the assembled mosaic that
// corresponds to box, located from the mosaic's true corner coordinates and
// a linear pixel-per-degree ratio.
func cropRect(bounds image.Rectangle, r TileRange, box BoundingBox) image.Rectangle {
	latN, lonW := Tile{Z: r.Z, X: r.XMin, Y: r.YMin}.NorthWest()
	latS, lonE := Tile{Z: r.Z, X: r.XMax + 1, Y: r.YMax + 1}.NorthWest()

	pxPerLon := float64(bounds.Dx()) / (lonE - lonW)
	pxPerLat := float64(bounds.Dy()) / (latN - latS)

	left := (box.West - lonW) * pxPerLon
	right := (box.East - lonW) * pxPerLon
	top := (latN - box.North) * pxPerLat
	bottom := (latN - box.South) * pxPerLat

	return image.Rect(
		int(math.Floor(left)),
		int(math.Floor(top)),
		int(math.Ceil(right)),
		int(math.Ceil(bottom)),
	).Intersect(bounds)
}
