package roadcanvas

import "math"

// A Canvas is a fixed logical target coordinate system with a matching pixel
// size. The Y axis follows the normalization convention: the bounding box's
// north edge maps to YMin.
type Canvas struct {
	XMin   float64
	XMax   float64
	YMin   float64
	YMax   float64
	Width  int
	Height int
}

// DefaultCanvas is the 480x360 stage with x in [-240,240] and y in
// [-180,180].
var DefaultCanvas = Canvas{
	XMin:   -240,
	XMax:   240,
	YMin:   -180,
	YMax:   180,
	Width:  480,
	Height: 360,
}

// Normalize maps a geographic point to canvas coordinates with a linear
// remap of the bounding box onto the canvas range. The latitude axis is
// inverted: the north edge maps to YMin. Results are rounded to two decimal
// places. Points outside the bounding box are not clamped and legitimately
// map outside the canvas range.
//
// A zero-width axis substitutes the normalized midpoint 0.5 instead of
// dividing by zero. This is a documented degenerate-input policy, not an
// error: NewBoundingBox already rejects such boxes, so it only arises for
// hand-built values.
func (c Canvas) Normalize(lat, lon float64, box BoundingBox) (x, y float64) {
	xNorm := 0.5
	if box.East != box.West {
		xNorm = (lon - box.West) / (box.East - box.West)
	}
	yNorm := 0.5
	if box.North != box.South {
		yNorm = (box.North - lat) / (box.North - box.South)
	}
	x = c.XMin + xNorm*(c.XMax-c.XMin)
	y = c.YMin + yNorm*(c.YMax-c.YMin)
	return round2(x), round2(y)
}

// Pixel maps a canvas coordinate to a pixel position, with YMin at the top
// row.
func (c Canvas) Pixel(x, y float64) (px, py float64) {
	px = (x - c.XMin) / (c.XMax - c.XMin) * float64(c.Width)
	py = (y - c.YMin) / (c.YMax - c.YMin) * float64(c.Height)
	return px, py
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round6(v float64) float64 {
	return math.Round(v*1000000) / 1000000
}
