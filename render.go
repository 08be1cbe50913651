package roadcanvas

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

var (
	plainRoadColor   = color.NRGBA{A: 0xff}
	basemapRoadColor = color.NRGBA{R: 0xff, A: 0xcc}
)

const (
	plainRoadWidth   = 2.0
	basemapRoadWidth = 1.5
)

// RenderPlain renders the network's undirected connections as dark strokes
// on a white background at the canvas pixel size.
func (n *RoadNetwork) RenderPlain() image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, n.Canvas.Width, n.Canvas.Height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	n.strokeConnections(dst, plainRoadColor, plainRoadWidth)
	return dst
}

// RenderBasemap renders the network over a basemap tile mosaic for the
// network's bounding box at the given zoom. The mosaic is all-or-nothing: a
// failed tile fetch fails the render.
func (n *RoadNetwork) RenderBasemap(ctx context.Context, fetcher *TileFetcher, zoom, maxTiles int) (image.Image, error) {
	mosaic, err := AssembleMosaic(ctx, fetcher, n.Box, zoom, n.Canvas, maxTiles)
	if err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, n.Canvas.Width, n.Canvas.Height))
	draw.Draw(dst, dst.Bounds(), mosaic.Image, mosaic.Image.Bounds().Min, draw.Src)
	n.strokeConnections(dst, basemapRoadColor, basemapRoadWidth)
	return dst, nil
}

func (n *RoadNetwork) strokeConnections(dst *image.RGBA, c color.Color, width float64) {
	src := image.NewUniform(c)
	r := vector.NewRasterizer(n.Canvas.Width, n.Canvas.Height)
	for _, edge := range n.Connections() {
		from, _ := n.NodeByID(edge.From)
		to, _ := n.NodeByID(edge.To)
		x1, y1 := n.Canvas.Pixel(from.X, from.Y)
		x2, y2 := n.Canvas.Pixel(to.X, to.Y)
		strokeLine(r, dst, src, x1, y1, x2, y2, width)
	}
}

// strokeLine rasterizes a line segment as a filled quad of the given width.
func strokeLine(r *vector.Rasterizer, dst *image.RGBA, src image.Image, x1, y1, x2, y2, width float64) {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx := -dy / length * width / 2
	ny := dx / length * width / 2

	r.Reset(dst.Bounds().Dx(), dst.Bounds().Dy())
	r.DrawOp = draw.Over
	r.MoveTo(float32(x1+nx), float32(y1+ny))
	r.LineTo(float32(x2+nx), float32(y2+ny))
	r.LineTo(float32(x2-nx), float32(y2-ny))
	r.LineTo(float32(x1-nx), float32(y1-ny))
	r.ClosePath()
	r.Draw(dst, dst.Bounds(), src, image.Point{})
}
