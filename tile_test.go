package roadcanvas_test

import (
	"strconv"
	"testing"

	"github.com/alecthomas/assert/v2"

	roadcanvas "github.com/twpayne/go-roadcanvas"
)

func TestLatLonTile(t *testing.T) {
	for i, tc := range []struct {
		lat, lon float64
		zoom     int
		expected roadcanvas.Tile
	}{
		{lat: 0, lon: 0, zoom: 0, expected: roadcanvas.Tile{Z: 0, X: 0, Y: 0}},
		{lat: 35.6585, lon: 139.745, zoom: 16, expected: roadcanvas.Tile{Z: 16, X: 58207, Y: 25811}},
		{lat: 51.5074, lon: -0.1278, zoom: 10, expected: roadcanvas.Tile{Z: 10, X: 511, Y: 340}},
		{lat: 40.7128, lon: -74.0060, zoom: 12, expected: roadcanvas.Tile{Z: 12, X: 1205, Y: 1540}},
		{lat: -33.8688, lon: 151.2093, zoom: 14, expected: roadcanvas.Tile{Z: 14, X: 15073, Y: 9831}},
	} {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			assert.Equal(t, tc.expected, roadcanvas.LatLonTile(tc.lat, tc.lon, tc.zoom))
		})
	}
}

func TestLatLonTile_NearPolar(t *testing.T) {
	// Latitudes near the poles are numerically unstable but must not crash
	// or produce out-of-range rows.
	for _, lat := range []float64{89.9999, 90, -89.9999, -90} {
		for zoom := 0; zoom <= 19; zoom++ {
			tile := roadcanvas.LatLonTile(lat, 0, zoom)
			assert.True(t, tile.Y >= 0)
			assert.True(t, tile.Y < 1<<uint(zoom))
		}
	}
}

func TestTile_RoundTrip(t *testing.T) {
	// Re-encoding a tile's corner coordinate at the same zoom yields the
	// same tile, and the corner lies within one tile's angular size of the
	// original point.
	points := []struct {
		lat, lon float64
	}{
		{lat: 35.6585, lon: 139.745},
		{lat: 51.5074, lon: -0.1278},
		{lat: -33.8688, lon: 151.2093},
		{lat: 60.1699, lon: 24.9384},
	}
	for _, point := range points {
		for zoom := 0; zoom <= 19; zoom++ {
			tile := roadcanvas.LatLonTile(point.lat, point.lon, zoom)
			lat, lon := tile.NorthWest()
			assert.Equal(t, tile, roadcanvas.LatLonTile(lat, lon, zoom))

			// One tile's angular size at this latitude.
			latS, lonE := (roadcanvas.Tile{Z: zoom, X: tile.X + 1, Y: tile.Y + 1}).NorthWest()
			assertInDelta(t, point.lat, lat, lat-latS+1e-9)
			assertInDelta(t, point.lon, lon, lonE-lon+1e-9)
		}
	}
}

func TestTile_NorthWest(t *testing.T) {
	lat, lon := (roadcanvas.Tile{Z: 16, X: 58207, Y: 25811}).NorthWest()
	assertInDelta(t, 35.66175941929504, lat, 1e-9)
	assertInDelta(t, 139.7406005859375, lon, 1e-9)
}

func TestNewTileRange(t *testing.T) {
	box, err := roadcanvas.NewBoundingBox(35.660, 35.657, 139.747, 139.743)
	assert.NoError(t, err)

	for i, tc := range []struct {
		zoom          int
		expected      roadcanvas.TileRange
		expectedCount int
		expectedErr   error
	}{
		// The box collapses to a single tile column or row at low zooms.
		{zoom: 10, expectedErr: roadcanvas.ErrRangeTooSmall},
		{zoom: 13, expectedErr: roadcanvas.ErrRangeTooSmall},
		{
			zoom:          16,
			expected:      roadcanvas.TileRange{Z: 16, XMin: 58207, XMax: 58208, YMin: 25811, YMax: 25812},
			expectedCount: 4,
		},
		{
			zoom:          18,
			expected:      roadcanvas.TileRange{Z: 18, XMin: 232829, XMax: 232832, YMin: 103245, YMax: 103248},
			expectedCount: 16,
		},
	} {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			r, err := roadcanvas.NewTileRange(box, tc.zoom)
			if tc.expectedErr != nil {
				assert.IsError(t, err, tc.expectedErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, r)
			assert.Equal(t, tc.expectedCount, r.Count())
		})
	}
}

func TestNewTileRange_Degenerate(t *testing.T) {
	// A box a tenth of a millidegree tall collapses on both axes.
	box, err := roadcanvas.NewBoundingBox(35.6585001, 35.6585, 139.7450001, 139.745)
	assert.NoError(t, err)
	_, err = roadcanvas.NewTileRange(box, 10)
	assert.IsError(t, err, roadcanvas.ErrRangeTooSmall)
}

func TestTileRange_Tiles(t *testing.T) {
	r := roadcanvas.TileRange{Z: 3, XMin: 1, XMax: 2, YMin: 4, YMax: 5}
	assert.Equal(t, []roadcanvas.Tile{
		{Z: 3, X: 1, Y: 4},
		{Z: 3, X: 2, Y: 4},
		{Z: 3, X: 1, Y: 5},
		{Z: 3, X: 2, Y: 5},
	}, r.Tiles())
}
