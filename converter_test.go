package roadcanvas_test

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alecthomas/assert/v2"

	roadcanvas "github.com/twpayne/go-roadcanvas"
)

func newTestConverter(t *testing.T, options ...roadcanvas.ConverterOption) *roadcanvas.Converter {
	t.Helper()

	overpass := newOverpassServer(t, overpassFixture, http.StatusOK)
	client := roadcanvas.NewClient(
		roadcanvas.WithEndpoint(overpass.URL),
		roadcanvas.WithClientHTTPClient(overpass.Client()),
	)

	var requests atomic.Int64
	tiles := newTileServer(t, &requests, nil)
	fetcher := newTestTileFetcher(t, tiles)

	converter, err := roadcanvas.NewConverter(append([]roadcanvas.ConverterOption{
		roadcanvas.WithClient(client),
		roadcanvas.WithTileFetcher(fetcher),
	}, options...)...)
	assert.NoError(t, err)
	return converter
}

func TestConverter_Convert(t *testing.T) {
	converter := newTestConverter(t)

	result, err := converter.Convert(context.Background(), roadcanvas.Request{
		North:       35.660,
		South:       35.657,
		East:        139.747,
		West:        139.743,
		NetworkType: roadcanvas.NetworkDrive,
		Zoom:        18,
		Basemap:     true,
	})
	assert.NoError(t, err)

	assert.Equal(t, 3, len(result.Network.Nodes))
	assert.Equal(t, 4, len(result.Network.Edges))
	assert.True(t, strings.HasPrefix(string(result.NodesCSV), "id,x,y,latitude,longitude,osm_id\n"))
	assert.True(t, strings.HasPrefix(string(result.EdgesCSV), "from_id,to_id,distance_m\n"))
	assert.True(t, strings.Contains(string(result.GeoJSON), `"FeatureCollection"`))
	assert.Equal(t, 480, result.PlainImage.Bounds().Dx())
	assert.NotZero(t, result.BasemapImage)
	assert.Equal(t, 360, result.BasemapImage.Bounds().Dy())
}

func TestConverter_Convert_NoBasemap(t *testing.T) {
	converter := newTestConverter(t)

	result, err := converter.Convert(context.Background(), roadcanvas.Request{
		North:       35.660,
		South:       35.657,
		East:        139.747,
		West:        139.743,
		NetworkType: roadcanvas.NetworkAll,
		Zoom:        16,
	})
	assert.NoError(t, err)
	assert.Zero(t, result.BasemapImage)
	assert.NotZero(t, result.PlainImage)
}

func TestConverter_Convert_InvalidRequest(t *testing.T) {
	converter := newTestConverter(t)

	for _, tc := range []struct {
		request     roadcanvas.Request
		expectedErr error
	}{
		// North below south.
		{
			request:     roadcanvas.Request{North: 35.657, South: 35.660, East: 139.747, West: 139.743, NetworkType: roadcanvas.NetworkDrive, Zoom: 16},
			expectedErr: roadcanvas.ErrInvalidBoundingBox,
		},
		// East below west.
		{
			request:     roadcanvas.Request{North: 35.660, South: 35.657, East: 139.743, West: 139.747, NetworkType: roadcanvas.NetworkDrive, Zoom: 16},
			expectedErr: roadcanvas.ErrInvalidBoundingBox,
		},
		// Unknown network type.
		{
			request: roadcanvas.Request{North: 35.660, South: 35.657, East: 139.747, West: 139.743, NetworkType: "fly", Zoom: 16},
		},
		// Zoom out of range.
		{
			request: roadcanvas.Request{North: 35.660, South: 35.657, East: 139.747, West: 139.743, NetworkType: roadcanvas.NetworkDrive, Zoom: 20},
		},
	} {
		_, err := converter.Convert(context.Background(), tc.request)
		assert.Error(t, err)
		if tc.expectedErr != nil {
			assert.IsError(t, err, tc.expectedErr)
		}
	}
}

func TestConverter_Convert_UpstreamFailure(t *testing.T) {
	overpass := newOverpassServer(t, "", http.StatusBadGateway)
	client := roadcanvas.NewClient(
		roadcanvas.WithEndpoint(overpass.URL),
		roadcanvas.WithClientHTTPClient(overpass.Client()),
	)
	converter := newTestConverter(t, roadcanvas.WithClient(client))

	_, err := converter.Convert(context.Background(), roadcanvas.Request{
		North:       35.660,
		South:       35.657,
		East:        139.747,
		West:        139.743,
		NetworkType: roadcanvas.NetworkDrive,
		Zoom:        16,
	})
	assert.IsError(t, err, roadcanvas.ErrUpstreamFetch)
}

func TestConverter_Convert_NetworkTooLarge(t *testing.T) {
	converter := newTestConverter(t, roadcanvas.WithNetworkLimits(roadcanvas.NetworkLimits{MaxNodes: 1}))

	_, err := converter.Convert(context.Background(), roadcanvas.Request{
		North:       35.660,
		South:       35.657,
		East:        139.747,
		West:        139.743,
		NetworkType: roadcanvas.NetworkDrive,
		Zoom:        16,
	})
	assert.IsError(t, err, roadcanvas.ErrNetworkTooLarge)
}

func TestConverter_Convert_TooManyTiles(t *testing.T) {
	converter := newTestConverter(t, roadcanvas.WithMaxTiles(4))

	_, err := converter.Convert(context.Background(), roadcanvas.Request{
		North:       35.660,
		South:       35.657,
		East:        139.747,
		West:        139.743,
		NetworkType: roadcanvas.NetworkDrive,
		Zoom:        18,
		Basemap:     true,
	})
	assert.IsError(t, err, roadcanvas.ErrTooManyTiles)
}
