package roadcanvas

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	tileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadcanvas_tile_cache_hits_total",
		Help: "The total number of hits on the tile image cache",
	})
	tileCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadcanvas_tile_cache_misses_total",
		Help: "The total number of misses on the tile image cache",
	})
	tileFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadcanvas_tile_fetches_total",
		Help: "The total number of tile fetches issued upstream",
	})
	tileFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadcanvas_tile_fetch_errors_total",
		Help: "The total number of failed tile fetches",
	})
)

// DefaultTileURLTemplate is the CartoDB Light basemap used by default.
// Placeholders {z}, {x}, and {y} are substituted per tile.
const DefaultTileURLTemplate = "https://cartodb-basemaps-a.global.ssl.fastly.net/light_all/{z}/{x}/{y}.png"

const defaultTileConcurrency = 4

// A TileFetcher fetches slippy-map tile images over HTTP, with an LRU cache
// keyed by tile index. A failed fetch for any tile aborts the whole request:
// partial mosaics are never returned.
type TileFetcher struct {
	httpClient  *http.Client
	urlTemplate string
	userAgent   string
	concurrency int
	cacheSize   int
	logger      zerolog.Logger
	tileCache   *lru.Cache[Tile, image.Image]
}

// A TileFetcherOption sets an option on a TileFetcher.
type TileFetcherOption func(*TileFetcher)

// NewTileFetcher returns a new TileFetcher with the given options.
func NewTileFetcher(options ...TileFetcherOption) (*TileFetcher, error) {
	f := &TileFetcher{
		httpClient:  http.DefaultClient,
		urlTemplate: DefaultTileURLTemplate,
		userAgent:   "go-roadcanvas",
		concurrency: defaultTileConcurrency,
		cacheSize:   128,
		logger:      zerolog.Nop(),
	}
	for _, option := range options {
		option(f)
	}

	var err error
	f.tileCache, err = lru.New[Tile, image.Image](f.cacheSize)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func WithHTTPClient(httpClient *http.Client) TileFetcherOption {
	return func(f *TileFetcher) {
		f.httpClient = httpClient
	}
}

func WithTileURLTemplate(urlTemplate string) TileFetcherOption {
	return func(f *TileFetcher) {
		f.urlTemplate = urlTemplate
	}
}

func WithTileConcurrency(concurrency int) TileFetcherOption {
	return func(f *TileFetcher) {
		f.concurrency = concurrency
	}
}

func WithTileCacheSize(cacheSize int) TileFetcherOption {
	return func(f *TileFetcher) {
		f.cacheSize = cacheSize
	}
}

func WithTileLogger(logger zerolog.Logger) TileFetcherOption {
	return func(f *TileFetcher) {
		f.logger = logger
	}
}

func WithTileUserAgent(userAgent string) TileFetcherOption {
	return func(f *TileFetcher) {
		f.userAgent = userAgent
	}
}

// URL returns the fetch URL for a tile.
func (f *TileFetcher) URL(tile Tile) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(tile.Z),
		"{x}", strconv.Itoa(tile.X),
		"{y}", strconv.Itoa(tile.Y),
	)
	return r.Replace(f.urlTemplate)
}

// Fetch returns the image for a single tile, using the cache if possible.
func (f *TileFetcher) Fetch(ctx context.Context, tile Tile) (image.Image, error) {
	if img, ok := f.tileCache.Get(tile); ok {
		tileCacheHits.Inc()
		return img, nil
	}
	tileCacheMisses.Inc()

	img, err := f.fetch(ctx, tile)
	if err != nil {
		return nil, err
	}
	f.tileCache.Add(tile, img)
	return img, nil
}

// FetchRange fetches all tiles in r concurrently and returns them in
// row-major order. Tiles are independent: no ordering is required between
// fetches because callers paste each tile by absolute offset. The first
// failed fetch cancels the rest and fails the whole range.
func (f *TileFetcher) FetchRange(ctx context.Context, r TileRange) ([]image.Image, error) {
	tiles := r.Tiles()
	images := make([]image.Image, len(tiles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, tile := range tiles {
		i, tile := i, tile
		g.Go(func() error {
			img, err := f.Fetch(ctx, tile)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func (f *TileFetcher) fetch(ctx context.Context, tile Tile) (image.Image, error) {
	url := f.URL(tile)
	f.logger.Debug().Str("url", url).Msg("fetching tile")
	tileFetches.Inc()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		tileFetchErrors.Inc()
		return nil, fmt.Errorf("%w: %s: %w", ErrTileFetch, tile, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		tileFetchErrors.Inc()
		return nil, fmt.Errorf("%w: %s: status %d", ErrTileFetch, tile, resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		tileFetchErrors.Inc()
		return nil, fmt.Errorf("%w: %s: %w", ErrTileFetch, tile, err)
	}
	return img, nil
}
