package mosaic

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"path/filepath"

	"github.com/handiism/bandcamp-mosaic/internal/cache"
	"github.com/handiism/bandcamp-mosaic/internal/config"
	ioutils "github.com/handiism/bandcamp-mosaic/internal/io"
	"github.com/handiism/bandcamp-mosaic/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Result reports what Build produced.
type Result struct {
	Tiles      int    // number of images placed; 0 means nothing was written
	Grid       int    // tiles per row and per column
	TileSize   int    // edge length of one tile in pixels
	OutputPath string // empty when nothing was written

	// Skipped lists cache artifacts BuildFromCache could not decode.
	Skipped []string
}

// GridSize returns the number of tiles per row for count images:
// the smallest G with G*G >= count.
//
// Example:
//
//	GridSize(10) // Returns 4
//	GridSize(9)  // Returns 3
//	GridSize(1)  // Returns 1
func GridSize(count int) int {
	if count <= 0 {
		return 0
	}
	g := int(math.Ceil(math.Sqrt(float64(count))))
	// Guard against float rounding on perfect squares.
	for g > 1 && (g-1)*(g-1) >= count {
		g--
	}
	for g*g < count {
		g++
	}
	return g
}

// Layout returns the grid dimension and tile edge for count images on a
// size x size canvas. The tile edge is truncated, so grid*tile may be less
// than size; the remainder stays as a black margin on the right and bottom.
func Layout(count, size int) (grid, tile int) {
	grid = GridSize(count)
	if grid == 0 {
		return 0, 0
	}
	return grid, size / grid
}

// Cell returns the canvas rectangle of tile i in row-major order.
func Cell(i, grid, tile int) image.Rectangle {
	col, row := i%grid, i/grid
	return image.Rect(col*tile, row*tile, (col+1)*tile, (row+1)*tile)
}

// Compositor tiles cover images into a square mosaic.
//
// Example usage:
//
//	comp := NewCompositor(afero.NewOsFs(), settings)
//	res, err := comp.BuildFromCache(ctx, store, "mosaic.jpg")
//	if res.Tiles == 0 {
//	    fmt.Println("No images found.")
//	}
type Compositor struct {
	fs      afero.Fs
	size    int
	quality int
	workers int
	log     zerolog.Logger
}

// NewCompositor creates a Compositor that writes to fs using the mosaic
// settings (final_size, mosaic_quality, mosaic_workers).
func NewCompositor(fs afero.Fs, settings *config.Settings) *Compositor {
	workers := settings.MosaicWorkers
	if workers < 1 {
		workers = 1
	}
	return &Compositor{
		fs:      fs,
		size:    settings.FinalSize,
		quality: settings.MosaicQuality,
		workers: workers,
		log:     logging.With("mosaic"),
	}
}

// Build places images on a black canvas in the order given and writes the
// result to outPath.
//
// Every image is stretched to exactly tile x tile pixels; aspect ratio is not
// preserved. The canvas is encoded as PNG if outPath ends in ".png" and as
// JPEG otherwise.
//
// An empty images slice is not an error: nothing is written and the returned
// Result has Tiles == 0.
func (c *Compositor) Build(ctx context.Context, images []image.Image, outPath string) (Result, error) {
	if len(images) == 0 {
		return Result{}, nil
	}

	grid, tile := Layout(len(images), c.size)
	if tile == 0 {
		return Result{}, fmt.Errorf("%d covers do not fit on a %dpx canvas", len(images), c.size)
	}

	canvas := ioutils.NewCanvas(c.size, c.size, color.Black)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, img := range images {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Cells are disjoint, so workers never write the same pixels.
			ioutils.ScaleInto(canvas, Cell(i, grid, tile), img)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if err := ioutils.EnsureDir(c.fs, filepath.Dir(outPath)); err != nil {
		return Result{}, fmt.Errorf("creating output directory: %w", err)
	}

	err := ioutils.WriteFileAtomic(c.fs, outPath, func(w io.Writer) error {
		return ioutils.EncodeForPath(w, outPath, canvas, c.quality)
	})
	if err != nil {
		return Result{}, fmt.Errorf("writing mosaic %s: %w", outPath, err)
	}

	c.log.Debug().
		Int("tiles", len(images)).
		Int("grid", grid).
		Int("tile", tile).
		Str("path", outPath).
		Msg("mosaic written")

	return Result{
		Tiles:      len(images),
		Grid:       grid,
		TileSize:   tile,
		OutputPath: outPath,
	}, nil
}

// BuildFromCache loads every cover artifact from store in lexical key order
// and builds the mosaic from them. Artifacts that fail to decode are left
// out and listed in Result.Skipped.
func (c *Compositor) BuildFromCache(ctx context.Context, store *cache.Store, outPath string) (Result, error) {
	images, skipped, err := store.LoadCovers()
	if err != nil {
		return Result{}, err
	}

	for _, path := range skipped {
		c.log.Warn().Str("path", path).Msg("skipping unreadable cover")
	}

	res, err := c.Build(ctx, images, outPath)
	res.Skipped = skipped
	return res, err
}
