package mosaic

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/handiism/bandcamp-mosaic/internal/cache"
	"github.com/handiism/bandcamp-mosaic/internal/config"
	ioutils "github.com/handiism/bandcamp-mosaic/internal/io"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridSize(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{4, 2},
		{5, 3},
		{9, 3},
		{10, 4},
		{16, 4},
		{17, 5},
		{1000, 32},
		{1024, 32},
	}

	for _, tt := range tests {
		if got := GridSize(tt.count); got != tt.want {
			t.Errorf("GridSize(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestLayout(t *testing.T) {
	tests := []struct {
		count, size int
		grid, tile  int
	}{
		{10, 2000, 4, 500},
		{9, 2000, 3, 666},
		{1, 2000, 1, 2000},
		{0, 2000, 0, 0},
	}

	for _, tt := range tests {
		grid, tile := Layout(tt.count, tt.size)
		if grid != tt.grid || tile != tt.tile {
			t.Errorf("Layout(%d, %d) = (%d, %d), want (%d, %d)", tt.count, tt.size, grid, tile, tt.grid, tt.tile)
		}
	}
}

func TestCell(t *testing.T) {
	assert.Equal(t, image.Rect(0, 0, 10, 10), Cell(0, 4, 10))
	assert.Equal(t, image.Rect(30, 0, 40, 10), Cell(3, 4, 10))
	assert.Equal(t, image.Rect(10, 20, 20, 30), Cell(9, 4, 10))
}

func newTestCompositor(fs afero.Fs, size int) *Compositor {
	settings := config.DefaultSettings()
	settings.FinalSize = size
	settings.MosaicWorkers = 3
	return NewCompositor(fs, settings)
}

func palette(n int) []image.Image {
	images := make([]image.Image, n)
	for i := range images {
		images[i] = ioutils.NewCanvas(7, 13, color.RGBA{R: uint8(20 * (i + 1)), G: 100, B: 200, A: 255})
	}
	return images
}

func assertNear(t *testing.T, want color.RGBA, got color.Color, msgAndArgs ...interface{}) {
	t.Helper()
	r, g, b, a := got.RGBA()
	assert.InDelta(t, want.R, uint8(r>>8), 2, msgAndArgs...)
	assert.InDelta(t, want.G, uint8(g>>8), 2, msgAndArgs...)
	assert.InDelta(t, want.B, uint8(b>>8), 2, msgAndArgs...)
	assert.Equal(t, uint8(255), uint8(a>>8), msgAndArgs...)
}

func TestCompositor_Build(t *testing.T) {
	fs := afero.NewMemMapFs()
	comp := newTestCompositor(fs, 41)
	images := palette(10)

	res, err := comp.Build(context.Background(), images, "/out/mosaic.png")
	require.NoError(t, err)
	assert.Equal(t, Result{Tiles: 10, Grid: 4, TileSize: 10, OutputPath: "/out/mosaic.png"}, res)

	f, err := fs.Open("/out/mosaic.png")
	require.NoError(t, err)
	defer f.Close()

	out, format, err := image.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 41, 41), out.Bounds())

	for i := range images {
		cell := Cell(i, 4, 10)
		center := cell.Min.Add(image.Pt(5, 5))
		assertNear(t, images[i].At(0, 0).(color.RGBA), out.At(center.X, center.Y), "tile %d", i)
	}

	// Unused cells and the truncation margin stay black.
	assertNear(t, color.RGBA{A: 255}, out.At(35, 35), "empty cell")
	assertNear(t, color.RGBA{A: 255}, out.At(40, 5), "right margin")
	assertNear(t, color.RGBA{A: 255}, out.At(5, 40), "bottom margin")
}

func TestCompositor_BuildEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	comp := newTestCompositor(fs, 100)

	res, err := comp.Build(context.Background(), nil, "/out/mosaic.jpg")
	require.NoError(t, err)
	assert.Zero(t, res.Tiles)
	assert.Empty(t, res.OutputPath)
	assert.False(t, ioutils.Exists(fs, "/out/mosaic.jpg"))
}

func TestCompositor_BuildTooManyTiles(t *testing.T) {
	comp := newTestCompositor(afero.NewMemMapFs(), 3)

	_, err := comp.Build(context.Background(), palette(16), "/mosaic.jpg")
	assert.Error(t, err)
}

func TestCompositor_BuildCancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	comp := newTestCompositor(fs, 50)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := comp.Build(ctx, palette(4), "/mosaic.jpg")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ioutils.Exists(fs, "/mosaic.jpg"))
}

func TestCompositor_BuildFromCache(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := cache.NewStore(fs, "/covers")
	require.NoError(t, err)

	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}

	// Saved out of order; tiles follow lexical key order.
	require.NoError(t, store.SaveCover("b_second", ioutils.NewCanvas(16, 16, blue), 100))
	require.NoError(t, store.SaveCover("a_first", ioutils.NewCanvas(16, 16, red), 100))
	require.NoError(t, store.SaveMiss("c_missing"))
	require.NoError(t, afero.WriteFile(fs, "/covers/d_corrupt.jpg", []byte("junk"), 0644))

	comp := newTestCompositor(fs, 20)
	res, err := comp.BuildFromCache(context.Background(), store, "/mosaic.png")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Tiles)
	assert.Equal(t, 2, res.Grid)
	assert.Equal(t, []string{"/covers/d_corrupt.jpg"}, res.Skipped)

	f, err := fs.Open("/mosaic.png")
	require.NoError(t, err)
	defer f.Close()

	out, _, err := image.Decode(f)
	require.NoError(t, err)
	assertNear(t, red, out.At(5, 5), "first tile")
	assertNear(t, blue, out.At(15, 5), "second tile")
}
