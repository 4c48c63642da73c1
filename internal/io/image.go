package ioutils

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	// Decoders for cover formats served by catalogs and left in caches.
	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
)

// DecodeRGB decodes image data and flattens it onto an opaque black
// background, so every pixel ends up fully opaque (three color channels
// carry all information).
//
// Supported formats: JPEG, PNG, GIF, BMP, TIFF and WebP.
//
// Example:
//
//	img, err := DecodeRGB(bytes.NewReader(data))
//	if err != nil {
//	    // corrupt or unrecognized image
//	}
func DecodeRGB(r io.Reader) (*image.RGBA, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}
	return ToRGB(src), nil
}

// DecodeRGBBytes is DecodeRGB for an in-memory image.
func DecodeRGBBytes(data []byte) (*image.RGBA, error) {
	return DecodeRGB(bytes.NewReader(data))
}

// ToRGB copies src into a new opaque RGBA image whose bounds start at (0,0).
func ToRGB(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := NewCanvas(b.Dx(), b.Dy(), color.Black)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

// NewCanvas returns a width x height image filled with bg.
func NewCanvas(width, height int, bg color.Color) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return dst
}

// ScaleInto scales src to exactly fill rect of dst, ignoring aspect ratio,
// with the Catmull-Rom kernel. Callers may scale into disjoint rectangles of
// the same dst concurrently.
func ScaleInto(dst draw.Image, rect image.Rectangle, src image.Image) {
	draw.CatmullRom.Scale(dst, rect, src, src.Bounds(), draw.Src, nil)
}

// EncodeJPEG writes img as JPEG with the given quality (1-100).
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}
	return nil
}

// EncodeForPath writes img in the format implied by path's extension:
// PNG for ".png", JPEG with the given quality for anything else.
//
// Example:
//
//	err := EncodeForPath(w, "mosaic.png", img, 95) // PNG, quality ignored
//	err := EncodeForPath(w, "mosaic.jpg", img, 95) // JPEG, quality 95
func EncodeForPath(w io.Writer, path string, img image.Image, quality int) error {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(w, img); err != nil {
			return fmt.Errorf("encoding image: %w", err)
		}
		return nil
	}
	return EncodeJPEG(w, img, quality)
}
