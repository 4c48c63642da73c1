// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Atomic file writes and empty marker files on an afero.Fs
//   - Directory creation
//   - Decoding covers into opaque RGB images
//   - Exact resizing and JPEG/PNG encoding
//
// # File Operations
//
//	fs := afero.NewOsFs()
//
//	// Write via temp file + rename
//	err := ioutils.WriteFileAtomic(fs, "/cache/a.jpg", func(w io.Writer) error { ... })
//
//	// Zero-byte marker
//	err := ioutils.Touch(fs, "/cache/a.jpg.miss")
//
// # Image Processing
//
//	img, _ := ioutils.DecodeRGBBytes(data)
//	canvas := ioutils.NewCanvas(400, 400, color.Black)
//	ioutils.ScaleInto(canvas, image.Rect(0, 0, 200, 200), img)
//	err := ioutils.EncodeJPEG(w, canvas, 90)
package ioutils
