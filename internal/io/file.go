package ioutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileMode is the permission of files created by WriteFileAtomic and Touch.
const FileMode os.FileMode = 0644

// WriteFileAtomic writes a file by streaming write into a temporary sibling
// and renaming it over path once write succeeded.
//
// Readers therefore never observe a partially written file: path either does
// not exist, holds its previous content, or holds the complete new content.
// The temporary file is removed on any failure. The result has mode FileMode.
//
// Example:
//
//	err := WriteFileAtomic(fs, "/cache/sun_ra.jpg", func(w io.Writer) error {
//	    return EncodeJPEG(w, img, 90)
//	})
func WriteFileAtomic(fs afero.Fs, path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = fs.Remove(tmpName)
		}
	}()

	if err = write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = fs.Chmod(tmpName, FileMode); err != nil {
		return err
	}

	return fs.Rename(tmpName, path)
}

// Touch creates an empty file at path, truncating any existing content.
func Touch(fs afero.Fs, path string) error {
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FileMode)
	if err != nil {
		return err
	}
	return f.Close()
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(fs afero.Fs, path string) error {
	return fs.MkdirAll(path, 0755)
}

// Exists reports whether path exists. Errors other than "not exist" count as
// existing so that callers never overwrite something they could not inspect.
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil || !os.IsNotExist(err)
}
