package cache

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ioutils "github.com/handiism/bandcamp-mosaic/internal/io"
	"github.com/spf13/afero"
)

const (
	coverExt = ".jpg"
	missExt  = ".miss"
)

// State is what the cache knows about a key.
type State int

const (
	// StateUnresolved means neither a cover nor a miss marker exists.
	StateUnresolved State = iota

	// StateCover means a cover artifact exists.
	StateCover

	// StateMiss means a previous attempt failed and left a miss marker.
	StateMiss
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateCover:
		return "cover"
	case StateMiss:
		return "miss"
	default:
		return "unresolved"
	}
}

// Resolved reports whether the key needs no further work.
func (s State) Resolved() bool {
	return s != StateUnresolved
}

// Store is a flat directory of cover artifacts and miss markers.
//
// For a key k the directory holds at most one of:
//   - k.jpg       a decoded cover re-encoded as JPEG
//   - k.jpg.miss  a zero-byte marker for a failed lookup
//
// Writes go through a temp file and a rename, and saving one kind of entry
// removes the other, so a key is never left with both. Distinct keys touch
// disjoint files.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore opens (creating if needed) the cache directory dir on fs.
func NewStore(fs afero.Fs, dir string) (*Store, error) {
	if err := ioutils.EnsureDir(fs, dir); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
	}
	return OpenStore(fs, dir), nil
}

// OpenStore opens dir without creating it. A missing directory reads as an
// empty cache. Pair it with afero.NewReadOnlyFs to inspect a cache without
// any chance of changing it.
func OpenStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// CoverPath returns the artifact path for key.
func (s *Store) CoverPath(key string) string {
	return filepath.Join(s.dir, key+coverExt)
}

// MissPath returns the miss marker path for key.
func (s *Store) MissPath(key string) string {
	return s.CoverPath(key) + missExt
}

// Lookup reports the state of key without touching the network.
func (s *Store) Lookup(key string) State {
	if ioutils.Exists(s.fs, s.CoverPath(key)) {
		return StateCover
	}
	if ioutils.Exists(s.fs, s.MissPath(key)) {
		return StateMiss
	}
	return StateUnresolved
}

// SaveCover encodes img as JPEG at quality and stores it under key, then
// removes any miss marker for key.
func (s *Store) SaveCover(key string, img image.Image, quality int) error {
	err := ioutils.WriteFileAtomic(s.fs, s.CoverPath(key), func(w io.Writer) error {
		return ioutils.EncodeJPEG(w, img, quality)
	})
	if err != nil {
		return fmt.Errorf("saving cover %s: %w", key, err)
	}
	return s.remove(s.MissPath(key))
}

// SaveMiss records a failed lookup for key. An existing cover for key is left
// untouched and no marker is written, so a successful result is never
// downgraded.
func (s *Store) SaveMiss(key string) error {
	if ioutils.Exists(s.fs, s.CoverPath(key)) {
		return nil
	}
	if err := ioutils.Touch(s.fs, s.MissPath(key)); err != nil {
		return fmt.Errorf("saving miss marker %s: %w", key, err)
	}
	return nil
}

// ClearMisses deletes every miss marker so the next run retries those albums.
// It returns the number of markers removed.
func (s *Store) ClearMisses() (int, error) {
	names, err := s.list(func(name string) bool { return strings.HasSuffix(name, coverExt+missExt) })
	if err != nil {
		return 0, err
	}
	for _, name := range names {
		if err := s.remove(filepath.Join(s.dir, name)); err != nil {
			return 0, err
		}
	}
	return len(names), nil
}

// Covers returns the paths of all cover artifacts in lexical order of their
// file names (and therefore of their keys).
func (s *Store) Covers() ([]string, error) {
	names, err := s.list(func(name string) bool { return strings.HasSuffix(name, coverExt) })
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(s.dir, name)
	}
	return paths, nil
}

// Misses returns the keys that carry a miss marker, sorted.
func (s *Store) Misses() ([]string, error) {
	names, err := s.list(func(name string) bool { return strings.HasSuffix(name, coverExt+missExt) })
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = strings.TrimSuffix(name, coverExt+missExt)
	}
	return keys, nil
}

// LoadCover decodes the artifact at path into an opaque RGB image.
func (s *Store) LoadCover(path string) (*image.RGBA, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ioutils.DecodeRGB(f)
}

// LoadCovers decodes every cover artifact in Covers order. Artifacts that fail
// to decode are skipped; their paths are returned separately.
func (s *Store) LoadCovers() (images []image.Image, skipped []string, err error) {
	paths, err := s.Covers()
	if err != nil {
		return nil, nil, err
	}

	for _, path := range paths {
		img, err := s.LoadCover(path)
		if err != nil {
			skipped = append(skipped, path)
			continue
		}
		images = append(images, img)
	}
	return images, skipped, nil
}

func (s *Store) list(keep func(name string) bool) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing cache directory %s: %w", s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !keep(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) remove(path string) error {
	if err := s.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
