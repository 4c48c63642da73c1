package source

import (
	"fmt"
	"os"

	"github.com/handiism/bandcamp-mosaic/internal/model"
)

// Load reads album identities from path. A directory is scanned for tagged
// MP3 files with ScanTags; anything else is read as a TSV export.
func Load(path string) ([]model.AlbumIdentity, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening source: %w", err)
	}
	if info.IsDir() {
		return ScanTags(path)
	}
	return ReadTSVFile(path)
}
