package source

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/handiism/bandcamp-mosaic/internal/audio"
	"github.com/handiism/bandcamp-mosaic/internal/logging"
	"github.com/handiism/bandcamp-mosaic/internal/model"
)

// ScanTags walks root for .mp3 files and builds album identities from their
// ID3 tags: the album artist (or the lead artist if there is none) and the
// album title.
//
// Files are visited in lexical path order. Files whose tags cannot be read
// or that lack an artist or album are skipped. The result follows the same
// de-duplication rules as ReadTSV, so a whole album directory contributes a
// single identity.
func ScanTags(root string) ([]model.AlbumIdentity, error) {
	log := logging.With("source")

	var ids []model.AlbumIdentity
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".mp3") {
			return nil
		}

		tag, err := audio.ReadAlbumTag(path)
		if err != nil {
			log.Debug().Str("path", path).Err(err).Msg("skipping file with unreadable tags")
			return nil
		}

		id, err := model.NewAlbumIdentity(tag.DisplayArtist(), tag.Album)
		if err != nil {
			log.Debug().Str("path", path).Msg("skipping file without artist or album tag")
			return nil
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	return model.Dedupe(ids), nil
}
