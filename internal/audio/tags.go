package audio

import (
	"fmt"
	"strings"

	"github.com/bogem/id3v2"
)

// AlbumTag holds the album-level ID3 fields of one MP3 file.
type AlbumTag struct {
	Artist      string // TPE1, lead artist
	AlbumArtist string // TPE2, band/orchestra/accompaniment
	Album       string // TALB
}

// DisplayArtist returns the album artist, falling back to the lead artist.
func (t AlbumTag) DisplayArtist() string {
	if t.AlbumArtist != "" {
		return t.AlbumArtist
	}
	return t.Artist
}

// ReadAlbumTag reads the album-level ID3 frames of the MP3 file at path.
//
// Files without an ID3v2 tag yield an empty AlbumTag and no error.
//
// Example:
//
//	tag, err := audio.ReadAlbumTag("/music/Sun Ra/Lanquidity/01.mp3")
//	if err == nil && tag.Album != "" {
//	    fmt.Println(tag.DisplayArtist(), "-", tag.Album)
//	}
func ReadAlbumTag(path string) (AlbumTag, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return AlbumTag{}, fmt.Errorf("reading tags of %s: %w", path, err)
	}
	defer tag.Close()

	return AlbumTag{
		Artist:      strings.TrimSpace(tag.Artist()),
		AlbumArtist: strings.TrimSpace(tag.GetTextFrame("TPE2").Text),
		Album:       strings.TrimSpace(tag.Album()),
	}, nil
}

// WriteAlbumTag sets the album-level frames of the MP3 file at path, creating
// a tag if the file has none. Empty fields are left untouched.
func WriteAlbumTag(path string, t AlbumTag) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if t.Artist != "" {
		tag.SetArtist(t.Artist)
	}
	if t.AlbumArtist != "" {
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, t.AlbumArtist)
	}
	if t.Album != "" {
		tag.SetAlbum(t.Album)
	}

	return tag.Save()
}
