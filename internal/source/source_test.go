package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/bandcamp-mosaic/internal/audio"
	"github.com/handiism/bandcamp-mosaic/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func pairs(ids []model.AlbumIdentity) [][2]string {
	out := make([][2]string, len(ids))
	for i, id := range ids {
		out[i] = [2]string{id.Artist, id.Album}
	}
	return out
}

func TestReadTSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][2]string
	}{
		{
			name:  "basic",
			input: "Artist\tAlbum\nSun Ra\tLanquidity\nAlice Coltrane\tJourney in Satchidananda\n",
			want:  [][2]string{{"Sun Ra", "Lanquidity"}, {"Alice Coltrane", "Journey in Satchidananda"}},
		},
		{
			name:  "extra and reordered columns",
			input: "Name\tAlbum\tGenre\tArtist\nTrack 1\tLanquidity\tJazz\tSun Ra\n",
			want:  [][2]string{{"Sun Ra", "Lanquidity"}},
		},
		{
			name:  "fields are trimmed",
			input: "Artist\tAlbum\n  Sun Ra \t Lanquidity  \n",
			want:  [][2]string{{"Sun Ra", "Lanquidity"}},
		},
		{
			name:  "empty and short rows skipped",
			input: "Artist\tAlbum\n\tLanquidity\nSun Ra\t   \nlonely\n\nSun Ra\tLanquidity\n",
			want:  [][2]string{{"Sun Ra", "Lanquidity"}},
		},
		{
			name:  "duplicates differing in case and whitespace",
			input: "Artist\tAlbum\nSun Ra\tLanquidity\nSUN  RA\tlanquidity\nSun Ra\tLanquidity\n",
			want:  [][2]string{{"Sun Ra", "Lanquidity"}},
		},
		{
			name:  "stray quotes",
			input: "Artist\tAlbum\nThe \"Band\"\t12\" Singles\n",
			want:  [][2]string{{"The \"Band\"", "12\" Singles"}},
		},
		{
			name:  "leading quote does not swallow later rows",
			input: "Artist\tAlbum\nDavid Bowie\t\"Heroes\" (2017 Remaster)\nSun Ra\tLanquidity\nAlice Coltrane\tJourney in Satchidananda\n",
			want:  [][2]string{{"David Bowie", "\"Heroes\" (2017 Remaster)"}, {"Sun Ra", "Lanquidity"}, {"Alice Coltrane", "Journey in Satchidananda"}},
		},
		{
			name:  "unterminated quote",
			input: "Artist\tAlbum\n\"Weird Al\tPolka Party!\nSun Ra\tLanquidity\n",
			want:  [][2]string{{"\"Weird Al", "Polka Party!"}, {"Sun Ra", "Lanquidity"}},
		},
		{
			name:  "CRLF and UTF-8 BOM",
			input: "\xEF\xBB\xBFArtist\tAlbum\r\nSigur Rós\tÁgætis byrjun\r\n",
			want:  [][2]string{{"Sigur Rós", "Ágætis byrjun"}},
		},
		{
			name:  "invalid bytes dropped",
			input: "Artist\tAlbum\nSigur R\xffos\tTakk\xfe\n",
			want:  [][2]string{{"Sigur Ros", "Takk"}},
		},
		{
			name:  "header only",
			input: "Artist\tAlbum\n",
			want:  [][2]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := ReadTSV(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, pairs(ids))
		})
	}
}

func TestReadTSV_UTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	input, err := enc.String("Name\tArtist\tAlbum\r\nTrack\tBjörk\tHomogenic\r\n")
	require.NoError(t, err)

	ids, err := ReadTSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"Björk", "Homogenic"}}, pairs(ids))
}

func TestReadTSV_MissingColumns(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no album column", "Artist\tTitle\nSun Ra\tSpace Is the Place\n"},
		{"comma separated", "Artist,Album\nSun Ra,Lanquidity\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrMissingColumns)
		})
	}
}

func TestReadTSVFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "library.tsv")
	require.NoError(t, os.WriteFile(path, []byte("Artist\tAlbum\nSun Ra\tLanquidity\n"), 0644))

	ids, err := ReadTSVFile(path)
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	_, err = ReadTSVFile(filepath.Join(dir, "missing.tsv"))
	assert.Error(t, err)
}

func writeMP3(t *testing.T, path string, tag audio.AlbumTag) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0644))
	require.NoError(t, audio.WriteAlbumTag(path, tag))
}

func TestScanTags(t *testing.T) {
	root := t.TempDir()

	writeMP3(t, filepath.Join(root, "Sun Ra", "Lanquidity", "01.mp3"), audio.AlbumTag{Artist: "Sun Ra", Album: "Lanquidity"})
	writeMP3(t, filepath.Join(root, "Sun Ra", "Lanquidity", "02.mp3"), audio.AlbumTag{Artist: "Sun Ra", Album: "Lanquidity"})
	writeMP3(t, filepath.Join(root, "Various", "Comp", "01.MP3"), audio.AlbumTag{
		Artist:      "Guest",
		AlbumArtist: "Various Artists",
		Album:       "Spiritual Jazz",
	})
	writeMP3(t, filepath.Join(root, "Untagged", "01.mp3"), audio.AlbumTag{Artist: "Nobody"})
	require.NoError(t, os.WriteFile(filepath.Join(root, "cover.jpg"), []byte("jpeg"), 0644))

	ids, err := ScanTags(root)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{
		{"Sun Ra", "Lanquidity"},
		{"Various Artists", "Spiritual Jazz"},
	}, pairs(ids))
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeMP3(t, filepath.Join(root, "music", "01.mp3"), audio.AlbumTag{Artist: "Sun Ra", Album: "Lanquidity"})

	tsv := filepath.Join(root, "library.tsv")
	require.NoError(t, os.WriteFile(tsv, []byte("Artist\tAlbum\nBjörk\tHomogenic\n"), 0644))

	ids, err := Load(filepath.Join(root, "music"))
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"Sun Ra", "Lanquidity"}}, pairs(ids))

	ids, err = Load(tsv)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"Björk", "Homogenic"}}, pairs(ids))

	_, err = Load(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestScanTags_MissingRoot(t *testing.T) {
	_, err := ScanTags(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
