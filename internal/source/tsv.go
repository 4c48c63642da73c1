package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/handiism/bandcamp-mosaic/internal/model"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Column names required in the header row.
const (
	ColumnArtist = "Artist"
	ColumnAlbum  = "Album"
)

// maxLineLength bounds a single row.
const maxLineLength = 1024 * 1024

// ErrMissingColumns is returned when the header row lacks an Artist or
// Album column, or when there is no header row at all.
var ErrMissingColumns = errors.New("source must have a header row with Artist and Album columns")

// ReadTSV reads album identities from tab-separated text.
//
// The first row is the header; it must name an Artist and an Album column
// (matched case-insensitively, in any position). Other columns are ignored.
// Each line is one row and fields are separated by tabs; quote characters have
// no special meaning and are kept as part of the field.
//
// Decoding is best effort: a UTF-8 or UTF-16 byte order mark selects the
// encoding, UTF-8 is assumed otherwise, and invalid byte sequences are
// dropped. Rows that are too short or have an empty Artist or Album after
// trimming are skipped. The result is de-duplicated by normalized form and
// keeps the order of first appearance.
//
// Example:
//
//	ids, err := source.ReadTSV(strings.NewReader("Artist\tAlbum\nSun Ra\tLanquidity\n"))
//	// ids[0].Artist == "Sun Ra", ids[0].Album == "Lanquidity"
func ReadTSV(r io.Reader) ([]model.AlbumIdentity, error) {
	decoded := transform.NewReader(r, transform.Chain(
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
		runes.Remove(runes.Predicate(func(c rune) bool { return c == utf8.RuneError })),
	))

	lines := bufio.NewScanner(decoded)
	lines.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	header, err := nextRow(lines)
	if err == io.EOF {
		return nil, ErrMissingColumns
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	artistCol, albumCol := columnIndex(header, ColumnArtist), columnIndex(header, ColumnAlbum)
	if artistCol < 0 || albumCol < 0 {
		return nil, fmt.Errorf("%w (header: %q)", ErrMissingColumns, strings.Join(header, ", "))
	}

	var ids []model.AlbumIdentity
	for {
		record, err := nextRow(lines)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		if len(record) <= artistCol || len(record) <= albumCol {
			continue
		}

		id, err := model.NewAlbumIdentity(record[artistCol], record[albumCol])
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return model.Dedupe(ids), nil
}

// ReadTSVFile is ReadTSV on the file at path.
func ReadTSVFile(path string) ([]model.AlbumIdentity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source: %w", err)
	}
	defer f.Close()

	ids, err := ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ids, nil
}

// nextRow returns the fields of the next non-blank line, or io.EOF.
func nextRow(lines *bufio.Scanner) ([]string, error) {
	for lines.Scan() {
		line := strings.TrimSuffix(lines.Text(), "\r")
		if line == "" {
			continue
		}
		return strings.Split(line, "\t"), nil
	}
	if err := lines.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func columnIndex(header []string, name string) int {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i
		}
	}
	return -1
}
