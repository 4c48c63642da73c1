package model

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyField is returned by NewAlbumIdentity when the artist or album
// is blank after trimming.
var ErrEmptyField = errors.New("artist and album must not be empty")

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugRun    = regexp.MustCompile(`[^a-z0-9]+`)
)

// AlbumIdentity names one album to find a cover for.
//
// AlbumIdentity keeps the raw artist and album text exactly as read (after
// trimming) for display and querying, plus a normalized form that is used
// only to decide whether two identities refer to the same album:
//   - Artist and Album are sent to the search endpoint
//   - Key addresses the cached cover or miss marker on disk
//   - two identities are the same album when Equal reports true
//
// Build identities with NewAlbumIdentity; the zero value is not valid.
//
// Example:
//
//	id, err := NewAlbumIdentity("  Sun Ra & His Arkestra ", "Jazz in Silhouette")
//	// id.Artist = "Sun Ra & His Arkestra"
//	// id.Key()  = "sun_ra_his_arkestra_jazz_in_silhouette"
type AlbumIdentity struct {
	// Artist is the trimmed artist name as read from the source.
	Artist string

	// Album is the trimmed album title as read from the source.
	Album string

	normArtist string
	normAlbum  string
}

// NewAlbumIdentity trims both fields and builds an identity.
//
// Returns ErrEmptyField if either field is empty after trimming.
func NewAlbumIdentity(artist, album string) (AlbumIdentity, error) {
	artist = strings.TrimSpace(artist)
	album = strings.TrimSpace(album)
	if artist == "" || album == "" {
		return AlbumIdentity{}, ErrEmptyField
	}

	return AlbumIdentity{
		Artist:     artist,
		Album:      album,
		normArtist: Normalize(artist),
		normAlbum:  Normalize(album),
	}, nil
}

// Equal reports whether both identities normalize to the same artist and album.
func (a AlbumIdentity) Equal(other AlbumIdentity) bool {
	return a.normArtist == other.normArtist && a.normAlbum == other.normAlbum
}

// Key returns the cache key for this album.
func (a AlbumIdentity) Key() string {
	return CacheKey(a.Artist, a.Album)
}

// Query returns the search text sent to the catalog: "{artist} {album}".
func (a AlbumIdentity) Query() string {
	return a.Artist + " " + a.Album
}

// String implements fmt.Stringer.
func (a AlbumIdentity) String() string {
	return a.Artist + " - " + a.Album
}

func (a AlbumIdentity) dedupeKey() string {
	return a.normArtist + "\x00" + a.normAlbum
}

// Dedupe drops identities that normalize to an earlier entry.
//
// The first occurrence wins and the relative order of the survivors is kept,
// so iteration order is stable for a given input.
func Dedupe(ids []AlbumIdentity) []AlbumIdentity {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]AlbumIdentity, 0, len(ids))
	for _, id := range ids {
		k := id.dedupeKey()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

// Normalize collapses whitespace runs to a single space, trims and lower-cases.
//
// The result is only meant for equality checks, never for display or queries.
//
// Example:
//
//	Normalize("  Miles   DAVIS\t") // Returns "miles davis"
func Normalize(text string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(text), " "))
}

// Slugify produces a filesystem-safe token from text.
//
// The text is lower-cased, every maximal run of characters outside [a-z0-9]
// becomes a single underscore and leading/trailing underscores are stripped.
// Distinct inputs may share a slug (for example when they differ only in
// punctuation); callers that key storage by slug accept that.
//
// Example:
//
//	Slugify("Sun Ra & His Arkestra") // Returns "sun_ra_his_arkestra"
func Slugify(text string) string {
	return strings.Trim(nonSlugRun.ReplaceAllString(strings.ToLower(text), "_"), "_")
}

// CacheKey derives the on-disk key for an artist/album pair.
//
// Pairs with no [a-z0-9] characters at all (for example titles written only
// in CJK or Cyrillic) have an empty slug; they get a key made from a hash of
// their normalized text instead, so each such album still has its own file.
//
// Example:
//
//	CacheKey("Sun Ra", "Lanquidity")   // Returns "sun_ra_lanquidity"
//	CacheKey("坂本龍一", "音楽図鑑")       // Returns "h_" followed by 16 hex digits
func CacheKey(artist, album string) string {
	if slug := Slugify(artist + "_" + album); slug != "" {
		return slug
	}
	sum := sha256.Sum256([]byte(Normalize(artist) + "\x00" + Normalize(album)))
	return hashKeyPrefix + hex.EncodeToString(sum[:8])
}

const hashKeyPrefix = "h_"
