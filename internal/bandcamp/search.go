package bandcamp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/handiism/bandcamp-mosaic/internal/logging"
	"github.com/rs/zerolog"
)

// DefaultSearchURL is Bandcamp's public search page.
const DefaultSearchURL = "https://bandcamp.com/search"

// itemTypeAlbum restricts search results to albums.
const itemTypeAlbum = "a"

var (
	// ErrNoResults is returned when the search page lists no result entries.
	ErrNoResults = errors.New("no search results")

	// ErrNoImage is returned when the first result carries no image reference.
	ErrNoImage = errors.New("search result has no image")
)

// Getter fetches a URL with query parameters. *http.Client from this module
// satisfies it.
type Getter interface {
	Get(ctx context.Context, rawURL string, query url.Values) ([]byte, error)
}

// SearchResult is one entry of a Bandcamp search results page.
type SearchResult struct {
	// Type is the item type label, e.g. "ALBUM".
	Type string

	// Title is the album (or track/artist) name.
	Title string

	// Artist is the "by ..." line without the "by " prefix.
	Artist string

	// URL is the item page.
	URL string

	// ImageURL is the thumbnail shown next to the result. Empty if none.
	ImageURL string
}

// Searcher queries Bandcamp's search page and extracts cover image URLs.
//
// Searcher issues one GET per lookup with the parameters
//
//	q=<artist> <album>&item_type=a
//
// and takes the image of the first result entry. The first result is a
// heuristic: Bandcamp ranks by relevance and there is no guarantee it is
// the album that was asked for.
//
// Example usage:
//
//	searcher := NewSearcher(client, DefaultSearchURL)
//
//	imageURL, err := searcher.FindCoverURL(ctx, "Sun Ra", "Jazz in Silhouette")
//	if errors.Is(err, ErrNoResults) {
//	    // nothing found, record a miss
//	}
type Searcher struct {
	client    Getter
	searchURL string
	log       zerolog.Logger
}

// NewSearcher creates a Searcher that sends requests through client.
//
// An empty searchURL selects DefaultSearchURL.
func NewSearcher(client Getter, searchURL string) *Searcher {
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	return &Searcher{
		client:    client,
		searchURL: searchURL,
		log:       logging.With("bandcamp"),
	}
}

// SearchParams returns the query parameters for an album search.
func SearchParams(artist, album string) url.Values {
	return url.Values{
		"q":         {artist + " " + album},
		"item_type": {itemTypeAlbum},
	}
}

// FindCoverURL searches for an album and returns the absolute URL of the
// first result's image.
//
// With debug logging enabled, the title and artist of the result that was
// taken are logged so wrong matches can be spotted.
//
// Returns:
//   - the client's error if the search request failed
//   - ErrNoResults if the page has no result entries
//   - ErrNoImage if the first image reference is empty
func (s *Searcher) FindCoverURL(ctx context.Context, artist, album string) (string, error) {
	body, err := s.client.Get(ctx, s.searchURL, SearchParams(artist, album))
	if err != nil {
		return "", err
	}

	doc, err := parsePage(bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	ref, err := firstImage(doc)
	if err != nil {
		return "", err
	}

	if e := s.log.Debug(); e.Enabled() {
		e = e.Str("query", artist+" "+album)
		for _, result := range searchResults(doc) {
			if result.ImageURL != "" {
				e = e.Str("title", result.Title).Str("by", result.Artist).Str("url", result.URL)
				break
			}
		}
		e.Msg("taking first search result")
	}

	return resolveURL(s.searchURL, ref)
}

// FirstImageURL returns the src of the first image inside any search result
// entry ("li.searchresult img").
//
// Returns ErrNoResults when no result carries an image element and ErrNoImage
// when the element exists but its src is empty.
func FirstImageURL(r io.Reader) (string, error) {
	doc, err := parsePage(r)
	if err != nil {
		return "", err
	}
	return firstImage(doc)
}

// ParseSearchResults extracts every result entry from a search page.
//
// Entries are returned in page order. Fields that are missing from the markup
// are left empty.
func ParseSearchResults(r io.Reader) ([]SearchResult, error) {
	doc, err := parsePage(r)
	if err != nil {
		return nil, err
	}
	return searchResults(doc), nil
}

func parsePage(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}
	return doc, nil
}

func firstImage(doc *goquery.Document) (string, error) {
	img := doc.Find("li.searchresult img").First()
	if img.Length() == 0 {
		return "", ErrNoResults
	}

	src := strings.TrimSpace(img.AttrOr("src", ""))
	if src == "" {
		return "", ErrNoImage
	}

	return src, nil
}

func searchResults(doc *goquery.Document) []SearchResult {
	var results []SearchResult
	doc.Find("li.searchresult").Each(func(_ int, li *goquery.Selection) {
		result := SearchResult{
			Type:     cleanText(li.Find(".itemtype").First().Text()),
			Title:    cleanText(li.Find(".heading").First().Text()),
			Artist:   strings.TrimPrefix(cleanText(li.Find(".subhead").First().Text()), "by "),
			ImageURL: strings.TrimSpace(li.Find("img").First().AttrOr("src", "")),
		}

		if href, ok := li.Find(".heading a").First().Attr("href"); ok {
			result.URL = strings.TrimSpace(href)
		} else {
			result.URL = cleanText(li.Find(".itemurl").First().Text())
		}

		results = append(results, result)
	})
	return results
}

// resolveURL makes ref absolute against base. Protocol-relative references
// ("//f4.bcbits.com/...") inherit the base scheme.
func resolveURL(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid image reference %q: %w", ref, err)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// cleanText collapses the whitespace Bandcamp indents its markup with.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
