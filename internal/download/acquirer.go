package download

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"

	"github.com/handiism/bandcamp-mosaic/internal/bandcamp"
	"github.com/handiism/bandcamp-mosaic/internal/cache"
	"github.com/handiism/bandcamp-mosaic/internal/config"
	"github.com/handiism/bandcamp-mosaic/internal/http"
	ioutils "github.com/handiism/bandcamp-mosaic/internal/io"
	"github.com/handiism/bandcamp-mosaic/internal/logging"
	"github.com/handiism/bandcamp-mosaic/internal/model"
	errs "github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"
)

// Outcome is the result class of one acquisition.
type Outcome int

const (
	// OutcomeCached means the key was already resolved; nothing was fetched.
	OutcomeCached Outcome = iota

	// OutcomeResolved means a cover was found and decoded.
	OutcomeResolved

	// OutcomeMissed means no usable cover was found. See MissReason.
	OutcomeMissed

	// OutcomeAborted means the context ended mid-flight. Nothing is persisted
	// so the album is retried on the next run.
	OutcomeAborted
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeCached:
		return "cached"
	case OutcomeResolved:
		return "resolved"
	case OutcomeMissed:
		return "missed"
	case OutcomeAborted:
		return "aborted"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// MissReason explains an OutcomeMissed.
type MissReason int

const (
	MissNone MissReason = iota
	MissSearchFailed
	MissRateLimited
	MissNoResult
	MissNoImage
	MissImageFetch
	MissDecode
	MissPersist
	MissUnexpected
)

// String implements fmt.Stringer.
func (r MissReason) String() string {
	switch r {
	case MissNone:
		return "none"
	case MissSearchFailed:
		return "search failed"
	case MissRateLimited:
		return "rate limited"
	case MissNoResult:
		return "no result"
	case MissNoImage:
		return "no image reference"
	case MissImageFetch:
		return "image fetch failed"
	case MissDecode:
		return "image decode failed"
	case MissPersist:
		return "could not save cover"
	case MissUnexpected:
		return "unexpected failure"
	default:
		return fmt.Sprintf("MissReason(%d)", int(r))
	}
}

// Result describes what happened to one album.
type Result struct {
	Identity model.AlbumIdentity
	Key      string
	Outcome  Outcome

	// Cached is the cache state found for OutcomeCached.
	Cached cache.State

	// Reason and Err explain OutcomeMissed and OutcomeAborted.
	Reason MissReason
	Err    error

	// ImageURL is the image reference taken from the search page, if any.
	ImageURL string

	// Cover is the decoded image for OutcomeResolved.
	Cover image.Image
}

// CoverSearcher finds the image URL for an album.
type CoverSearcher interface {
	FindCoverURL(ctx context.Context, artist, album string) (string, error)
}

// ImageGetter downloads image bytes.
type ImageGetter interface {
	Get(ctx context.Context, rawURL string, query url.Values) ([]byte, error)
}

// Acquirer fetches the cover for one album and records the outcome in the cache.
//
// Acquirer never returns an error: every failure for an album becomes a
// Result with OutcomeMissed and a MissReason, and Acquire turns that into a
// miss marker.
//
// Example:
//
//	acq := NewAcquirer(searcher, client, store, 90)
//	res := acq.Acquire(ctx, id)
//	switch res.Outcome {
//	case OutcomeResolved: // cover saved
//	case OutcomeMissed:   // miss marker saved, see res.Reason
//	case OutcomeCached:   // nothing to do
//	}
type Acquirer struct {
	searcher CoverSearcher
	images   ImageGetter
	store    *cache.Store
	quality  int
	log      zerolog.Logger
}

// NewAcquirer creates an Acquirer. quality is the JPEG quality of saved covers.
func NewAcquirer(searcher CoverSearcher, images ImageGetter, store *cache.Store, quality int) *Acquirer {
	return &Acquirer{
		searcher: searcher,
		images:   images,
		store:    store,
		quality:  quality,
		log:      logging.With("acquirer"),
	}
}

// NewAcquirerFromSettings wires an Acquirer with an HTTP client and Bandcamp
// searcher configured from settings.
func NewAcquirerFromSettings(settings *config.Settings, store *cache.Store) *Acquirer {
	log := logging.With("http")
	client := http.NewClient(http.Options{
		UserAgent:      settings.UserAgent,
		Timeout:        settings.Timeout(),
		MaxRetries:     settings.MaxRetries,
		InitialBackoff: settings.Backoff(),
		Logger:         &log,
	})

	return NewAcquirer(bandcamp.NewSearcher(client, settings.SearchURL), client, store, settings.CoverQuality)
}

// Acquire resolves one album.
//
// If the cache already holds a cover or a miss marker for the album's key,
// it returns OutcomeCached without any network access. Otherwise it calls
// Fetch and persists the result: a cover artifact on success, a miss marker
// on any failure. OutcomeAborted results are not persisted.
//
// A panic anywhere in the lookup, fetch or save becomes MissUnexpected and
// does not reach the caller.
func (a *Acquirer) Acquire(ctx context.Context, id model.AlbumIdentity) (res Result) {
	key := id.Key()

	defer func() {
		if r := recover(); r != nil {
			res = a.missed(Result{Identity: id, Key: key}, MissUnexpected, fmt.Errorf("panic: %v", r))
			a.saveMiss(&res)
		}
	}()

	if state := a.store.Lookup(key); state.Resolved() {
		return Result{Identity: id, Key: key, Outcome: OutcomeCached, Cached: state}
	}

	res = a.Fetch(ctx, id)

	switch res.Outcome {
	case OutcomeResolved:
		if err := a.store.SaveCover(key, res.Cover, a.quality); err != nil {
			res = a.missed(res, MissPersist, err)
			a.saveMiss(&res)
		}
	case OutcomeMissed:
		a.saveMiss(&res)
	}

	return res
}

// Fetch searches for the album, downloads the first result's image and
// decodes it. It has no side effects on the cache.
func (a *Acquirer) Fetch(ctx context.Context, id model.AlbumIdentity) (res Result) {
	res = Result{Identity: id, Key: id.Key()}

	defer func() {
		if r := recover(); r != nil {
			res = a.missed(res, MissUnexpected, fmt.Errorf("panic: %v", r))
		}
	}()

	imageURL, err := a.searcher.FindCoverURL(ctx, id.Artist, id.Album)
	if err != nil {
		return a.failed(ctx, res, searchReason(err), err)
	}
	res.ImageURL = imageURL

	data, err := a.images.Get(ctx, imageURL, nil)
	if err != nil {
		reason := MissImageFetch
		if errs.GetCode(err) == errs.CodeRateLimit {
			reason = MissRateLimited
		}
		return a.failed(ctx, res, reason, err)
	}

	cover, err := ioutils.DecodeRGBBytes(data)
	if err != nil {
		return a.missed(res, MissDecode, err)
	}

	res.Outcome = OutcomeResolved
	res.Cover = cover
	return res
}

func (a *Acquirer) failed(ctx context.Context, res Result, reason MissReason, err error) Result {
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.Outcome = OutcomeAborted
		res.Err = ctxErr
		return res
	}
	return a.missed(res, reason, err)
}

func (a *Acquirer) missed(res Result, reason MissReason, err error) Result {
	res.Outcome = OutcomeMissed
	res.Reason = reason
	res.Err = err
	res.Cover = nil

	a.log.Debug().
		Str("key", res.Key).
		Str("artist", res.Identity.Artist).
		Str("album", res.Identity.Album).
		Stringer("reason", reason).
		Int("status", http.StatusCode(err)).
		Err(err).
		Msg("cover not found")

	return res
}

func (a *Acquirer) saveMiss(res *Result) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic saving miss marker: %v", r)
			a.log.Error().Str("key", res.Key).Err(err).Msg("failed to save miss marker")
			res.Err = errors.Join(res.Err, err)
		}
	}()

	if err := a.store.SaveMiss(res.Key); err != nil {
		a.log.Error().Str("key", res.Key).Err(err).Msg("failed to save miss marker")
		res.Err = errors.Join(res.Err, err)
	}
}

func searchReason(err error) MissReason {
	switch {
	case errors.Is(err, bandcamp.ErrNoResults):
		return MissNoResult
	case errors.Is(err, bandcamp.ErrNoImage):
		return MissNoImage
	case errs.GetCode(err) == errs.CodeRateLimit:
		return MissRateLimited
	default:
		return MissSearchFailed
	}
}
