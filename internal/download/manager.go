package download

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/handiism/bandcamp-mosaic/internal/config"
	"github.com/handiism/bandcamp-mosaic/internal/logging"
	"github.com/handiism/bandcamp-mosaic/internal/model"
	"github.com/rs/zerolog"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents an acquisition progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel

	// Done and Total count processed identities, including skipped ones.
	Done  int
	Total int
}

// Summary counts what a Run did.
type Summary struct {
	Total      int // identities passed to Run
	Resolved   int // covers fetched this run
	Missed     int // miss markers written this run
	Cached     int // identities skipped because the cache already had them
	Collisions int // identities skipped because an earlier one had the same key
}

// Processed returns the number of identities that were handled.
func (s Summary) Processed() int {
	return s.Resolved + s.Missed + s.Cached + s.Collisions
}

// CoverAcquirer resolves a single album.
type CoverAcquirer interface {
	Acquire(ctx context.Context, id model.AlbumIdentity) Result
}

// Manager drives acquisition over a list of album identities, one at a time.
//
// Albums are processed strictly sequentially in input order. After each album
// that needed network access, and only if another album follows, the Manager
// sleeps for the configured base delay. Albums already present in the cache
// are skipped without delay.
type Manager struct {
	acquirer   CoverAcquirer
	delay      time.Duration
	onProgress func(ProgressEvent)
	log        zerolog.Logger

	// wait sleeps between albums; replaced in tests.
	wait func(ctx context.Context, d time.Duration) error

	done  atomic.Int32
	total atomic.Int32
}

// NewManager creates a new acquisition Manager.
func NewManager(settings *config.Settings, acquirer CoverAcquirer, onProgress func(ProgressEvent)) *Manager {
	return &Manager{
		acquirer:   acquirer,
		delay:      settings.Delay(),
		onProgress: onProgress,
		log:        logging.With("download"),
		wait:       sleep,
	}
}

// Run acquires covers for ids in order.
//
// Per-album failures never stop the run; they end up as miss markers and are
// counted in Summary.Missed. Run only returns an error when ctx is cancelled,
// in which case the Summary covers the albums handled so far and the album in
// flight is left unresolved.
//
// Example:
//
//	manager := download.NewManager(settings, acquirer, func(e download.ProgressEvent) {
//	    fmt.Printf("[%d/%d] %s\n", e.Done, e.Total, e.Message)
//	})
//	summary, err := manager.Run(ctx, ids)
func (m *Manager) Run(ctx context.Context, ids []model.AlbumIdentity) (Summary, error) {
	summary := Summary{Total: len(ids)}
	m.done.Store(0)
	m.total.Store(int32(len(ids)))

	seen := make(map[string]model.AlbumIdentity, len(ids))

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		key := id.Key()
		if first, dup := seen[key]; dup {
			summary.Collisions++
			m.advance(ProgressEvent{
				Message: fmt.Sprintf("Skipping %s: cache key %q already used by %s", id, key, first),
				Level:   LevelWarning,
			})
			continue
		}
		seen[key] = id

		res := m.acquirer.Acquire(ctx, id)

		switch res.Outcome {
		case OutcomeAborted:
			m.log.Debug().Str("key", key).Msg("acquisition aborted")
			return summary, res.Err

		case OutcomeCached:
			summary.Cached++
			m.advance(ProgressEvent{
				Message: fmt.Sprintf("Already cached (%s): %s", res.Cached, id),
				Level:   LevelVerbose,
			})
			continue

		case OutcomeResolved:
			summary.Resolved++
			m.advance(ProgressEvent{
				Message: fmt.Sprintf("Found cover: %s", id),
				Level:   LevelSuccess,
			})

		case OutcomeMissed:
			summary.Missed++
			level := LevelVerbose
			if res.Reason == MissPersist || res.Reason == MissUnexpected {
				level = LevelError
			}
			m.advance(ProgressEvent{
				Message: fmt.Sprintf("No cover for %s (%s)", id, res.Reason),
				Level:   level,
			})
		}

		if i < len(ids)-1 {
			if err := m.wait(ctx, m.delay); err != nil {
				return summary, err
			}
		}
	}

	m.log.Debug().
		Int("total", summary.Total).
		Int("resolved", summary.Resolved).
		Int("missed", summary.Missed).
		Int("cached", summary.Cached).
		Int("collisions", summary.Collisions).
		Msg("acquisition finished")

	return summary, nil
}

// GetProgress returns the number of processed identities and the total.
func (m *Manager) GetProgress() (done, total int) {
	return int(m.done.Load()), int(m.total.Load())
}

func (m *Manager) advance(event ProgressEvent) {
	event.Done = int(m.done.Add(1))
	event.Total = int(m.total.Load())
	m.progress(event)
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
