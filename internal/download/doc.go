// Package download provides the acquisition logic that turns a list of
// albums into cached cover images.
//
// # Acquirer
//
// The Acquirer handles a single album:
//
//  1. Look the album's cache key up in the cache; stop if resolved
//  2. Search Bandcamp and take the first result's image reference
//  3. Download and decode the image
//  4. Save the cover, or a miss marker on any failure
//
// Every per-album failure is reported as a Result with OutcomeMissed and a
// MissReason rather than an error.
//
// # Manager
//
// The Manager runs the Acquirer over all albums sequentially, pausing for
// settings.BaseDelay after each album that needed the network:
//
//	store, _ := cache.NewStore(afero.NewOsFs(), settings.CacheDir)
//	acquirer := download.NewAcquirerFromSettings(settings, store)
//
//	manager := download.NewManager(settings, acquirer, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	summary, err := manager.Run(ctx, ids)
//	if err != nil {
//	    log.Fatal(err) // cancelled
//	}
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	    Done    int
//	    Total   int
//	}
//
// # Resuming
//
// Because resolved albums are skipped without network access, an interrupted
// run can simply be started again. Deleting the miss markers (see
// cache.Store.ClearMisses) makes the next run retry failed albums.
package download
