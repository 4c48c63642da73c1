// Package cache persists the outcome of cover lookups on disk.
//
// Each album key maps to either a cover artifact (<key>.jpg) or a zero-byte
// miss marker (<key>.jpg.miss) in one flat directory. Either one means the
// album is resolved and must not be fetched again; only an explicit
// ClearMisses makes missed albums eligible for another attempt.
//
//	store, err := cache.NewStore(afero.NewOsFs(), "album_covers")
//	switch store.Lookup(key) {
//	case cache.StateCover, cache.StateMiss:
//	    // skip
//	case cache.StateUnresolved:
//	    // fetch, then SaveCover or SaveMiss
//	}
//
// Keys are slugs of artist and album; two albums that differ only in
// punctuation share a key and therefore share an entry.
package cache
