// Package http provides the HTTP client used to talk to the Bandcamp catalog.
//
// The Client in this package handles:
//   - User-Agent headers required by the catalog's usage policy
//   - Timeout handling
//   - Exponential backoff on 429 Too Many Requests
//   - Error classification with github.com/jmgilman/go/errors codes
//
// # Basic Usage
//
//	client := http.NewClient(http.Options{
//	    UserAgent:      "Mozilla/5.0 (compatible; AlbumArtMosaic/1.0)",
//	    MaxRetries:     5,
//	    InitialBackoff: time.Second,
//	})
//
//	// Fetch the search page
//	page, err := client.Get(ctx, "https://bandcamp.com/search", url.Values{"q": {"Sun Ra"}})
//
//	// Fetch image bytes
//	data, err := client.Get(ctx, imageURL, nil)
//
// # Errors
//
// Every error other than context cancellation carries an error code:
//
//	switch errs.GetCode(err) {
//	case errs.CodeRateLimit:   // 429 on every attempt
//	case errs.CodeNotFound:    // 404
//	case errs.CodeNetwork:     // no response at all
//	}
//
// StatusCode(err) recovers the HTTP status when there was one.
package http
