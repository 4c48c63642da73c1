// Package config provides configuration management for bandcamp-mosaic.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Validation and duration helpers for other packages
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Caches covers in ./album_covers
//	// Waits 2s between albums, retries 429 responses 5 times
//	// Writes a 2000x2000 mosaic
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.CacheDir = "/var/cache/covers"
//	err := settings.Save("/path/to/config.json")
package config
