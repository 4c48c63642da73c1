package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Settings holds all configuration options.
type Settings struct {
	// Paths
	CacheDir   string `json:"cache_dir"`
	OutputPath string `json:"output_path"`

	// Acquisition settings
	SearchURL      string  `json:"search_url"`
	UserAgent      string  `json:"user_agent"`
	BaseDelay      float64 `json:"base_delay"`      // seconds between albums
	MaxRetries     int     `json:"max_retries"`     // attempts per HTTP call on 429
	InitialBackoff float64 `json:"initial_backoff"` // seconds, doubled after each 429
	RequestTimeout float64 `json:"request_timeout"` // seconds
	CoverQuality   int     `json:"cover_quality"`

	// Mosaic settings
	FinalSize     int `json:"final_size"`
	MosaicQuality int `json:"mosaic_quality"`
	MosaicWorkers int `json:"mosaic_workers"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		CacheDir:   "album_covers",
		OutputPath: "bandcamp_mosaic_2000.jpg",

		SearchURL:      "https://bandcamp.com/search",
		UserAgent:      "Mozilla/5.0 (compatible; AlbumArtMosaic/1.0)",
		BaseDelay:      2.0,
		MaxRetries:     5,
		InitialBackoff: 1.0,
		RequestTimeout: 15.0,
		CoverQuality:   90,

		FinalSize:     2000,
		MosaicQuality: 95,
		MosaicWorkers: 4,
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports the first setting that cannot be used.
func (s *Settings) Validate() error {
	switch {
	case s.CacheDir == "":
		return fmt.Errorf("cache_dir must be set")
	case s.OutputPath == "":
		return fmt.Errorf("output_path must be set")
	case s.SearchURL == "":
		return fmt.Errorf("search_url must be set")
	case s.UserAgent == "":
		return fmt.Errorf("user_agent must be set")
	case s.MaxRetries < 1:
		return fmt.Errorf("max_retries must be at least 1, got %d", s.MaxRetries)
	case s.BaseDelay < 0 || s.InitialBackoff < 0:
		return fmt.Errorf("delays must not be negative")
	case s.RequestTimeout <= 0:
		return fmt.Errorf("request_timeout must be positive")
	case s.FinalSize < 1:
		return fmt.Errorf("final_size must be positive, got %d", s.FinalSize)
	case !validQuality(s.CoverQuality) || !validQuality(s.MosaicQuality):
		return fmt.Errorf("quality settings must be within 1..100")
	case s.MosaicWorkers < 1:
		return fmt.Errorf("mosaic_workers must be at least 1")
	}
	return nil
}

// Delay returns BaseDelay as a time.Duration.
func (s *Settings) Delay() time.Duration {
	return seconds(s.BaseDelay)
}

// Backoff returns InitialBackoff as a time.Duration.
func (s *Settings) Backoff() time.Duration {
	return seconds(s.InitialBackoff)
}

// Timeout returns RequestTimeout as a time.Duration.
func (s *Settings) Timeout() time.Duration {
	return seconds(s.RequestTimeout)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func validQuality(q int) bool {
	return q >= 1 && q <= 100
}
