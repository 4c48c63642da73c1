package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/handiism/bandcamp-mosaic/internal/cache"
	"github.com/handiism/bandcamp-mosaic/internal/config"
	"github.com/handiism/bandcamp-mosaic/internal/download"
	"github.com/handiism/bandcamp-mosaic/internal/logging"
	"github.com/handiism/bandcamp-mosaic/internal/mosaic"
	"github.com/handiism/bandcamp-mosaic/internal/source"
	"github.com/spf13/afero"
)

func main() {
	// Command line flags
	var (
		inputFlag       = flag.String("input", "", "Album list: TSV export with Artist/Album columns, or a folder of MP3 files")
		configFlag      = flag.String("config", "", "Path to config file")
		writeConfigFlag = flag.String("write-config", "", "Write the effective settings to this path and exit")
		cacheFlag       = flag.String("cache", "", "Cover cache directory (overrides config)")
		outputFlag      = flag.String("output", "", "Mosaic output path, .jpg or .png (overrides config)")
		sizeFlag        = flag.Int("size", 0, "Mosaic edge length in pixels (overrides config)")
		delayFlag       = flag.Float64("delay", -1, "Seconds to wait between albums (overrides config)")
		verboseFlag     = flag.Bool("verbose", false, "Show every album and per-album diagnostics")
		humanLogFlag    = flag.Bool("log-human", true, "Human-readable diagnostic logs instead of JSON")
		dryRunFlag      = flag.Bool("dry-run", false, "Read the album list and report counts without fetching")
		retryMissesFlag = flag.Bool("retry-misses", false, "Delete miss markers so failed albums are tried again")
		skipFetchFlag   = flag.Bool("skip-fetch", false, "Only build the mosaic from the existing cache")
		skipMosaicFlag  = flag.Bool("skip-mosaic", false, "Only fetch covers, do not build the mosaic")
	)

	flag.Parse()

	logging.Init(*verboseFlag, *humanLogFlag)

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *cacheFlag != "" {
		settings.CacheDir = *cacheFlag
	}
	if *outputFlag != "" {
		settings.OutputPath = *outputFlag
	}
	if *sizeFlag > 0 {
		settings.FinalSize = *sizeFlag
	}
	if *delayFlag >= 0 {
		settings.BaseDelay = *delayFlag
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		os.Exit(1)
	}

	if *writeConfigFlag != "" {
		if err := settings.Save(*writeConfigFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Settings written to %s\n", *writeConfigFlag)
		return
	}

	input := *inputFlag
	if input == "" && flag.NArg() > 0 {
		input = flag.Arg(0)
	}

	if input == "" && !*skipFetchFlag {
		fmt.Println("Bandcamp Mosaic - Build a cover mosaic from your album list")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  bandcamp-mosaic -input <library.tsv|music dir> [options]")
		fmt.Println("  bandcamp-mosaic <library.tsv|music dir> [options]")
		fmt.Println("  bandcamp-mosaic -skip-fetch [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: bandcamp-mosaic-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling... (run again to resume)")
		cancel()
	}()

	fmt.Println("🎨 Bandcamp Mosaic")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	fs := afero.NewOsFs()
	if *dryRunFlag {
		os.Exit(dryRun(os.Stdout, cache.OpenStore(afero.NewReadOnlyFs(fs), settings.CacheDir), input))
	}

	store, err := cache.NewStore(fs, settings.CacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening cache: %v\n", err)
		os.Exit(1)
	}

	if !*skipFetchFlag {
		if code := fetch(ctx, settings, store, input, *verboseFlag, *retryMissesFlag); code >= 0 {
			os.Exit(code)
		}
	}

	if *skipMosaicFlag {
		return
	}

	fmt.Println()
	res, err := mosaic.NewCompositor(fs, settings).BuildFromCache(ctx, store, settings.OutputPath)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("\nCancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error building mosaic: %v\n", err)
		os.Exit(1)
	}

	for _, path := range res.Skipped {
		fmt.Printf("⚠️  Skipped unreadable cover: %s\n", path)
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if res.Tiles == 0 {
		fmt.Println("No images found.")
		return
	}
	fmt.Printf("✨ Mosaic built with %d albums: %s\n", res.Tiles, res.OutputPath)
}

// fetch reads the album list and acquires covers. It returns an exit code
// when the program should stop, or -1 to continue with the mosaic.
func fetch(ctx context.Context, settings *config.Settings, store *cache.Store, input string, verbose, retryMisses bool) int {
	ids, err := source.Load(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading album list: %v\n", err)
		return 1
	}

	fmt.Printf("Found %d unique albums\n", len(ids))

	if retryMisses {
		n, err := store.ClearMisses()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing miss markers: %v\n", err)
			return 1
		}
		fmt.Printf("Cleared %d miss markers\n", n)
	}

	fmt.Println()

	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))
	manager := download.NewManager(settings, download.NewAcquirerFromSettings(settings, store), func(event download.ProgressEvent) {
		show := verbose || event.Level == download.LevelWarning || event.Level == download.LevelError
		if show {
			var prefix string
			switch event.Level {
			case download.LevelError:
				prefix = "❌ "
			case download.LevelWarning:
				prefix = "⚠️  "
			case download.LevelSuccess:
				prefix = "✅ "
			case download.LevelInfo:
				prefix = "ℹ️  "
			default:
				prefix = "   "
			}
			fmt.Printf("\r\033[K%s%s\n", prefix, event.Message)
		}

		var percent float64
		if event.Total > 0 {
			percent = float64(event.Done) / float64(event.Total)
		}
		fmt.Printf("\r%s %d/%d", bar.ViewAs(percent), event.Done, event.Total)
	})

	summary, err := manager.Run(ctx, ids)
	fmt.Println()
	if err != nil {
		fmt.Printf("\nCancelled after %d/%d albums. Run again to resume.\n", summary.Processed(), summary.Total)
		return 130
	}

	fmt.Printf("Covers: %d new, %d not found, %d already cached", summary.Resolved, summary.Missed, summary.Cached)
	if summary.Collisions > 0 {
		fmt.Printf(", %d skipped (cache key collision)", summary.Collisions)
	}
	fmt.Println()

	return -1
}

// dryRun reports what a real run would do. store must not be able to write;
// the album list is optional.
func dryRun(w io.Writer, store *cache.Store, input string) int {
	misses, err := store.Misses()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading cache: %v\n", err)
		return 1
	}

	if input != "" {
		ids, err := source.Load(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading album list: %v\n", err)
			return 1
		}
		fmt.Fprintf(w, "Found %d unique albums\n", len(ids))

		pending := 0
		for _, id := range ids {
			if !store.Lookup(id.Key()).Resolved() {
				pending++
			}
		}
		fmt.Fprintf(w, "\n[Dry run - %d albums already cached, %d to fetch]\n", len(ids)-pending, pending)
	}

	if len(misses) > 0 {
		fmt.Fprintf(w, "Marked as not found: %d (use -retry-misses to try them again)\n", len(misses))
	}
	return 0
}
