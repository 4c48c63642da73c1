package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handiism/bandcamp-mosaic/internal/config"
	"github.com/handiism/bandcamp-mosaic/internal/logging"
	"github.com/handiism/bandcamp-mosaic/internal/tui"
	"github.com/rs/zerolog"
)

func main() {
	configFlag := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Diagnostics would draw over the alternate screen.
	logging.SetLogger(zerolog.Nop())

	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
