package main

import (
	"errors"
	"flag"
	"net/http"
	"os"

	"github.com/KARENKING112/mtslinker/internal/config"
	"github.com/KARENKING112/mtslinker/internal/encoder"
	"github.com/KARENKING112/mtslinker/internal/fetch"
	"github.com/KARENKING112/mtslinker/internal/logger"
	"github.com/KARENKING112/mtslinker/internal/manifest"
	"github.com/KARENKING112/mtslinker/internal/probe"
	"github.com/KARENKING112/mtslinker/internal/recording"
)

func main() {
	// 1. Parse command-line arguments
	manifestPath := flag.String("i", "recording.json", "Path to the recording manifest")
	outputPath := flag.String("o", "output.mp4", "Path of the final video file")
	workDir := flag.String("d", "", "Working directory for downloaded fragments (default: a temp dir)")
	maxDuration := flag.Float64("m", 0, "Maximum output duration in seconds (0 = uncapped)")
	configFile := flag.String("c", "", "Optional path to a config file")
	userAgent := flag.String("u", "", "User-Agent header for fragment downloads")
	logLevel := flag.String("L", "info", "Log level (error, warn, info, debug)")
	flag.Parse()

	// 2. Initialize logger
	log := logger.NewLogger(*logLevel)
	log.Infof("Starting recording reconstruction...")

	// 3. Load configuration
	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			log.Errorf("Failed to load configuration: %v", err)
			os.Exit(1)
		}
		cfg = loaded
		log.Infof("Configuration loaded from %s", *configFile)
	}

	// 4. Load the recording manifest
	rec, err := manifest.Load(*manifestPath)
	if err != nil {
		if errors.Is(err, manifest.ErrMissingDuration) {
			log.Errorf("Manifest %s has no total duration", *manifestPath)
		} else {
			log.Errorf("Failed to load manifest: %v", err)
		}
		os.Exit(1)
	}
	log.Infof("Manifest loaded: %.3fs total, %d fragment references", rec.Duration, len(rec.Entries))

	// 5. Prepare the working directory
	dir := *workDir
	if dir == "" {
		dir, err = os.MkdirTemp("", "mtslinker-")
		if err != nil {
			log.Errorf("Failed to create working directory: %v", err)
			os.Exit(1)
		}
		defer os.RemoveAll(dir)
	}

	// 6. Wire the pipeline and run it
	fetcher := fetch.NewCache(fetch.New(&http.Client{}, log, *userAgent), log)
	prober := probe.Detect(log)
	writer := encoder.NewFFmpeg(log)
	processor := recording.NewProcessor(fetcher, prober, writer, cfg, log)

	if err := processor.Run(rec, dir, *outputPath, *maxDuration); err != nil {
		log.Errorf("Failed to compile final video: %v", err)
		os.Exit(1)
	}

	log.Infof("Recording written to %s", *outputPath)
}
