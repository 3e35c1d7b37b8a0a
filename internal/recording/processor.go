package recording

import (
	"os"

	"github.com/KARENKING112/mtslinker/internal/compiler"
	"github.com/KARENKING112/mtslinker/internal/config"
	"github.com/KARENKING112/mtslinker/internal/encoder"
	"github.com/KARENKING112/mtslinker/internal/logger"
	"github.com/KARENKING112/mtslinker/internal/manifest"
	"github.com/KARENKING112/mtslinker/internal/models"
	"github.com/KARENKING112/mtslinker/internal/probe"
)

// Fetcher resolves a fragment URL to a local file in destDir.
type Fetcher interface {
	Fetch(url, destDir string) (string, error)
}

// Processor runs the full reconstruction pipeline for one recording: fetch
// every referenced fragment, classify it as video or audio, and compile the
// timeline into the output file. Fragments that cannot be fetched or read
// are dropped with a warning; only a compile failure is fatal.
type Processor struct {
	fetcher Fetcher
	prober  probe.Prober
	writer  encoder.Writer
	cfg     *config.Config
	logger  logger.Logger
}

// NewProcessor wires the pipeline's collaborators together.
func NewProcessor(f Fetcher, p probe.Prober, w encoder.Writer, cfg *config.Config, log logger.Logger) *Processor {
	return &Processor{
		fetcher: f,
		prober:  p,
		writer:  w,
		cfg:     cfg,
		logger:  log,
	}
}

// Run loads every fragment referenced by the manifest into workDir and
// compiles the final recording to outputPath. maxDuration <= 0 means no cap.
func (p *Processor) Run(rec *manifest.Recording, workDir, outputPath string, maxDuration float64) error {
	video, audio := p.loadFragments(rec, workDir)

	p.logger.Infof("Total duration of clips: %.3f", rec.Duration)
	p.logger.Infof("Loaded %d video clips and %d audio clips", len(video), len(audio))

	return compiler.Compile(rec.Duration, video, audio, outputPath, maxDuration, p.writer, p.cfg, p.logger)
}

// loadFragments fetches and classifies each manifest entry in order,
// splitting the survivors into video and audio lists.
func (p *Processor) loadFragments(rec *manifest.Recording, workDir string) (video, audio []models.TimedFragment) {
	for _, entry := range rec.Entries {
		path, err := p.fetcher.Fetch(entry.URL, workDir)
		if err != nil {
			p.logger.Warnf("Failed to download: %s: %v", entry.URL, err)
			continue
		}

		result := p.prober.Classify(path)
		switch result.Kind {
		case probe.Video:
			video = append(video, models.TimedFragment{
				Start: entry.RelativeTime,
				Fragment: &models.Fragment{
					Path:     path,
					Kind:     models.KindVideo,
					Duration: result.Duration,
					Width:    result.Width,
					Height:   result.Height,
				},
			})
		case probe.Audio:
			audio = append(audio, models.TimedFragment{
				Start: entry.RelativeTime,
				Fragment: &models.Fragment{
					Path:       path,
					Kind:       models.KindAudio,
					Duration:   result.Duration,
					SampleRate: result.SampleRate,
				},
			})
		default:
			p.logger.Warnf("Failed to load %s as video or audio: %v", path, result.Err)
			if err := os.Remove(path); err != nil {
				p.logger.Debugf("Failed to remove unreadable fragment %s: %v", path, err)
			}
		}
	}
	return video, audio
}
