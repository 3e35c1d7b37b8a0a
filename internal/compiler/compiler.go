package compiler

import (
	"fmt"

	"github.com/KARENKING112/mtslinker/internal/config"
	"github.com/KARENKING112/mtslinker/internal/encoder"
	"github.com/KARENKING112/mtslinker/internal/logger"
	"github.com/KARENKING112/mtslinker/internal/models"
	"github.com/KARENKING112/mtslinker/internal/timeline"
)

// CompileError wraps any failure during timeline assembly or encoding.
// Fragment handles are still released before it propagates.
type CompileError struct {
	Err error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile final video: %v", e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Compile builds the video timeline and, if any audio fragments exist, the
// composite audio track, attaches the track as the output's only audio
// channel (audio carried natively by video fragments is discarded), applies
// the optional maximum-duration cap as a hard cut, and hands the result to
// the writer with the fixed encode profile.
//
// Every fragment handle, video and audio, is closed before Compile returns,
// whether or not encoding succeeds. maxDuration <= 0 means no cap.
func Compile(total float64, video, audio []models.TimedFragment, outputPath string, maxDuration float64, w encoder.Writer, cfg *config.Config, log logger.Logger) error {
	defer releaseAll(log, video, audio)

	videoTimeline := timeline.BuildVideo(total, video, cfg, log)
	res := &models.ComposedResult{
		Video:    videoTimeline,
		Duration: videoTimeline.Duration(),
	}

	if len(audio) > 0 {
		track := timeline.BuildAudio(total, audio, cfg, log)
		res.Audio = &track
	}

	if maxDuration > 0 && res.Duration > maxDuration {
		log.Infof("Duration limit! Cropping to %.3f seconds", maxDuration)
		res.Duration = maxDuration
	}

	log.Infof("Writing final video to %s", outputPath)
	if err := w.WriteFile(res, outputPath, cfg.Profile); err != nil {
		return &CompileError{Err: err}
	}

	return nil
}

// releaseAll closes every fragment handle. Close failures are reported but
// never override the compile outcome.
func releaseAll(log logger.Logger, lists ...[]models.TimedFragment) {
	for _, list := range lists {
		for _, tf := range list {
			if tf.Fragment == nil {
				continue
			}
			if err := tf.Fragment.Close(); err != nil {
				log.Warnf("Failed to release fragment %s: %v", tf.Fragment.Path, err)
			}
		}
	}
}
