package timeline

import (
	"sort"

	"github.com/KARENKING112/mtslinker/internal/config"
	"github.com/KARENKING112/mtslinker/internal/logger"
	"github.com/KARENKING112/mtslinker/internal/models"
)

// BuildVideo assembles the ordered segment chain covering [0, total] seconds.
//
// Fragments are sorted by start time; equal start times keep their input
// order. A gap larger than the tolerance before a fragment is filled with a
// black clip sized like the first sorted fragment, and a trailing filler
// covers any remainder up to total. Fragments are chained where the gap
// logic placed them, never time-shifted, and a fragment whose own duration
// overruns its slot is not trimmed, so the chain may end past total.
func BuildVideo(total float64, frags []models.TimedFragment, cfg *config.Config, log logger.Logger) models.Timeline {
	if len(frags) == 0 {
		log.Infof("No video fragments loaded, producing %.3fs of %dx%d filler", total, cfg.Filler.Width, cfg.Filler.Height)
		return models.Timeline{Segments: []models.Segment{{
			Duration: total,
			Width:    cfg.Filler.Width,
			Height:   cfg.Filler.Height,
		}}}
	}

	sorted := make([]models.TimedFragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	// All synthetic filler takes its frame size from the first fragment.
	width := sorted[0].Fragment.Width
	height := sorted[0].Fragment.Height

	var segments []models.Segment
	currentTime := 0.0

	for _, tf := range sorted {
		if gap := tf.Start - currentTime; gap > cfg.Tolerance {
			segments = append(segments, models.Segment{
				Duration: gap,
				Width:    width,
				Height:   height,
			})
			currentTime += gap
		}

		segments = append(segments, models.Segment{
			Fragment: tf.Fragment,
			Duration: tf.Fragment.Duration,
			Width:    tf.Fragment.Width,
			Height:   tf.Fragment.Height,
		})
		currentTime += tf.Fragment.Duration
	}

	if remaining := total - currentTime; remaining > cfg.Tolerance {
		segments = append(segments, models.Segment{
			Duration: remaining,
			Width:    width,
			Height:   height,
		})
	}

	result := models.Timeline{Segments: segments}
	log.Infof("Built video timeline: %d segments, %.3fs", len(result.Segments), result.Duration())
	return result
}
