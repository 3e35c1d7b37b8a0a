package timeline

import (
	"sort"

	"github.com/KARENKING112/mtslinker/internal/config"
	"github.com/KARENKING112/mtslinker/internal/logger"
	"github.com/KARENKING112/mtslinker/internal/models"
)

// BuildAudio assembles the composite audio track covering [0, total] seconds.
//
// Unlike video, audio fragments are overlaid, not concatenated: every
// fragment is scheduled at its own start time on the shared timeline, and
// overlapping fragments play simultaneously. Equal start times keep their
// input order. If the composite's natural end falls short of total by more
// than the tolerance, one trailing silent clip covers the remainder.
// Fragments overrunning total are not trimmed.
func BuildAudio(total float64, frags []models.TimedFragment, cfg *config.Config, log logger.Logger) models.CompositeTrack {
	if len(frags) == 0 {
		log.Infof("No audio fragments loaded, producing %.3fs of silence at %d Hz", total, cfg.SampleRate)
		return models.CompositeTrack{
			SampleRate: cfg.SampleRate,
			Clips:      []models.AudioClip{{Start: 0, Duration: total}},
		}
	}

	sorted := make([]models.TimedFragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	clips := make([]models.AudioClip, 0, len(sorted))
	for _, tf := range sorted {
		clips = append(clips, models.AudioClip{
			Fragment: tf.Fragment,
			Start:    tf.Start,
			Duration: tf.Fragment.Duration,
		})
	}

	track := models.CompositeTrack{Clips: clips, SampleRate: cfg.SampleRate}

	if naturalEnd := track.Duration(); total-naturalEnd > cfg.Tolerance {
		track.Clips = append(track.Clips, models.AudioClip{
			Start:    naturalEnd,
			Duration: total - naturalEnd,
		})
	}

	log.Infof("Built audio track: %d clips, %.3fs", len(track.Clips), track.Duration())
	return track
}
