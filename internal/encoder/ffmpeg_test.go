package encoder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KARENKING112/mtslinker/internal/config"
	"github.com/KARENKING112/mtslinker/internal/models"
)

func argsString(args []string) string {
	return strings.Join(args, " ")
}

func filterGraph(t *testing.T, args []string) string {
	t.Helper()
	for i, a := range args {
		if a == "-filter_complex" {
			require.Less(t, i+1, len(args))
			return args[i+1]
		}
	}
	t.Fatal("no -filter_complex in args")
	return ""
}

func TestBuildArgs_FillerOnly(t *testing.T) {
	profile := config.Default().Profile
	res := &models.ComposedResult{
		Video: models.Timeline{Segments: []models.Segment{
			{Duration: 10.0, Width: 1920, Height: 1080},
		}},
		Duration: 10.0,
	}

	args := buildArgs(res, "out.mp4", profile, 4)
	joined := argsString(args)

	assert.Contains(t, joined, "color=c=black:s=1920x1080:r=24")
	assert.Contains(t, joined, "-t 10.000 -i color")
	assert.Contains(t, joined, "-map [vout]")
	assert.Contains(t, joined, "-an")
	assert.Contains(t, joined, "-c:v libx264")
	assert.Contains(t, joined, "-preset medium")
	assert.Contains(t, joined, "-b:v 5000k")
	assert.Contains(t, joined, "-threads 4")
	assert.Equal(t, "out.mp4", args[len(args)-1])
}

func TestBuildArgs_SegmentChain(t *testing.T) {
	profile := config.Default().Profile
	frag := &models.Fragment{Path: "/tmp/a.mp4", Kind: models.KindVideo, Duration: 4.0, Width: 1280, Height: 720}
	res := &models.ComposedResult{
		Video: models.Timeline{Segments: []models.Segment{
			{Duration: 3.0, Width: 1280, Height: 720},
			{Fragment: frag, Duration: 4.0, Width: 1280, Height: 720},
			{Duration: 3.0, Width: 1280, Height: 720},
		}},
		Duration: 10.0,
	}

	args := buildArgs(res, "out.mp4", profile, 2)
	graph := filterGraph(t, args)

	assert.Contains(t, argsString(args), "-i /tmp/a.mp4")
	assert.Contains(t, graph, "concat=n=3:v=1:a=0[vout]")
	// Every input is normalized to the first segment's frame size.
	assert.Contains(t, graph, "scale=1280:720")
}

func TestBuildArgs_AudioOverlay(t *testing.T) {
	profile := config.Default().Profile
	vf := &models.Fragment{Path: "/tmp/v.mp4", Kind: models.KindVideo, Duration: 4.0, Width: 1280, Height: 720}
	a1 := &models.Fragment{Path: "/tmp/a1.mp3", Kind: models.KindAudio, Duration: 3.0, SampleRate: 44100}
	a2 := &models.Fragment{Path: "/tmp/a2.mp3", Kind: models.KindAudio, Duration: 3.0, SampleRate: 44100}
	res := &models.ComposedResult{
		Video: models.Timeline{Segments: []models.Segment{
			{Fragment: vf, Duration: 4.0, Width: 1280, Height: 720},
		}},
		Audio: &models.CompositeTrack{
			SampleRate: 44100,
			Clips: []models.AudioClip{
				{Fragment: a1, Start: 0.0, Duration: 3.0},
				{Fragment: a2, Start: 1.0, Duration: 3.0},
			},
		},
		Duration: 4.0,
	}

	args := buildArgs(res, "out.mp4", profile, 2)
	graph := filterGraph(t, args)

	// The second clip starts 1s in, so it gets a 1000ms delay; overlapping
	// clips are mixed without normalization so their samples sum.
	assert.Contains(t, graph, "adelay=0:all=1")
	assert.Contains(t, graph, "adelay=1000:all=1")
	assert.Contains(t, graph, "amix=inputs=2:normalize=0[aout]")
	assert.Contains(t, argsString(args), "-map [aout]")
	assert.Contains(t, argsString(args), "-c:a aac")
	assert.Contains(t, argsString(args), "-b:a 192k")
	assert.NotContains(t, args, "-an")
}

func TestBuildArgs_SilenceClip(t *testing.T) {
	profile := config.Default().Profile
	a1 := &models.Fragment{Path: "/tmp/a1.mp3", Kind: models.KindAudio, Duration: 3.0, SampleRate: 44100}
	res := &models.ComposedResult{
		Video: models.Timeline{Segments: []models.Segment{
			{Duration: 10.0, Width: 1920, Height: 1080},
		}},
		Audio: &models.CompositeTrack{
			SampleRate: 44100,
			Clips: []models.AudioClip{
				{Fragment: a1, Start: 0.0, Duration: 3.0},
				{Start: 3.0, Duration: 7.0},
			},
		},
		Duration: 10.0,
	}

	args := buildArgs(res, "out.mp4", profile, 2)

	assert.Contains(t, argsString(args), "anullsrc=r=44100:cl=stereo")
	assert.Contains(t, argsString(args), "-t 7.000 -i anullsrc")
}

func TestBuildArgs_SingleAudioClipSkipsMix(t *testing.T) {
	profile := config.Default().Profile
	a1 := &models.Fragment{Path: "/tmp/a1.mp3", Kind: models.KindAudio, Duration: 10.0, SampleRate: 44100}
	res := &models.ComposedResult{
		Video: models.Timeline{Segments: []models.Segment{
			{Duration: 10.0, Width: 1920, Height: 1080},
		}},
		Audio: &models.CompositeTrack{
			SampleRate: 44100,
			Clips:      []models.AudioClip{{Fragment: a1, Start: 0.0, Duration: 10.0}},
		},
		Duration: 10.0,
	}

	args := buildArgs(res, "out.mp4", profile, 2)
	graph := filterGraph(t, args)

	assert.NotContains(t, graph, "amix")
	assert.Contains(t, argsString(args), "-map [a1]")
}

func TestBuildArgs_DurationCap(t *testing.T) {
	profile := config.Default().Profile
	res := &models.ComposedResult{
		Video: models.Timeline{Segments: []models.Segment{
			{Duration: 10.0, Width: 1920, Height: 1080},
		}},
		Duration: 8.0, // capped below the chain's natural length
	}

	args := buildArgs(res, "out.mp4", profile, 2)

	assert.Contains(t, argsString(args), "-t 8.000 -y out.mp4")
}
