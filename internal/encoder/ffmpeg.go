package encoder

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/KARENKING112/mtslinker/internal/config"
	"github.com/KARENKING112/mtslinker/internal/logger"
	"github.com/KARENKING112/mtslinker/internal/models"
)

// FFmpeg renders compositions by invoking the ffmpeg binary: lavfi color
// sources for video filler, a concat chain for the segments, adelay+amix
// for the overlaid audio clips and anullsrc for silence.
type FFmpeg struct {
	binary string
	logger logger.Logger
}

// NewFFmpeg creates a writer backed by the ffmpeg binary on PATH.
func NewFFmpeg(log logger.Logger) *FFmpeg {
	return &FFmpeg{binary: "ffmpeg", logger: log}
}

// WriteFile encodes the composed result to outputPath with the fixed profile.
func (e *FFmpeg) WriteFile(res *models.ComposedResult, outputPath string, profile config.EncodeProfile) error {
	threads := profile.Threads
	if threads <= 0 {
		if n, err := cpu.Counts(true); err == nil && n > 0 {
			threads = n
		} else {
			threads = 1
		}
	}

	args := buildArgs(res, outputPath, profile, threads)
	e.logger.Debugf("Invoking %s %s", e.binary, strings.Join(args, " "))

	cmd := exec.Command(e.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, stderr.String())
	}

	e.logger.Infof("Encoded %.3fs to %s", res.Duration, outputPath)
	return nil
}

// buildArgs translates the composed result into a single ffmpeg invocation.
// It is a pure function so the command assembly can be tested without
// running ffmpeg.
func buildArgs(res *models.ComposedResult, outputPath string, profile config.EncodeProfile, threads int) []string {
	var args []string
	var filters []string

	// The concat filter needs uniform frames; normalize everything to the
	// first segment's size.
	width := res.Video.Segments[0].Width
	height := res.Video.Segments[0].Height

	inputIndex := 0
	var videoLabels []string
	for _, seg := range res.Video.Segments {
		if seg.IsFiller() {
			args = append(args,
				"-f", "lavfi",
				"-t", formatSeconds(seg.Duration),
				"-i", fmt.Sprintf("color=c=black:s=%dx%d:r=%d", seg.Width, seg.Height, profile.FrameRate),
			)
		} else {
			args = append(args, "-i", seg.Fragment.Path)
		}

		label := fmt.Sprintf("v%d", inputIndex)
		filters = append(filters, fmt.Sprintf(
			"[%d:v]scale=%d:%d,fps=%d,setsar=1[%s]",
			inputIndex, width, height, profile.FrameRate, label,
		))
		videoLabels = append(videoLabels, label)
		inputIndex++
	}

	filters = append(filters, fmt.Sprintf(
		"%sconcat=n=%d:v=1:a=0[vout]",
		bracketed(videoLabels), len(videoLabels),
	))

	var audioOut string
	if res.Audio != nil {
		var audioLabels []string
		for _, clip := range res.Audio.Clips {
			if clip.Fragment == nil {
				args = append(args,
					"-f", "lavfi",
					"-t", formatSeconds(clip.Duration),
					"-i", fmt.Sprintf("anullsrc=r=%d:cl=stereo", res.Audio.SampleRate),
				)
			} else {
				args = append(args, "-i", clip.Fragment.Path)
			}

			label := fmt.Sprintf("a%d", inputIndex)
			delayMs := int(clip.Start*1000 + 0.5)
			filters = append(filters, fmt.Sprintf(
				"[%d:a]adelay=%d:all=1[%s]",
				inputIndex, delayMs, label,
			))
			audioLabels = append(audioLabels, label)
			inputIndex++
		}

		if len(audioLabels) == 1 {
			audioOut = audioLabels[0]
		} else {
			// normalize=0 keeps overlapping clips summing instead of
			// being attenuated.
			filters = append(filters, fmt.Sprintf(
				"%samix=inputs=%d:normalize=0[aout]",
				bracketed(audioLabels), len(audioLabels),
			))
			audioOut = "aout"
		}
	}

	args = append(args, "-filter_complex", strings.Join(filters, ";"))
	args = append(args, "-map", "[vout]")
	if res.Audio != nil {
		args = append(args, "-map", "["+audioOut+"]")
	} else {
		args = append(args, "-an")
	}

	args = append(args,
		"-c:v", profile.VideoCodec,
		"-preset", profile.Preset,
		"-r", strconv.Itoa(profile.FrameRate),
		"-b:v", profile.VideoBitrate,
	)
	if res.Audio != nil {
		args = append(args,
			"-c:a", profile.AudioCodec,
			"-b:a", profile.AudioBitrate,
		)
	}
	args = append(args,
		"-threads", strconv.Itoa(threads),
		"-t", formatSeconds(res.Duration),
		"-y", outputPath,
	)

	return args
}

func bracketed(labels []string) string {
	var sb strings.Builder
	for _, l := range labels {
		sb.WriteString("[")
		sb.WriteString(l)
		sb.WriteString("]")
	}
	return sb.String()
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
