package probe

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/KARENKING112/mtslinker/internal/logger"
)

// FFProbe classifies media files by shelling out to the ffprobe binary and
// parsing its JSON stream report.
type FFProbe struct {
	binary string
	logger logger.Logger
}

// NewFFProbe creates a prober backed by the ffprobe binary on PATH.
func NewFFProbe(log logger.Logger) *FFProbe {
	return &FFProbe{binary: "ffprobe", logger: log}
}

// Classify runs ffprobe against the file and interprets the stream report.
func (p *FFProbe) Classify(path string) Result {
	out, err := exec.Command(
		p.binary,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	).Output()
	if err != nil {
		return Result{Kind: Unreadable, Err: fmt.Errorf("ffprobe failed for %s: %w", path, err)}
	}

	result := parseFFProbeOutput(out)
	p.logger.Debugf("Classified %s as %s (%.3fs)", path, result.Kind, result.Duration)
	return result
}

// ffprobeStream mirrors the fields of one entry in ffprobe's streams array.
// Numeric fields arrive as strings.
type ffprobeStream struct {
	CodecType  string `json:"codec_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	SampleRate string `json:"sample_rate"`
	Duration   string `json:"duration"`
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// parseFFProbeOutput decides the fragment kind from an ffprobe JSON report:
// a video stream wins over an audio stream; neither means the file is
// unreadable as media.
func parseFFProbeOutput(data []byte) Result {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return Result{Kind: Unreadable, Err: fmt.Errorf("failed to unmarshal ffprobe output: %w", err)}
	}

	formatDuration, _ := strconv.ParseFloat(out.Format.Duration, 64)

	var audio *ffprobeStream
	for i := range out.Streams {
		s := &out.Streams[i]
		switch s.CodecType {
		case "video":
			return Result{
				Kind:     Video,
				Duration: streamDuration(s, formatDuration),
				Width:    s.Width,
				Height:   s.Height,
			}
		case "audio":
			if audio == nil {
				audio = s
			}
		}
	}

	if audio != nil {
		rate, _ := strconv.Atoi(audio.SampleRate)
		return Result{
			Kind:       Audio,
			Duration:   streamDuration(audio, formatDuration),
			SampleRate: rate,
		}
	}

	return Result{Kind: Unreadable, Err: fmt.Errorf("no decodable video or audio stream found")}
}

// streamDuration prefers the stream's own duration, falling back to the
// container-level one.
func streamDuration(s *ffprobeStream, formatDuration float64) float64 {
	if d, err := strconv.ParseFloat(s.Duration, 64); err == nil && d > 0 {
		return d
	}
	return formatDuration
}
