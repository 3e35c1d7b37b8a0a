package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Filler holds the synthetic-clip defaults used when no real fragment is
// available to size the output: blank video frames and silent audio.
type Filler struct {
	Width  int
	Height int
}

// EncodeProfile fixes the parameters handed to the encoder. These are design
// constants of the pipeline, not user-facing knobs.
type EncodeProfile struct {
	VideoCodec   string
	AudioCodec   string
	Preset       string
	FrameRate    int
	VideoBitrate string
	AudioBitrate string
	// Threads is the encoder worker count. Zero means resolve it from the
	// host CPU count at encode time.
	Threads int
}

// Config holds the fully processed pipeline configuration.
type Config struct {
	// Filler is the frame size for synthetic video when no fragment can
	// provide one.
	Filler Filler
	// SampleRate is the sample rate of synthetic silence, in Hz.
	SampleRate int
	// Tolerance is the threshold in seconds below which a timeline gap or
	// duration mismatch is ignored rather than corrected.
	Tolerance float64
	Profile   EncodeProfile
}

// rawConfig is used for intermediate unmarshaling from the JSON file. Only
// the synthetic-media defaults may be overridden; the encode profile is
// fixed.
type rawConfig struct {
	FillerWidth  int     `json:"fillerWidth"`
	FillerHeight int     `json:"fillerHeight"`
	SampleRate   int     `json:"sampleRate"`
	Tolerance    float64 `json:"tolerance"`
}

// Default returns the built-in configuration: 1920x1080 black filler,
// 44100 Hz silence, a 0.01 second tolerance, and the fixed H.264/AAC
// encode profile.
func Default() *Config {
	return &Config{
		Filler:     Filler{Width: 1920, Height: 1080},
		SampleRate: 44100,
		Tolerance:  0.01,
		Profile: EncodeProfile{
			VideoCodec:   "libx264",
			AudioCodec:   "aac",
			Preset:       "medium",
			FrameRate:    24,
			VideoBitrate: "5000k",
			AudioBitrate: "192k",
		},
	}
}

// Load reads the configuration file at the given path and overlays it on the
// defaults. Zero-valued fields in the file keep their default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
	}

	var rawCfg rawConfig
	if err := json.Unmarshal(data, &rawCfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config JSON: %w", err)
	}

	cfg := Default()
	if rawCfg.FillerWidth > 0 {
		cfg.Filler.Width = rawCfg.FillerWidth
	}
	if rawCfg.FillerHeight > 0 {
		cfg.Filler.Height = rawCfg.FillerHeight
	}
	if rawCfg.SampleRate > 0 {
		cfg.SampleRate = rawCfg.SampleRate
	}
	if rawCfg.Tolerance > 0 {
		cfg.Tolerance = rawCfg.Tolerance
	}

	return cfg, nil
}
