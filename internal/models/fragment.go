package models

import (
	"errors"
	"io/fs"
	"os"
)

// Kind identifies the media type a fragment decodes to.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Fragment is a handle to one downloaded, decodable piece of media. It is
// created by the loader, consumed exactly once by the timeline builder or
// the audio mixer, and closed by the compiler after encoding.
type Fragment struct {
	// Path is the local file backing this fragment.
	Path string
	Kind Kind
	// Duration of the decodable media in seconds.
	Duration float64
	// Width and Height are set for video fragments.
	Width  int
	Height int
	// SampleRate is set for audio fragments, in Hz.
	SampleRate int

	closed bool
}

// Close releases the fragment's backing file. It is safe to call more than
// once; only the first call removes the file.
func (f *Fragment) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if f.Path == "" {
		return nil
	}
	// Two handles may share one cached download; whoever closes second
	// finds the file already gone.
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Closed reports whether the fragment handle has been released.
func (f *Fragment) Closed() bool {
	return f.closed
}

// TimedFragment places a fragment at a start time on the master timeline.
// Start times may arrive out of order or overlapping; the timeline builder
// and audio mixer impose order.
type TimedFragment struct {
	Start    float64
	Fragment *Fragment
}

// Segment is one unit of the video timeline: either a real fragment or a
// synthetic black filler clip of the given frame size.
type Segment struct {
	// Fragment is nil for synthetic filler.
	Fragment *Fragment
	Duration float64
	Width    int
	Height   int
}

// IsFiller reports whether the segment is synthetic filler.
func (s Segment) IsFiller() bool {
	return s.Fragment == nil
}

// Timeline is the ordered video segment chain. Segments play back to back,
// so its duration is the sum of the segment durations.
type Timeline struct {
	Segments []Segment
}

// Duration returns the total playback duration of the timeline in seconds.
func (t Timeline) Duration() float64 {
	var total float64
	for _, s := range t.Segments {
		total += s.Duration
	}
	return total
}

// AudioClip is one entry of the composite audio track, scheduled at Start
// on the shared timeline. A nil Fragment means synthetic silence.
type AudioClip struct {
	Fragment *Fragment
	Start    float64
	Duration float64
}

// End returns the time at which the clip stops playing.
func (c AudioClip) End() float64 {
	return c.Start + c.Duration
}

// CompositeTrack overlays audio clips on a shared timeline. Clips may
// overlap; overlapping clips play simultaneously and their samples sum.
type CompositeTrack struct {
	Clips      []AudioClip
	SampleRate int
}

// Duration returns the natural duration of the composite: the latest end
// time across all clips.
func (t CompositeTrack) Duration() float64 {
	var max float64
	for _, c := range t.Clips {
		if end := c.End(); end > max {
			max = end
		}
	}
	return max
}

// ComposedResult is the compiler's output handed to the encoder: the video
// timeline, the optional composite audio track, and the final duration after
// any maximum-duration cap.
type ComposedResult struct {
	Video Timeline
	// Audio is nil when no audio fragments were loaded; the video segments'
	// native audio is discarded either way.
	Audio *CompositeTrack
	// Duration is the duration the encoder must produce, in seconds.
	Duration float64
}
