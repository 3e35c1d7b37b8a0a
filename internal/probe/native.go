package probe

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"

	"github.com/KARENKING112/mtslinker/internal/logger"
)

// Native is a pure-Go prober covering the audio formats recorders commonly
// upload. It cannot decode video, so video-bearing files come back
// unreadable; it exists as a fallback for hosts without an ffprobe binary.
type Native struct {
	logger logger.Logger
}

// NewNative creates the pure-Go prober.
func NewNative(log logger.Logger) *Native {
	return &Native{logger: log}
}

// Detect returns the ffprobe-backed prober when the binary is on PATH and
// the native fallback otherwise.
func Detect(log logger.Logger) Prober {
	if _, err := exec.LookPath("ffprobe"); err == nil {
		return NewFFProbe(log)
	}
	log.Warnf("ffprobe not found on PATH, falling back to native audio probing")
	return NewNative(log)
}

// Classify dispatches on the file extension, the same way the fetcher named
// the file from its URL.
func (p *Native) Classify(path string) Result {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return p.classifyMP3(path)
	case ".flac":
		return p.classifyFLAC(path)
	case ".wav":
		return p.classifyWAV(path)
	default:
		return Result{
			Kind: Unreadable,
			Err:  fmt.Errorf("no native decoder for %q files", filepath.Ext(path)),
		}
	}
}

func (p *Native) classifyMP3(path string) Result {
	f, err := os.Open(path)
	if err != nil {
		return Result{Kind: Unreadable, Err: err}
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return Result{Kind: Unreadable, Err: fmt.Errorf("failed to decode mp3 %s: %w", path, err)}
	}

	// The decoder emits 16-bit stereo samples: 4 bytes per sample frame.
	frames := dec.Length() / 4
	return Result{
		Kind:       Audio,
		Duration:   float64(frames) / float64(dec.SampleRate()),
		SampleRate: dec.SampleRate(),
	}
}

func (p *Native) classifyFLAC(path string) Result {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return Result{Kind: Unreadable, Err: fmt.Errorf("failed to parse flac %s: %w", path, err)}
	}
	defer stream.Close()

	info := stream.Info
	if info.SampleRate == 0 {
		return Result{Kind: Unreadable, Err: fmt.Errorf("flac %s reports a sample rate of 0", path)}
	}

	return Result{
		Kind:       Audio,
		Duration:   float64(info.NSamples) / float64(info.SampleRate),
		SampleRate: int(info.SampleRate),
	}
}

// classifyWAV walks the RIFF chunk list for the fmt and data chunks and
// derives the duration from the data size and byte rate.
func (p *Native) classifyWAV(path string) Result {
	f, err := os.Open(path)
	if err != nil {
		return Result{Kind: Unreadable, Err: err}
	}
	defer f.Close()

	var header [12]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return Result{Kind: Unreadable, Err: fmt.Errorf("failed to read wav header of %s: %w", path, err)}
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return Result{Kind: Unreadable, Err: fmt.Errorf("%s is not a RIFF/WAVE file", path)}
	}

	var sampleRate, byteRate uint32
	var dataSize uint32
	haveFmt, haveData := false, false

	for !(haveFmt && haveData) {
		var chunk [8]byte
		if _, err := io.ReadFull(f, chunk[:]); err != nil {
			return Result{Kind: Unreadable, Err: fmt.Errorf("truncated wav file %s: %w", path, err)}
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			var fmtChunk [16]byte
			if size < 16 {
				return Result{Kind: Unreadable, Err: fmt.Errorf("wav fmt chunk of %s too small", path)}
			}
			if _, err := io.ReadFull(f, fmtChunk[:]); err != nil {
				return Result{Kind: Unreadable, Err: err}
			}
			sampleRate = binary.LittleEndian.Uint32(fmtChunk[4:8])
			byteRate = binary.LittleEndian.Uint32(fmtChunk[8:12])
			if size > 16 {
				if _, err := f.Seek(int64(size-16), io.SeekCurrent); err != nil {
					return Result{Kind: Unreadable, Err: err}
				}
			}
			haveFmt = true
		case "data":
			dataSize = size
			haveData = true
			if !haveFmt {
				if _, err := f.Seek(int64(size), io.SeekCurrent); err != nil {
					return Result{Kind: Unreadable, Err: err}
				}
			}
		default:
			if _, err := f.Seek(int64(size), io.SeekCurrent); err != nil {
				return Result{Kind: Unreadable, Err: err}
			}
		}
	}

	if byteRate == 0 {
		return Result{Kind: Unreadable, Err: fmt.Errorf("wav file %s reports a byte rate of 0", path)}
	}

	return Result{
		Kind:       Audio,
		Duration:   float64(dataSize) / float64(byteRate),
		SampleRate: int(sampleRate),
	}
}
