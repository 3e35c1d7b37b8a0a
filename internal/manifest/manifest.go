package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrMissingDuration is returned when the manifest carries no usable total
// duration. There is no reasonable default, so this is fatal.
var ErrMissingDuration = errors.New("duration not found in manifest")

// Entry is one fetchable fragment reference from the recording's event log.
type Entry struct {
	// RelativeTime is the fragment's start time on the master timeline,
	// in seconds from the start of the recording.
	RelativeTime float64
	URL          string
}

// Recording is the fully processed manifest: the externally supplied total
// duration and the fragment references in event-log order. The duration is
// never derived from the fragments; they are fitted into it.
type Recording struct {
	Duration float64
	Entries  []Entry
}

// rawEvent is used for intermediate unmarshaling of a single event record.
type rawEvent struct {
	RelativeTime float64 `json:"relativeTime"`
	Data         struct {
		URL string `json:"url"`
	} `json:"data"`
}

// rawManifest is the intermediate structure that maps directly to the JSON
// input. Event logs are kept raw so malformed entries can be skipped
// individually instead of failing the whole parse.
type rawManifest struct {
	Duration  float64           `json:"duration"`
	EventLogs []json.RawMessage `json:"eventLogs"`
}

// Load reads and parses the recording manifest from the given path.
func Load(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest at %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a recording manifest. Events without a usable URL are
// silently skipped; a missing or non-positive duration is fatal.
func Parse(data []byte) (*Recording, error) {
	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest JSON: %w", err)
	}

	if raw.Duration <= 0 {
		return nil, ErrMissingDuration
	}

	rec := &Recording{Duration: raw.Duration}
	for _, msg := range raw.EventLogs {
		var ev rawEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			// Not an object-shaped event; ignore it like any other
			// entry without a payload.
			continue
		}
		if ev.Data.URL == "" {
			continue
		}
		rec.Entries = append(rec.Entries, Entry{
			RelativeTime: ev.RelativeTime,
			URL:          ev.Data.URL,
		})
	}

	return rec, nil
}
