package probe

// Kind tags the outcome of classifying a downloaded fragment.
type Kind int

const (
	// Unreadable means the file could be interpreted neither as video nor
	// as audio. The fragment is dropped with a logged warning.
	Unreadable Kind = iota
	Video
	Audio
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Video:
		return "video"
	case Audio:
		return "audio"
	default:
		return "unreadable"
	}
}

// Result is the outcome of probing one local media file. Classification is
// an explicit two-step decision (video first, then audio) rather than a
// caught decode failure.
type Result struct {
	Kind     Kind
	Duration float64
	// Width and Height are set when Kind is Video.
	Width  int
	Height int
	// SampleRate is set when Kind is Audio, in Hz.
	SampleRate int
	// Err carries the underlying cause when Kind is Unreadable.
	Err error
}

// Prober classifies a local media file, reporting the stream properties the
// timeline builder and audio mixer need.
type Prober interface {
	Classify(path string) Result
}
