package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Logger defines a standard interface for logging. Components report skipped
// fragments and progress through it instead of writing to ambient global
// state, so the caller (and tests) decide where the events go.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// SlogLogger is a wrapper around Go's structured logger.
type SlogLogger struct {
	*slog.Logger
}

// NewLogger creates a new logger instance based on the specified level.
func NewLogger(level string) Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	})

	return &SlogLogger{slog.New(handler)}
}

// Debugf logs a message at the debug level.
func (l *SlogLogger) Debugf(format string, v ...interface{}) {
	l.Debug(fmt.Sprintf(format, v...))
}

// Infof logs a message at the info level.
func (l *SlogLogger) Infof(format string, v ...interface{}) {
	l.Info(fmt.Sprintf(format, v...))
}

// Warnf logs a message at the warn level.
func (l *SlogLogger) Warnf(format string, v ...interface{}) {
	l.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs a message at the error level.
func (l *SlogLogger) Errorf(format string, v ...interface{}) {
	l.Error(fmt.Sprintf(format, v...))
}

// Entry is one formatted message recorded by a Capture logger.
type Entry struct {
	Level   string
	Message string
}

// Capture records every emitted entry in memory so tests can assert
// deterministically on what a component reported, e.g. one warning per
// skipped fragment.
type Capture struct {
	mutex   sync.Mutex
	entries []Entry
}

// NewCapture creates an empty capturing logger.
func NewCapture() *Capture {
	return &Capture{}
}

func (c *Capture) record(level, format string, v ...interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = append(c.entries, Entry{Level: level, Message: fmt.Sprintf(format, v...)})
}

// Debugf records a message at the debug level.
func (c *Capture) Debugf(format string, v ...interface{}) { c.record("debug", format, v...) }

// Infof records a message at the info level.
func (c *Capture) Infof(format string, v ...interface{}) { c.record("info", format, v...) }

// Warnf records a message at the warn level.
func (c *Capture) Warnf(format string, v ...interface{}) { c.record("warn", format, v...) }

// Errorf records a message at the error level.
func (c *Capture) Errorf(format string, v ...interface{}) { c.record("error", format, v...) }

// Entries returns a copy of everything recorded so far.
func (c *Capture) Entries() []Entry {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Warnings returns the messages recorded at the warn level.
func (c *Capture) Warnings() []string {
	var out []string
	for _, e := range c.Entries() {
		if e.Level == "warn" {
			out = append(out, e.Message)
		}
	}
	return out
}
