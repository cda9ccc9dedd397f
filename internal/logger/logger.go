// Package logger sets up the viewer's zerolog logger. Every entry goes to the console, to
// a file under the logs directory, and to an in-memory tail the HUD shows.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Defaults for New.
const (
	DefaultDir  = "logs"
	LogFileName = "viewer.log"
	// MaxLines is how many recent lines are kept in memory.
	MaxLines = 200
)

// Logger is a zerolog.Logger that also keeps its most recent lines in memory.
type Logger struct {
	zerolog.Logger

	mu    sync.Mutex
	lines []string
	max   int
	file  *os.File
}

// New creates dir if needed and returns a logger writing to console (nil for none),
// dir/viewer.log and the in-memory tail.
func New(dir, level string, console io.Writer) (*Logger, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	l := &Logger{lines: make([]string, 0, 16), max: MaxLines, file: f}

	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: f, TimeFormat: time.RFC3339, NoColor: true},
		zerolog.ConsoleWriter{Out: tail{l}, TimeFormat: "15:04:05", NoColor: true},
	}
	if console != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339})
	}
	l.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(level)).
		With().Timestamp().Logger()
	return l, nil
}

// ParseLevel maps a config string to a level; unknown values mean info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Log records a line typed into the viewer console.
func (l *Logger) Log(line string) {
	l.Info().Str("source", "console").Msg(line)
}

// Lines returns a copy of the stored lines, oldest first.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) append(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
	if over := len(l.lines) - l.max; over > 0 {
		l.lines = append(l.lines[:0], l.lines[over:]...)
	}
}

// tail adapts the in-memory line store to io.Writer.
type tail struct{ l *Logger }

func (t tail) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line != "" {
			t.l.append(line)
		}
	}
	return len(p), nil
}
