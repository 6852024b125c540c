package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Logger provides structured logging for bridge components.
// Every entry carries the component name and the process run id; the sink,
// level and format are process-wide and configured once through Setup.
type Logger struct {
	component string
}

// Options configures the process-wide log sink.
type Options struct {
	// Level is one of debug, info, warn, error (default info)
	Level string

	// Format is "json" (default) or "text" for a human-readable console writer
	Format string

	// Dir optionally enables a per-run log file <run-id>-bridge.log in this directory
	Dir string

	// Output replaces stderr as the console destination
	Output io.Writer
}

var (
	// Global run ID for the current process
	runID     string
	runIDOnce sync.Once

	mu      sync.RWMutex
	root    = zerolog.New(os.Stderr).With().Timestamp().Logger()
	logFile *os.File
	logPath string
)

// getRunID returns or creates the run ID for this process
func getRunID() string {
	runIDOnce.Do(func() {
		runID = uuid.New().String()
	})
	return runID
}

// Setup configures level, format and destinations for all loggers.
//
// If Dir is set but the log file cannot be opened, logging keeps writing to
// the console destination and the error is returned so the caller can warn.
func Setup(opts Options) error {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var writer io.Writer = out
	if opts.Format == "text" {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02 15:04:05.000"}
	}

	var (
		file    *os.File
		path    string
		fileErr error
	)
	if opts.Dir != "" {
		file, path, fileErr = openLogFile(opts.Dir)
		if file != nil {
			writer = zerolog.MultiLevelWriter(writer, file)
		}
	}

	mu.Lock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file
	logPath = path
	root = zerolog.New(writer).With().Timestamp().Str("run_id", getRunID()).Logger()
	mu.Unlock()

	return fileErr
}

// openLogFile opens <dir>/<run-id>-bridge.log in append mode.
func openLogFile(dir string) (*os.File, string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, "", fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-bridge.log", getRunID()))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open log file: %w", err)
	}
	return file, path, nil
}

// NewLogger creates a logger for a specific component.
func NewLogger(component string) *Logger {
	return &Logger{component: component}
}

// Zerolog returns the underlying zerolog logger scoped to this component,
// for call sites that want typed fields instead of formatted messages.
func (l *Logger) Zerolog() zerolog.Logger {
	mu.RLock()
	base := root
	mu.RUnlock()
	return base.With().Str("component", l.component).Logger()
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	zl := l.Zerolog()
	zl.Debug().Msgf(format, v...)
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	zl := l.Zerolog()
	zl.Info().Msgf(format, v...)
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) {
	zl := l.Zerolog()
	zl.Warn().Msgf(format, v...)
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) {
	zl := l.Zerolog()
	zl.Error().Msgf(format, v...)
}

// Component returns the component name
func (l *Logger) Component() string {
	return l.component
}

// RunID returns the current process run ID
func RunID() string {
	return getRunID()
}

// LogPath returns the path of the per-run log file, or "" when logging only
// to the console.
func LogPath() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}

// Close closes the per-run log file if one is open. Safe to call multiple times.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}
