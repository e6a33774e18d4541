// Package output provides terminal output utilities.
package output

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// LogConfig controls logger construction.
type LogConfig struct {
	// Verbose enables debug level, caller reporting and timestamps.
	Verbose bool

	// Timestamps overrides timestamp display. Nil means on.
	Timestamps *bool
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stderr, LogConfig{})
)

func newLogger(w io.Writer, cfg LogConfig) *log.Logger {
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	timestamps := true
	if cfg.Timestamps != nil {
		timestamps = *cfg.Timestamps
	}
	if cfg.Verbose {
		timestamps = true
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: timestamps,
		ReportCaller:    cfg.Verbose,
		TimeFormat:      "15:04:05",
	})
}

// SetupLogging replaces the global logger.
func SetupLogging(cfg LogConfig) {
	SetLogger(newLogger(os.Stderr, cfg))
}

// SetLogger installs l as the global logger.
func SetLogger(l *log.Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

// Logger returns the global logger.
func Logger() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// FileLogger returns a child logger whose lines are prefixed with a
// component path.
func FileLogger(file string) *log.Logger {
	return Logger().WithPrefix(StyleDim.Render("f:") + StyleNoun.Render(file))
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...any) {
	Logger().Debug(msg, keyvals...)
}

// Info logs an info message.
func Info(msg string, keyvals ...any) {
	Logger().Info(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...any) {
	Logger().Warn(msg, keyvals...)
}

// Error logs an error message.
func Error(msg string, keyvals ...any) {
	Logger().Error(msg, keyvals...)
}

// Print prints a message to stdout without any formatting.
func Print(msg string) {
	os.Stdout.WriteString(msg)
}

// Println prints a message to stdout with a newline.
func Println(msg string) {
	os.Stdout.WriteString(msg + "\n")
}
