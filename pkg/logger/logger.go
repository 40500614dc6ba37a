// Package logger provides the leveled logger shared by the parsing and
// validation packages. It wraps zerolog and keeps a package-level default
// so that low-level parsers can report lenient-mode warnings without
// threading a logger through every call.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gofhir/phenomapper/pkg/issue"
)

// Level represents the logging level.
type Level int

// Log levels.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return ""
	}
}

// ParseLevel parses a level name such as "debug" or "WARN".
func ParseLevel(s string) (Level, error) {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	switch lvl {
	case zerolog.DebugLevel, zerolog.TraceLevel:
		return LevelDebug, nil
	case zerolog.InfoLevel, zerolog.NoLevel:
		return LevelInfo, nil
	case zerolog.WarnLevel:
		return LevelWarn, nil
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return LevelError, nil
	default:
		return LevelNone, nil
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

// Logger provides logging functionality.
type Logger struct {
	mu     sync.Mutex
	level  Level
	output io.Writer
	zl     zerolog.Logger
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}, LevelInfo)
)

// Default returns the default logger.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault sets the default logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// New creates a new logger writing JSON lines to output. Wrap output in a
// zerolog.ConsoleWriter for human-readable logs.
func New(output io.Writer, level Level) *Logger {
	l := &Logger{level: level, output: output}
	l.rebuild()
	return l
}

func (l *Logger) rebuild() {
	l.zl = zerolog.New(l.output).
		Level(l.level.zerolog()).
		With().
		Timestamp().
		Str("component", "phenomapper").
		Logger()
}

// SetLevel sets the logging level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.rebuild()
}

// SetOutput sets the output writer.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
	l.rebuild()
}

// Zerolog returns the underlying zerolog logger.
func (l *Logger) Zerolog() zerolog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zl
}

func (l *Logger) event(level Level) *zerolog.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return nil
	}
	return l.zl.WithLevel(level.zerolog())
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.event(LevelDebug).Msgf(format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...any) {
	l.event(LevelInfo).Msgf(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.event(LevelWarn).Msgf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.event(LevelError).Msgf(format, args...)
}

// Issue logs an issue at warn or error level with its code, row and field
// attached as structured fields.
func (l *Logger) Issue(iss issue.Issue) {
	level := LevelWarn
	if iss.IsError() {
		level = LevelError
	}
	e := l.event(level)
	if e == nil {
		return
	}
	e = e.Str("code", string(iss.Code))
	if iss.Row >= 0 {
		e = e.Int("row", iss.Row)
	}
	if iss.Field != "" {
		e = e.Str("field", iss.Field)
	}
	e.Msg(iss.Diagnostics)
}

// Package-level convenience functions.

// Debug logs a debug message using the default logger.
func Debug(format string, args ...any) {
	Default().Debug(format, args...)
}

// Info logs an info message using the default logger.
func Info(format string, args ...any) {
	Default().Info(format, args...)
}

// Warn logs a warning message using the default logger.
func Warn(format string, args ...any) {
	Default().Warn(format, args...)
}

// Error logs an error message using the default logger.
func Error(format string, args ...any) {
	Default().Error(format, args...)
}

// Issue logs an issue using the default logger.
func Issue(iss issue.Issue) {
	Default().Issue(iss)
}

// SetLevel sets the level of the default logger.
func SetLevel(level Level) {
	Default().SetLevel(level)
}

// SetOutput sets the output of the default logger.
func SetOutput(w io.Writer) {
	Default().SetOutput(w)
}

// Disable disables all logging.
func Disable() {
	Default().SetLevel(LevelNone)
}
