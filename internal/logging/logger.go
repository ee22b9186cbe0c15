package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/fadedpez/twentyone/internal/types"
)

// Level represents a logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var charmLevels = map[Level]charmlog.Level{
	DEBUG: charmlog.DebugLevel,
	INFO:  charmlog.InfoLevel,
	WARN:  charmlog.WarnLevel,
	ERROR: charmlog.ErrorLevel,
}

// ParseLevel maps a level name to a Level, defaulting to INFO
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Logger is a leveled logger with printf-style methods
type Logger struct {
	base *charmlog.Logger
}

// NewLogger creates a logger writing to stdout
func NewLogger(level Level) *Logger {
	return NewLoggerWithWriter(os.Stdout, level)
}

// NewLoggerWithWriter creates a logger writing to w
func NewLoggerWithWriter(w io.Writer, level Level) *Logger {
	base := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmLevels[level],
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05.000",
		ReportCaller:    true,
		CallerOffset:    1,
	})
	return &Logger{base: base}
}

// With returns a logger that attaches the given key/value pairs to every line
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{base: l.base.With(keyvals...)}
}

// SetLevel changes the minimum level that is written
func (l *Logger) SetLevel(level Level) {
	l.base.SetLevel(charmLevels[level])
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.base.Debugf(format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.base.Infof(format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.base.Warnf(format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.base.Errorf(format, v...)
}

// LogError logs a GameError with its code and cause
func (l *Logger) LogError(err error) {
	var gameErr *types.GameError
	if types.As(err, &gameErr) {
		context := []string{
			fmt.Sprintf("Code: %s", gameErr.Code),
			fmt.Sprintf("Message: %s", gameErr.Message),
		}
		if gameErr.Err != nil {
			context = append(context, fmt.Sprintf("Cause: %v", gameErr.Err))
		}

		l.Error("Game error occurred:\n\t%s", strings.Join(context, "\n\t"))
	} else {
		l.Error("Unexpected error: %v", err)
	}
}

// Default logger instance
var Default = NewLogger(INFO)

// Discard is a logger that writes nothing, for tests and quiet callers
var Discard = NewLoggerWithWriter(io.Discard, ERROR)
