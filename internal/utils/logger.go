package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zerolog.Logger so components can be tagged consistently
type Logger struct {
	zerolog.Logger
}

// LoggerOptions configures NewLogger
type LoggerOptions struct {
	Level   string
	Format  string // "pretty" or "json"
	Output  io.Writer
	File    string // rotating JSON log, in addition to Output
	Verbose bool
}

// NewLogger builds a logger writing to Output (stderr by default)
func NewLogger(opts LoggerOptions) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Format == "pretty" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	if opts.File != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   ExpandPath(opts.File),
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28,
		})
	}

	level := ParseLevel(opts.Level)
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	return &Logger{Logger: zerolog.New(out).Level(level).With().Timestamp().Logger()}
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// ParseLevel maps a config level name to zerolog; unknown names mean info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) with(key, value string) *Logger {
	return &Logger{Logger: l.Logger.With().Str(key, value).Logger()}
}

// WithComponent tags entries with the emitting component
func (l *Logger) WithComponent(component string) *Logger {
	return l.with("component", component)
}

// WithURL tags entries with the URL being worked on
func (l *Logger) WithURL(url string) *Logger {
	return l.with("url", url)
}

// WithRunID tags every entry of one synchronization pass
func (l *Logger) WithRunID(id string) *Logger {
	return l.with("run_id", id)
}
