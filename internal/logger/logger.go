// Package logger carries the structured logger used by streams, devices,
// the HTTP service and the CLI. Streams log lifecycle transitions and
// refills at debug level; the service logs stream creation and removal.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is what streams and the service log through. Tests and embedders
// can hand in their own implementation.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithGroup(name string) Logger
}

// SlogLogger adapts a *slog.Logger to Logger.
type SlogLogger struct {
	l *slog.Logger
}

func New(handler slog.Handler) Logger {
	return &SlogLogger{l: slog.New(handler)}
}

// Default is the stderr text logger used when a context carries none.
func Default() Logger {
	return Text(os.Stderr, slog.LevelInfo)
}

// Discard drops every record. A stream built without a logger uses it.
func Discard() Logger {
	return New(slog.DiscardHandler)
}

// Text writes logfmt lines, suited to log collectors that parse key=value.
func Text(w io.Writer, level slog.Level) Logger {
	return New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// JSON writes one object per record with source positions, for `serve`
// deployments.
func JSON(w io.Writer, level slog.Level) Logger {
	return New(slog.NewJSONHandler(w, sourceOptions(level)))
}

// Pretty is the interactive format for `generate` and `bench` runs.
func Pretty(w io.Writer, level slog.Level) Logger {
	return New(NewPrettyHandler(w, sourceOptions(level)))
}

// ForFormat maps the log_format setting to a logger. Anything other than
// json or text gets the pretty format.
func ForFormat(format string, w io.Writer, level slog.Level) Logger {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return JSON(w, level)
	case "text":
		return Text(w, level)
	default:
		return Pretty(w, level)
	}
}

func sourceOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{AddSource: true, Level: level}
}

type loggerKey struct{}

// WithContext stores l for commands started from ctx.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger stored by WithContext, or Default.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}
	return Default()
}

func (s *SlogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *SlogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *SlogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *SlogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}

func (s *SlogLogger) WithGroup(name string) Logger {
	return &SlogLogger{l: s.l.WithGroup(name)}
}

// ParseLevel reads the log_level setting. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
