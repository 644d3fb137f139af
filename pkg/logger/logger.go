package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelCritical sits above slog.LevelError for failures that should page.
const LevelCritical = slog.Level(12)

type Logger interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Error(message string, args ...any)
	Critical(message string, args ...any)

	// BusinessError logs an expected domain failure (warn); InternalError
	// logs an unexpected one (error). Both are no-ops on a nil error.
	BusinessError(message string, err error, args ...any)
	InternalError(message string, err error, args ...any)

	With(args ...any) Logger
}

type logImpl struct {
	base *slog.Logger
}

// NewFromEnv builds a logger from ENV, LOG_LEVEL and LOG_FORMAT.
func NewFromEnv() Logger {
	dev := normalize(os.Getenv("ENV")) == "development"
	return New(os.Stdout, levelFromString(os.Getenv("LOG_LEVEL"), dev), os.Getenv("LOG_FORMAT"))
}

func New(output io.Writer, level slog.Level, format string) Logger {
	options := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: renameCriticalLevel,
	}

	var handler slog.Handler
	if normalize(format) == "text" {
		handler = slog.NewTextHandler(output, options)
	} else {
		handler = slog.NewJSONHandler(output, options)
	}

	return &logImpl{base: slog.New(handler)}
}

// NewNop discards everything. Handy as a test collaborator.
func NewNop() Logger {
	return &logImpl{base: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *logImpl) Debug(message string, args ...any) { l.base.Debug(message, args...) }
func (l *logImpl) Info(message string, args ...any)  { l.base.Info(message, args...) }
func (l *logImpl) Warn(message string, args ...any)  { l.base.Warn(message, args...) }
func (l *logImpl) Error(message string, args ...any) { l.base.Error(message, args...) }

func (l *logImpl) Critical(message string, args ...any) {
	l.base.Log(context.Background(), LevelCritical, message, args...)
}

func (l *logImpl) BusinessError(message string, err error, args ...any) {
	if err == nil {
		return
	}
	l.base.Warn(message, append([]any{"err", err}, args...)...)
}

func (l *logImpl) InternalError(message string, err error, args ...any) {
	if err == nil {
		return
	}
	l.base.Error(message, append([]any{"err", err}, args...)...)
}

func (l *logImpl) With(args ...any) Logger {
	return &logImpl{base: l.base.With(args...)}
}

func levelFromString(value string, dev bool) slog.Level {
	switch normalize(value) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical", "fatal":
		return LevelCritical
	default:
		if dev {
			return slog.LevelDebug
		}
		return slog.LevelInfo
	}
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func renameCriticalLevel(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key != slog.LevelKey {
		return attr
	}
	if level, ok := attr.Value.Any().(slog.Level); ok && level == LevelCritical {
		attr.Value = slog.StringValue("CRITICAL")
	}
	return attr
}
