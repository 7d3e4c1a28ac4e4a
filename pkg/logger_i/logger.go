package logger_i

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/akolanti/ChatPDF/internal/config"
)

// Logger resolves the default slog logger on every call, so package level
// loggers created before Init still end up on the configured handler.
type Logger struct {
	section string
	args    []any
	handler slog.Handler
}

// Init installs the process wide handler. Text output in development, JSON in prod.
func Init(level string, prod bool) {
	options := &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: true,
	}

	var handler slog.Handler
	if prod {
		if options.Level.Level() < config.LOG_LEVEL_PROD {
			options.Level = config.LOG_LEVEL_PROD
		}
		handler = slog.NewJSONHandler(os.Stdout, options)
	} else {
		handler = slog.NewTextHandler(os.Stdout, options)
	}
	slog.SetDefault(slog.New(handler))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func NewLogger(section string) *Logger {
	return &Logger{section: section}
}

func (l *Logger) inner() *slog.Logger {
	base := slog.Default()
	if l.handler != nil {
		base = slog.New(l.handler)
	}
	return base.With("component", l.section).With(l.args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.logWithSource(slog.LevelInfo, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.logWithSource(slog.LevelError, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.logWithSource(slog.LevelWarn, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.logWithSource(slog.LevelDebug, msg, args...)
}

func (l *Logger) logWithSource(level slog.Level, msg string, args ...any) {
	ctx := context.Background()
	inner := l.inner()
	if !inner.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	// Skip 3 levels: runtime.Callers, logWithSource, and the Info/Err/Dbg wrapper
	runtime.Callers(3, pcs[:])
	record := slog.NewRecord(time.Now(), level, msg, pcs[0])
	record.Add(args...)
	_ = inner.Handler().Handle(ctx, record)
}

// With returns a derived logger, the receiver is left untouched.
func (l *Logger) With(args ...any) *Logger {
	merged := make([]any, 0, len(l.args)+len(args))
	merged = append(merged, l.args...)
	merged = append(merged, args...)
	return &Logger{section: l.section, args: merged, handler: l.handler}
}

// FromContext attaches the trace and session ids carried by ctx, if any.
func (l *Logger) FromContext(ctx context.Context) *Logger {
	var args []any
	if trace, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok && trace != "" {
		args = append(args, "traceId", trace)
	}
	if sessionId, ok := ctx.Value(config.SESSION_ID_KEY).(string); ok && sessionId != "" {
		args = append(args, "sessionId", sessionId)
	}
	if len(args) == 0 {
		return l
	}
	return l.With(args...)
}
