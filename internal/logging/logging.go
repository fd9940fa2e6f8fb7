// Package logging builds the process logger: slog to stdout, optionally
// mirrored to a rotated file, with error records forwarded to Sentry.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/claude/blockboard/internal/config"
)

// Logger is a configured logger and the resources behind it.
type Logger struct {
	*slog.Logger
	file   *lumberjack.Logger
	sentry bool
}

// New builds a logger writing to stdout and, when cfg.File is set, to a
// rotated log file.
func New(cfg config.LoggingConfig) *Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg config.LoggingConfig, stdout io.Writer) *Logger {
	l := &Logger{}
	out := stdout
	if cfg.File != "" {
		name := cfg.File
		if !strings.HasSuffix(name, ".log") {
			name += ".log"
		}
		l.file = &lumberjack.Logger{
			Filename:   name,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  false,
			Compress:   true,
		}
		out = io.MultiWriter(stdout, l.file)
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	l.Logger = slog.New(h)
	return l
}

// EnableSentry initializes the Sentry client and forwards error records to
// it. It does nothing when no DSN is configured.
func (l *Logger) EnableSentry(cfg config.SentryConfig, serverName string) error {
	if cfg.DSN == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		ServerName:       serverName,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		return fmt.Errorf("initializing sentry: %w", err)
	}
	l.sentry = true
	l.Logger = slog.New(&sentryHandler{next: l.Handler(), hub: sentry.CurrentHub()})
	l.Info("sentry enabled", "environment", cfg.Environment)
	return nil
}

// Close flushes Sentry and closes the log file.
func (l *Logger) Close() error {
	if l.sentry {
		sentry.Flush(5 * time.Second)
	}
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// ParseLevel maps a level name to a slog level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// sentryHandler reports records at error level and above to Sentry before
// passing them on.
type sentryHandler struct {
	next  slog.Handler
	hub   *sentry.Hub
	attrs []slog.Attr
}

func (h *sentryHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *sentryHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		h.capture(r)
	}
	return h.next.Handle(ctx, r)
}

func (h *sentryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sentryHandler{
		next:  h.next.WithAttrs(attrs),
		hub:   h.hub,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *sentryHandler) WithGroup(name string) slog.Handler {
	return &sentryHandler{next: h.next.WithGroup(name), hub: h.hub, attrs: h.attrs}
}

func (h *sentryHandler) capture(r slog.Record) {
	var cause error
	extras := make(map[string]any)
	collect := func(a slog.Attr) bool {
		if err, ok := a.Value.Any().(error); ok && cause == nil {
			cause = err
		}
		extras[a.Key] = a.Value.String()
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	h.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetExtras(extras)
		if cause != nil {
			scope.SetExtra("message", r.Message)
			h.hub.CaptureException(cause)
			return
		}
		h.hub.CaptureMessage(r.Message)
	})
}
