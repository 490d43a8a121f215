// Package logger wraps zerolog with request-scoped fields carried on the
// context.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"

	formatEnvVar = "GOCART_LOG_FORMAT"
)

type Options struct {
	ServiceName string
	Level       zerolog.Level
	// WarnStack adds a stack trace to warn entries as well as errors.
	WarnStack bool
	Output    io.Writer
	// Format is FormatJSON or FormatConsole. Empty falls back to
	// GOCART_LOG_FORMAT, then JSON.
	Format string
}

type Logger struct {
	root      zerolog.Logger
	warnStack bool
}

type scopeKey struct{}

func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if resolveFormat(opts.Format) == FormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}
	level := opts.Level
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	root := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("service", opts.ServiceName).
		Logger()
	return &Logger{root: root, warnStack: opts.WarnStack}
}

func resolveFormat(explicit string) string {
	format := strings.ToLower(strings.TrimSpace(explicit))
	if format == "" {
		format = strings.ToLower(strings.TrimSpace(os.Getenv(formatEnvVar)))
	}
	if format == FormatConsole {
		return FormatConsole
	}
	return FormatJSON
}

// ParseLevel maps a config value onto a zerolog level. Unknown or empty
// values mean info.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) scoped(ctx context.Context) zerolog.Logger {
	if ctx != nil {
		if scoped, ok := ctx.Value(scopeKey{}).(zerolog.Logger); ok {
			return scoped
		}
	}
	return l.root
}

func (l *Logger) with(ctx context.Context, build func(zerolog.Context) zerolog.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scopeKey{}, build(l.scoped(ctx).With()).Logger())
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Interface(key, value)
	})
}

func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Fields(fields)
	})
}

func (l *Logger) WithRequestID(ctx context.Context, id string) context.Context {
	return l.WithField(ctx, "request_id", id)
}

func (l *Logger) WithUserID(ctx context.Context, id string) context.Context {
	return l.WithField(ctx, "user_id", id)
}

func (l *Logger) WithStoreID(ctx context.Context, id string) context.Context {
	return l.WithField(ctx, "store_id", id)
}

func (l *Logger) WithOrderID(ctx context.Context, id string) context.Context {
	return l.WithField(ctx, "order_id", id)
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	log := l.scoped(ctx)
	log.Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	log := l.scoped(ctx)
	log.Info().Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	log := l.scoped(ctx)
	event := log.Warn()
	if l.warnStack {
		event = event.Str("stack", stack())
	}
	event.Msg(msg)
}

// Error always records a stack trace.
func (l *Logger) Error(ctx context.Context, msg string, err error) {
	log := l.scoped(ctx)
	log.Error().Err(err).Str("stack", stack()).Msg(msg)
}

// Printf lets the logger back printf-style sinks such as gorm's slow query
// log. Entries are written at warn level.
func (l *Logger) Printf(format string, args ...any) {
	l.root.Warn().Str("component", "gorm").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func stack() string {
	return strings.TrimSpace(string(debug.Stack()))
}
