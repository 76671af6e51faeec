package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger es la interfaz que consumen el resto de paquetes.
// Los adapters y handlers no deberían depender de zerolog directamente.
type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

type zlog struct {
	zl zerolog.Logger
}

type Options struct {
	Level  zerolog.Level
	Format Format
	App    string
}

func New(opts Options) Logger {
	var zl zerolog.Logger
	switch opts.Format {
	case FormatJSON:
		zl = zerolog.New(os.Stdout)
	default:
		zl = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	zl = zl.Level(opts.Level).With().Timestamp().Logger()
	if app := strings.TrimSpace(opts.App); app != "" {
		zl = zl.With().Str("app", app).Logger()
	}

	return &zlog{zl: zl}
}

// NewFromEnv crea el logger desde env:
// - LOG_LEVEL=debug|info|warn|error (default info)
// - LOG_FORMAT=text|json (default text)
// - APP_NAME (opcional)
func NewFromEnv() Logger {
	return New(Options{
		Level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		Format: ParseFormat(os.Getenv("LOG_FORMAT")),
		App:    os.Getenv("APP_NAME"),
	})
}

func (l *zlog) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	ctx := l.zl.With()
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		ctx = ctx.Interface(k, v)
	}
	return &zlog{zl: ctx.Logger()}
}

func (l *zlog) Debug(msg string, fields map[string]any) { l.emit(l.zl.Debug(), msg, fields) }
func (l *zlog) Info(msg string, fields map[string]any)  { l.emit(l.zl.Info(), msg, fields) }
func (l *zlog) Warn(msg string, fields map[string]any)  { l.emit(l.zl.Warn(), msg, fields) }
func (l *zlog) Error(msg string, fields map[string]any) { l.emit(l.zl.Error(), msg, fields) }

func (l *zlog) emit(ev *zerolog.Event, msg string, fields map[string]any) {
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
