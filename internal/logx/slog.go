package logx

import (
	"context"
	"log/slog"
	"time"
)

type slogLogger struct {
	l *slog.Logger
}

// NewSlog wraps l. A nil l falls back to slog.Default().
func NewSlog(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return slogLogger{l: l}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return slogLogger{l: slog.New(slog.DiscardHandler)}
}

func (s slogLogger) Debug(msg string, fields ...Field) { s.log(slog.LevelDebug, msg, fields) }
func (s slogLogger) Info(msg string, fields ...Field)  { s.log(slog.LevelInfo, msg, fields) }
func (s slogLogger) Warn(msg string, fields ...Field)  { s.log(slog.LevelWarn, msg, fields) }
func (s slogLogger) Error(msg string, fields ...Field) { s.log(slog.LevelError, msg, fields) }

func (s slogLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return s
	}
	return slogLogger{l: slog.New(s.l.Handler().WithAttrs(attrs(fields)))}
}

func (slogLogger) Sync() error { return nil }

func (s slogLogger) log(level slog.Level, msg string, fields []Field) {
	ctx := context.Background()
	if !s.l.Enabled(ctx, level) {
		return
	}
	s.l.LogAttrs(ctx, level, msg, attrs(fields)...)
}

func attrs(fields []Field) []slog.Attr {
	out := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			out = append(out, slog.String(f.Key, v))
		case int:
			out = append(out, slog.Int(f.Key, v))
		case int64:
			out = append(out, slog.Int64(f.Key, v))
		case bool:
			out = append(out, slog.Bool(f.Key, v))
		case time.Time:
			out = append(out, slog.Time(f.Key, v))
		case time.Duration:
			out = append(out, slog.Duration(f.Key, v))
		default:
			out = append(out, slog.Any(f.Key, v))
		}
	}
	return out
}
