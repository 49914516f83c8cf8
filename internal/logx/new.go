package logx

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported backends.
const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// New builds a JSON logger writing to w. backend is "slog" (default) or "zap";
// level is one of debug, info, warn, error.
func New(backend, level string, w io.Writer) (Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSlog:
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel(lvl)})
		return NewSlog(slog.New(h)), nil
	case BackendZap:
		enc := zap.NewProductionEncoderConfig()
		enc.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
		core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), zap.NewAtomicLevelAt(lvl))
		return NewZapAdapter(zap.New(core)), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}

func slogLevel(l zapcore.Level) slog.Level {
	switch {
	case l <= zapcore.DebugLevel:
		return slog.LevelDebug
	case l == zapcore.InfoLevel:
		return slog.LevelInfo
	case l == zapcore.WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
