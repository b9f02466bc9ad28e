package observability

import (
	"io"
	"log/slog"
	"strings"

	"github.com/theduardomaciel/projeto-ia/internal/config"
)

// SetupLogger configures a slog logger: text output in dev, JSON otherwise.
func SetupLogger(cfg config.Env, out io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	if cfg.IsDev() && strings.EqualFold(cfg.LogLevel, "") {
		opts.Level = slog.LevelDebug
	}

	var h slog.Handler
	if cfg.IsDev() {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}
	return slog.New(h).With(
		slog.String("service", "recruiter"),
		slog.String("env", cfg.AppEnv),
	)
}

// DiscardLogger returns a logger that drops every record
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(level string) slog.Level {
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
