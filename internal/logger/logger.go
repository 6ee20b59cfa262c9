package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/btg-funds-backend/internal/config"
)

// NewLogger builds the application-wide slog.Logger. Output is JSON on
// stdout; source locations are attached only at debug level to keep
// production log volume down.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.Logging.Level)

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	})
	logger := slog.New(handler)

	logger.Info("logger initialized",
		"level", level,
		"app", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	return logger
}

// parseLevel maps a config string to a slog level, defaulting to info
// for unknown values rather than failing startup
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
