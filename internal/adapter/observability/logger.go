// Package observability provides logging, metrics, and tracing setup.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fairyhunter13/career-readiness/internal/config"
)

// SetupLogger builds the process logger. Records are JSON on stdout and carry
// the service name and environment.
func SetupLogger(cfg config.Config) *slog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel(cfg)})
	return slog.New(h).With(
		slog.String("service", cfg.OTELServiceName),
		slog.String("env", cfg.AppEnv),
	)
}

func logLevel(cfg config.Config) slog.Level {
	var lvl slog.Level
	if s := strings.TrimSpace(cfg.LogLevel); s != "" {
		if err := lvl.UnmarshalText([]byte(s)); err == nil {
			return lvl
		}
	}
	if cfg.IsDev() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
