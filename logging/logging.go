// Package logging builds the structured stderr logger used by yamltr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/lmittmann/tint"
)

// Config holds logger settings read from the environment.
type Config struct {
	Level      string `envDefault:"info"     env:"YAMLTR_LOG_LEVEL"`
	NoColor    bool   `envDefault:"false"    env:"YAMLTR_LOG_NO_COLOR"`
	TimeFormat string `envDefault:"15:04:05" env:"YAMLTR_LOG_TIME_FORMAT"`
}

// ConfigFromEnv reads Config from the environment. The conventional
// NO_COLOR variable also disables colors.
func ConfigFromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("reading log settings: %w", err)
	}
	if os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}
	return cfg, nil
}

// ParseLevel converts debug, info, warn or error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
	}
}

// New creates a tint-backed logger writing to w.
func New(w io.Writer, cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	h := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: cfg.TimeFormat,
		NoColor:    cfg.NoColor,
	})
	return slog.New(h), nil
}

// Err returns an error attribute that tint renders highlighted.
func Err(err error) slog.Attr {
	return tint.Err(err)
}
