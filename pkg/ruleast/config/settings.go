package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Settings configures the ruleastd daemon.
type Settings struct {
	Addr            string
	DBPath          string
	Compress        bool
	LogLevel        slog.Level
	LogFormat       string
	Metrics         bool
	Tracing         bool
	ShutdownTimeout time.Duration
}

// Log formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// ErrInvalidSettings is returned when a settings value is out of range.
var ErrInvalidSettings = errors.New("invalid settings")

var knownKeys = map[string]bool{
	"addr": true, "db_path": true, "compress": true, "log_level": true,
	"log_format": true, "metrics": true, "tracing": true, "shutdown_timeout": true,
}

// Defaults returns the settings used when no file is given.
func Defaults() Settings {
	return Settings{
		Addr:            ":8080",
		DBPath:          "ruleast.db",
		LogLevel:        slog.LevelInfo,
		LogFormat:       FormatJSON,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads settings from path. An empty path returns Defaults().
func Load(path string) (Settings, error) {
	if path == "" {
		return Defaults(), nil
	}
	cfg, err := FromFile(path)
	if err != nil {
		return Settings{}, err
	}
	return FromConfig(cfg)
}

// FromConfig overlays cfg on Defaults() and validates the result.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func FromConfig(cfg Config) (Settings, error) {
	for _, k := range cfg.Keys() {
		if !knownKeys[k] {
			return Settings{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSettings, k)
		}
	}

	d := Defaults()
	s := Settings{
		Addr:            cfg.String("addr", d.Addr),
		DBPath:          cfg.String("db_path", d.DBPath),
		Compress:        cfg.Bool("compress", d.Compress),
		LogFormat:       strings.ToLower(cfg.String("log_format", d.LogFormat)),
		Metrics:         cfg.Bool("metrics", d.Metrics),
		Tracing:         cfg.Bool("tracing", d.Tracing),
		ShutdownTimeout: cfg.Duration("shutdown_timeout", d.ShutdownTimeout),
	}

	level := d.LogLevel
	if cfg.Has("log_level") {
		if err := level.UnmarshalText([]byte(cfg.String("log_level", ""))); err != nil {
			return Settings{}, fmt.Errorf("%w: log_level: %v", ErrInvalidSettings, err)
		}
	}
	s.LogLevel = level

	if s.LogFormat != FormatJSON && s.LogFormat != FormatText {
		return Settings{}, fmt.Errorf("%w: log_format %q", ErrInvalidSettings, s.LogFormat)
	}
	if s.Addr == "" {
		return Settings{}, fmt.Errorf("%w: addr is empty", ErrInvalidSettings)
	}
	if s.ShutdownTimeout <= 0 {
		return Settings{}, fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidSettings)
	}
	return s, nil
}
