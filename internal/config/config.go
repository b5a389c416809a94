// Package config loads application configuration from defaults, an optional
// YAML file, and CREDTRUST_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CREDTRUST_"

// Config holds the application configuration.
type Config struct {
	ListenAddr     string        `koanf:"listen_addr"`
	DBPath         string        `koanf:"db_path"`
	SweepInterval  time.Duration `koanf:"sweep_interval"`
	BackendURL     string        `koanf:"backend_url"`
	BackendToken   string        `koanf:"backend_token"`
	LogLevel       string        `koanf:"log_level"`
	LogFormat      string        `koanf:"log_format"`
	MetricsEnabled bool          `koanf:"metrics_enabled"`
	PublicBaseURL  string        `koanf:"public_base_url"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *Config {
	return &Config{
		ListenAddr:     "127.0.0.1:8080",
		DBPath:         "credtrust.db",
		SweepInterval:  time.Hour,
		LogLevel:       "info",
		LogFormat:      "text",
		MetricsEnabled: true,
	}
}

// UsesBackend reports whether credentials are read from the REST backend
// instead of the local SQLite file. The backend is read-only.
func (c *Config) UsesBackend() bool {
	return c.BackendURL != ""
}

// SlogLevel maps LogLevel onto a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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

// NewLogger returns a slog.Logger writing to w in LogFormat at LogLevel.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Load builds a Config by layering, lowest precedence first:
//  1. Defaults()
//  2. the YAML file named by CREDTRUST_CONFIG, if set
//  3. CREDTRUST_* environment variables (CREDTRUST_DB_PATH -> db_path)
func Load() (*Config, error) {
	return LoadFile(os.Getenv(envPrefix + "CONFIG"))
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values for consistency.
func (c *Config) Validate() error {
	var errs []error

	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen_addr must not be empty"))
	}
	if c.DBPath == "" && c.BackendURL == "" {
		errs = append(errs, errors.New("db_path must not be empty without backend_url"))
	}
	if c.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("sweep_interval must be positive, got %s", c.SweepInterval))
	}
	if c.BackendURL != "" {
		if u, err := url.Parse(c.BackendURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("backend_url %q must be an absolute http(s) URL", c.BackendURL))
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}

	return errors.Join(errs...)
}
