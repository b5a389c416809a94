package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every CREDTRUST_ env var that Load() reads.
var allConfigKeys = []string{
	"CREDTRUST_CONFIG",
	"CREDTRUST_LISTEN_ADDR",
	"CREDTRUST_DB_PATH",
	"CREDTRUST_SWEEP_INTERVAL",
	"CREDTRUST_BACKEND_URL",
	"CREDTRUST_BACKEND_TOKEN",
	"CREDTRUST_LOG_LEVEL",
	"CREDTRUST_LOG_FORMAT",
	"CREDTRUST_METRICS_ENABLED",
	"CREDTRUST_PUBLIC_BASE_URL",
}

// isolateConfigEnv unsets all CREDTRUST_ env vars so tests don't inherit
// values from the host environment. t.Cleanup restores the originals.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.False(t, cfg.UsesBackend())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Env(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CREDTRUST_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("CREDTRUST_DB_PATH", "/tmp/test.db")
	t.Setenv("CREDTRUST_SWEEP_INTERVAL", "15m")
	t.Setenv("CREDTRUST_LOG_LEVEL", "debug")
	t.Setenv("CREDTRUST_LOG_FORMAT", "json")
	t.Setenv("CREDTRUST_METRICS_ENABLED", "false")
	t.Setenv("CREDTRUST_PUBLIC_BASE_URL", "https://verify.example.org")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, 15*time.Minute, cfg.SweepInterval)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, "https://verify.example.org", cfg.PublicBaseURL)
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolateConfigEnv(t)
	path := filepath.Join(t.TempDir(), "credtrust.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: 127.0.0.1:7000
sweep_interval: 30m
backend_url: https://backend.example.org
backend_token: from-file
`), 0o600))
	t.Setenv("CREDTRUST_CONFIG", path)
	t.Setenv("CREDTRUST_BACKEND_TOKEN", "from-env")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.ListenAddr)
	assert.Equal(t, 30*time.Minute, cfg.SweepInterval)
	assert.True(t, cfg.UsesBackend())
	assert.Equal(t, "from-env", cfg.BackendToken)
	assert.Equal(t, "credtrust.db", cfg.DBPath)
}

func TestLoad_MissingFile(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CREDTRUST_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "bad duration", key: "CREDTRUST_SWEEP_INTERVAL", val: "soon"},
		{name: "zero duration", key: "CREDTRUST_SWEEP_INTERVAL", val: "0s"},
		{name: "relative backend", key: "CREDTRUST_BACKEND_URL", val: "backend.local/api"},
		{name: "unknown log format", key: "CREDTRUST_LOG_FORMAT", val: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()

			assert.Error(t, err)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		cfg := &Config{LogLevel: in}
		assert.Equal(t, want, cfg.SlogLevel(), in)
	}
}

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "warn", LogFormat: "json"}

	logger := cfg.NewLogger(&buf)
	logger.Info("dropped")
	logger.Warn("kept", "credential_id", "c1")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"credential_id":"c1"`)

	buf.Reset()
	(&Config{LogFormat: "text"}).NewLogger(&buf).Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "k=v")
}
