package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadMissingPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "neurotypical", cfg.Engine.DefaultLens)
	assert.Equal(t, 2*time.Second, cfg.Aggregator.Interval)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"engine": {"default_lens": "adhd"},
		"websocket": {"enabled": true, "port": 9001, "path": "/stream", "queue_size": 32, "rate_limit": 10, "rate_burst": 5}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "adhd", cfg.Engine.DefaultLens)
	assert.Equal(t, 9001, cfg.WebSocket.Port)
	// Untouched sections keep defaults.
	assert.Equal(t, 9090, cfg.Metrics.Port)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("COGSTREAM_DEFAULT_LENS", "dyslexia")
	t.Setenv("COGSTREAM_METRICS_PORT", "9191")
	t.Setenv("COGSTREAM_AGGREGATOR_INTERVAL", "500ms")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dyslexia", cfg.Engine.DefaultLens)
	assert.Equal(t, 9191, cfg.Metrics.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Aggregator.Interval)
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown lens", func(c *Config) { c.Engine.DefaultLens = "quantum" }},
		{"zero bus queue", func(c *Config) { c.Bus.QueueSize = 0 }},
		{"unknown bus policy", func(c *Config) { c.Bus.Policy = "newest-wins" }},
		{"zero interval", func(c *Config) { c.Aggregator.Interval = 0 }},
		{"bad consolidation", func(c *Config) {
			c.Memory.ConsolidationEnabled = true
			c.Memory.ConsolidationAge = 0
		}},
		{"metrics port low", func(c *Config) { c.Metrics.Port = 80 }},
		{"port collision", func(c *Config) { c.WebSocket.Port = c.Metrics.Port }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "postgres" }},
		{"nats backend without bucket", func(c *Config) {
			c.Storage.Backend = StorageBackendNATS
			c.Storage.NATS.Bucket = ""
		}},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSafeConfigUpdateValidates(t *testing.T) {
	sc := NewSafeConfig(Default())

	bad := Default()
	bad.Engine.DefaultLens = "quantum"
	assert.Error(t, sc.Update(bad))
	assert.Equal(t, "neurotypical", sc.Get().Engine.DefaultLens)

	good := Default()
	good.Engine.DefaultLens = "autism"
	require.NoError(t, sc.Update(good))
	assert.Equal(t, "autism", sc.Get().Engine.DefaultLens)
}

func TestCloneIsDeep(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.Metrics.Port = 1025
	assert.Equal(t, 9090, cfg.Metrics.Port)
}
