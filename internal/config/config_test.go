package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "objinspect", cfg.Name)
	assert.Equal(t, []string{"types"}, cfg.Schema.Paths)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.DebugMode)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	// Ensure no env vars interfere
	t.Setenv("OBJINSPECT_SCHEMA", "")
	t.Setenv("OBJINSPECT_LOG_LEVEL", "")
	t.Setenv("OBJINSPECT_DEBUG", "")

	path := filepath.Join(t.TempDir(), "nested", DefaultFile)

	cfg := DefaultConfig()
	cfg.Schema.Paths = []string{"defs", "more/defs.yaml"}
	cfg.Logging.DebugMode = true
	cfg.Logging.Categories = map[string]bool{"schema": false}

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Schema.Paths, loaded.Schema.Paths)
	assert.True(t, loaded.Logging.DebugMode)
	assert.Equal(t, map[string]bool{"schema": false}, loaded.Logging.Categories)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("OBJINSPECT_SCHEMA", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Schema, cfg.Schema)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("schema: [unclosed"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Setenv("OBJINSPECT_LOG_LEVEL", "")
	t.Setenv("NO_COLOR", "")

	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("output:\n  show_hidden: true\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Output.ShowHidden)
	assert.True(t, cfg.Output.Color)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestGetWatchDebounce(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 250*time.Millisecond, cfg.GetWatchDebounce())

	cfg.Schema.WatchDebounce = "2s"
	assert.Equal(t, 2*time.Second, cfg.GetWatchDebounce())

	cfg.Schema.WatchDebounce = "soon"
	assert.Equal(t, 250*time.Millisecond, cfg.GetWatchDebounce())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"no schema paths", func(c *Config) { c.Schema.Paths = nil }, "no schema paths"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "invalid log level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
		{"bad debounce", func(c *Config) { c.Schema.WatchDebounce = "soon" }, "invalid watch_debounce"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	cfg := LoggingConfig{}
	assert.False(t, cfg.IsCategoryEnabled("schema"))

	cfg.DebugMode = true
	assert.True(t, cfg.IsCategoryEnabled("schema"))

	cfg.Categories = map[string]bool{"schema": false, "watch": true}
	assert.False(t, cfg.IsCategoryEnabled("schema"))
	assert.True(t, cfg.IsCategoryEnabled("watch"))
	assert.True(t, cfg.IsCategoryEnabled("types"))
}
