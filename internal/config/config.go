package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "objinspect.yaml"

// Config holds all objinspect configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Type definition sources
	Schema SchemaConfig `yaml:"schema"`

	// Terminal rendering
	Output OutputConfig `yaml:"output"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// SchemaConfig configures where type definitions are read from.
type SchemaConfig struct {
	// Files or directories holding *.yaml type definitions
	Paths []string `yaml:"paths"`

	// Quiet period before a changed definition set is recompiled
	WatchDebounce string `yaml:"watch_debounce"`
}

// OutputConfig configures terminal output.
type OutputConfig struct {
	Color        bool `yaml:"color"`
	ShowHidden   bool `yaml:"show_hidden"`   // include non-enumerable slots in describe
	ShowBuiltins bool `yaml:"show_builtins"` // include BaseObject slots in describe
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "objinspect",
		Version: "0.3.0",

		Schema: SchemaConfig{
			Paths:         []string{"types"},
			WatchDebounce: "250ms",
		},

		Output: OutputConfig{
			Color: true,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// Schema paths, separated like PATH
	if paths := os.Getenv("OBJINSPECT_SCHEMA"); paths != "" {
		c.Schema.Paths = filepath.SplitList(paths)
	}

	if level := os.Getenv("OBJINSPECT_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}

	if debug := os.Getenv("OBJINSPECT_DEBUG"); debug != "" {
		if on, err := strconv.ParseBool(debug); err == nil {
			c.Logging.DebugMode = on
		}
	}

	if os.Getenv("NO_COLOR") != "" {
		c.Output.Color = false
	}
}

// GetWatchDebounce returns the watch debounce as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Schema.WatchDebounce)
	if err != nil || d < 0 {
		return 250 * time.Millisecond
	}
	return d
}

// ValidLevels lists all supported log levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// ValidFormats lists all supported log formats.
var ValidFormats = []string{"text", "json"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Schema.Paths) == 0 {
		return fmt.Errorf("no schema paths configured (set schema.paths or OBJINSPECT_SCHEMA)")
	}

	if !slices.Contains(ValidLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}

	if c.Logging.Format != "" && !slices.Contains(ValidFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, ValidFormats)
	}

	if c.Schema.WatchDebounce != "" {
		if _, err := time.ParseDuration(c.Schema.WatchDebounce); err != nil {
			return fmt.Errorf("invalid watch_debounce %q: %w", c.Schema.WatchDebounce, err)
		}
	}

	return nil
}
