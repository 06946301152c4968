// Package config handles agent configuration.
//
// Configuration is loaded with overlay semantics:
//
//  1. Start with built-in defaults (embedded via go:embed from default.toml)
//  2. Overlay with config file values (if file exists)
//  3. CLI flags and environment variables override at runtime (handled by CLI layer)
//
// This ensures a valid configuration is always available, even when no
// config file exists. The TOML decoder only sets fields present in the
// file, leaving unspecified fields at their default values.
//
// If the config file exists but is invalid, Load returns an error rather
// than silently falling back to defaults.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ferrous-networks/asicman/capability"
	"github.com/ferrous-networks/asicman/logging"
)

//go:embed default.toml
var defaultConfigTOML string

// DefaultConfigPath is the default path to the agent config file.
const DefaultConfigPath = "/etc/asicman/asicman.toml"

// Config is the top-level agent configuration.
type Config struct {
	Hardware HardwareConfig `toml:"hardware"`
	Store    StoreConfig    `toml:"store"`
	Logging  LoggingConfig  `toml:"logging"`
}

// HardwareConfig selects the chip family and session lock location.
type HardwareConfig struct {
	// Chip is the chip family name (e.g. "trident2", "tomahawk").
	Chip string `toml:"chip"`
	// SessionLock is the flock(2) file guarding exclusive hardware
	// access across processes.
	SessionLock string `toml:"session_lock"`
}

// StoreConfig locates the warm-boot store.
type StoreConfig struct {
	// Path is the SQLite database path.
	Path string `toml:"path"`
}

// LoggingConfig controls logging behaviour.
type LoggingConfig struct {
	// Level is the log spec (e.g., "info" or "info,engine=debug").
	Level string `toml:"level"`
	// Format is the output format: "text" or "json".
	Format string `toml:"format"`
	// Components provides an alternative way to specify per-component levels.
	Components map[string]string `toml:"components"`
}

// ToSpec converts the LoggingConfig to a log spec string.
// If Level is set, it takes precedence. Otherwise, Components are used.
func (c *LoggingConfig) ToSpec() string {
	if c.Level != "" {
		return c.Level
	}

	if len(c.Components) == 0 {
		return ""
	}

	parts := make([]string, 0, len(c.Components)+1)
	parts = append(parts, "info")
	for component, level := range c.Components {
		parts = append(parts, component+"="+level)
	}
	return strings.Join(parts, ",")
}

// DefaultConfig returns the default configuration from the embedded default.toml.
// This provides a valid baseline that is always available.
func DefaultConfig() Config {
	var cfg Config
	if _, err := toml.Decode(defaultConfigTOML, &cfg); err != nil {
		// default.toml is embedded at build time, so this should never
		// happen; fall back to a minimal safe config.
		return Config{
			Hardware: HardwareConfig{Chip: "tomahawk", SessionLock: "/run/asicman/hw.lock"},
			Store:    StoreConfig{Path: "/run/asicman/state.db"},
			Logging:  LoggingConfig{Level: "info", Format: "text"},
		}
	}
	return cfg
}

// Load reads configuration from a file path with overlay semantics.
//
// Behaviour:
//   - File missing: returns default configuration (no error)
//   - File exists and valid: overlays file values onto defaults
//   - File exists but invalid: returns error (fail fast)
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that every field parses into its domain type.
func (c *Config) Validate() error {
	if _, err := capability.ParseChipFamily(c.Hardware.Chip); err != nil {
		return fmt.Errorf("hardware.chip: %w", err)
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return fmt.Errorf("logging.format: %w", err)
	}
	if _, err := logging.ParseSpec(c.Logging.ToSpec()); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// ChipFamily returns the configured chip family.
func (c *Config) ChipFamily() (capability.ChipFamily, error) {
	return capability.ParseChipFamily(c.Hardware.Chip)
}
