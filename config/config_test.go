package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferrous-networks/asicman/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, "tomahawk", cfg.Hardware.Chip)
	assert.Equal(t, "/run/asicman/state.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestLoadOverlaysFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asicman.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[hardware]
chip = "trident2"

[logging]
level = "warn,engine=debug"
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "trident2", cfg.Hardware.Chip)
	// Unspecified fields keep their defaults.
	assert.Equal(t, "/run/asicman/hw.lock", cfg.Hardware.SessionLock)
	assert.Equal(t, "/run/asicman/state.db", cfg.Store.Path)
	assert.Equal(t, "warn,engine=debug", cfg.Logging.ToSpec())
}

func TestLoadRejectsInvalidChip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asicman.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[hardware]
chip = "quantum9000"
`), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hardware.chip")
}

func TestLoadRejectsInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asicman.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoggingComponentsToSpec(t *testing.T) {
	c := config.LoggingConfig{Components: map[string]string{"engine": "debug"}}
	assert.Equal(t, "info,engine=debug", c.ToSpec())

	c = config.LoggingConfig{Level: "trace", Components: map[string]string{"engine": "debug"}}
	assert.Equal(t, "trace", c.ToSpec())
}
