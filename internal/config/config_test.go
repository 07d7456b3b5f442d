package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[loader]
prefer_client_id = true

[logging]
level = "debug"
`), "inline")
	require.NoError(t, err)

	assert.True(t, cfg.Loader.PreferClientID)
	assert.True(t, cfg.Loader.CheckSignatures)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "otb", cfg.Data.Source)
	assert.Equal(t, "items.xml", cfg.Data.XMLFile)
}

func TestParseRejectsUnknownSource(t *testing.T) {
	_, err := Parse([]byte("[data]\nsource = \"spr\"\n"), "inline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.source")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "itemdb.toml")
	require.NoError(t, os.WriteFile(path, []byte("[data]\nclient = \"8.60\"\nsource = \"dat\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "8.60", cfg.Data.Client)
	assert.Equal(t, "dat", cfg.Data.Source)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestSampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "itemdb.toml"))
	require.NoError(t, err)
	assert.Equal(t, "10.98", cfg.Data.Client)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.False(t, cfg.Database.Enabled)
}
