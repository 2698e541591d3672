package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillDefaults(t *testing.T) {
	cfg := Config{}.FillDefaults()
	assert.Equal(t, 10, cfg.DefaultSize)
	assert.Equal(t, 50, cfg.DefaultSamples)
	assert.Equal(t, int64(1), cfg.DefaultSeed)
	assert.Equal(t, "native", cfg.DefaultFormat)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownFormat(t *testing.T) {
	cfg := Config{DefaultSize: 1, DefaultSamples: 1, DefaultFormat: "xml"}
	assert.Error(t, cfg.Validate())
}

func TestLoadMissingFileReturnsZeroValue(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grape.toml")
	require.NoError(t, os.WriteFile(path, []byte("default_size = 7\ndefault_format = \"ebnf\"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.DefaultSize)
	assert.Equal(t, "ebnf", cfg.DefaultFormat)
}
