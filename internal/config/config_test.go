package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RIA_DATA_DIR", dir)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("RIA_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, ":8787", cfg.Addr)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model.Model)
	assert.Equal(t, "https://www.googleapis.com/drive/v3", cfg.Integrations.DriveBaseURL)
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	file := Config{
		Addr: ":9999",
		Model: ModelConfig{
			APIKey: "file-key",
			Model:  "gemini-2.5-pro",
		},
	}
	data, err := json.Marshal(file)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), data, 0644))

	t.Setenv("RIA_DATA_DIR", dir)
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr, "file value applies")
	assert.Equal(t, "gemini-2.5-pro", cfg.Model.Model)
	assert.Equal(t, "env-key", cfg.Model.APIKey, "environment wins over file")
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0644))
	t.Setenv("RIA_DATA_DIR", dir)

	_, err := Load()
	require.Error(t, err)
}

func TestModelTimeoutFallback(t *testing.T) {
	cfg := Default()
	cfg.Model.Timeout = "bogus"
	assert.Equal(t, "2m0s", cfg.ModelTimeout().String())

	cfg.Model.Timeout = "30s"
	assert.Equal(t, "30s", cfg.ModelTimeout().String())
}
