package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults with env api key", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))
		t.Setenv("FLICKR_API_KEY", "env-key")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":5000", cfg.ServerAddress)
		assert.Equal(t, "virtualtourist.db", cfg.DatabasePath)
		assert.Equal(t, "env-key", cfg.Flickr.APIKey)
		assert.Equal(t, 25, cfg.Flickr.PerPage)
		assert.False(t, cfg.UsePostgres())
	})

	t.Run("config file overridden by env", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
			"serverAddress": ":8080",
			"flickr": {"apiKey": "file-key", "perPage": 50}
		}`), 0644))
		t.Setenv("CONFIG_PATH", path)
		t.Setenv("FLICKR_PER_PAGE", "10")
		t.Setenv("FLICKR_API_KEY", "")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.ServerAddress)
		assert.Equal(t, "file-key", cfg.Flickr.APIKey)
		assert.Equal(t, 10, cfg.Flickr.PerPage)
	})

	t.Run("missing api key is an error", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))
		t.Setenv("FLICKR_API_KEY", "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("postgres selected when url set", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))
		t.Setenv("FLICKR_API_KEY", "key")
		t.Setenv("DATABASE_URL", "postgres://localhost/vt")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.UsePostgres())
	})
}
