package config

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Run("defaults are populated", func(t *testing.T) {
		cfg := Default()

		assert.Equal(t, "faharasa_data", cfg.Storage.Dir)
		assert.Equal(t, 64, cfg.Buffer.PoolSize)
		assert.Equal(t, 2, cfg.Buffer.ReplacerK)
		assert.False(t, cfg.System.Debug)
	})

	t.Run("a missing file yields the defaults", func(t *testing.T) {
		cfg, err := Load(path.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)

		assert.Equal(t, Default(), cfg)
	})

	t.Run("yaml settings overlay the defaults", func(t *testing.T) {
		configPath := path.Join(t.TempDir(), "faharasa.yaml")
		yaml := "storage:\n  dir: /tmp/data\nbuffer:\n  pool_size: 8\n"
		require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0644))

		cfg, err := Load(configPath)
		require.NoError(t, err)

		assert.Equal(t, "/tmp/data", cfg.Storage.Dir)
		assert.Equal(t, 8, cfg.Buffer.PoolSize)
		assert.Equal(t, 2, cfg.Buffer.ReplacerK)
	})
}
