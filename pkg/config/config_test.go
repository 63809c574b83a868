package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RejectsUnknownStoreBackend(t *testing.T) {
	cfg := DefaultConfig
	cfg.Store.Backend = "redis"
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsUnknownDiscoveryMode(t *testing.T) {
	cfg := DefaultConfig
	cfg.Discovery.Mode = "multicast"
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsNonPositivePoolSize(t *testing.T) {
	cfg := DefaultConfig
	cfg.Store.PoolSize = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trackerd.yml")
	content := []byte("node:\n  id: node-a\n  address: 10.0.0.1:7780\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("JOBTRACKER_CONFIG_PATH", path)

	cfg, loadedPath, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, path, loadedPath)
	assert.Equal(t, "node-a", cfg.Node.ID)
	assert.Equal(t, "10.0.0.1:7780", cfg.Node.Address)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trackerd.yml")
	content := []byte("node:\n  id: node-file\n  address: 10.0.0.1:7780\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("JOBTRACKER_CONFIG_PATH", path)
	t.Setenv("JOBTRACKER_NODE_ID", "node-env")

	cfg, _, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "node-env", cfg.Node.ID)
}
