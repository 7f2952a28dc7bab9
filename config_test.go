package jetson_test

import (
	"os"
	"path/filepath"
	"testing"

	jetson "github.com/jetsonhacks/install-deep-stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := jetson.DefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/jetson-install/state.json", cfg.StatePath)
	assert.Equal(t, "/var/log/jetson-install.log", cfg.LogPath)
	assert.Equal(t, "/var/cache/jetson-install", cfg.DownloadDir)
	assert.Equal(t, 3, cfg.DownloadRetries)
	assert.NotEmpty(t, cfg.ExecPath, "exec path should resolve to the running binary")
	assert.Empty(t, cfg.Source, "defaults have no config file to forward")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("state_path: /tmp/test-state.json\ndownload_retries: 5\n"), 0o644))

	cfg, err := jetson.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test-state.json", cfg.StatePath)
	assert.Equal(t, 5, cfg.DownloadRetries)
	assert.Equal(t, "/var/log/jetson-install.log", cfg.LogPath, "unset fields get defaults")
	assert.Equal(t, path, cfg.Source, "source path is kept for the resume trigger")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := jetson.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
