package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithNoFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.DisableOnFailure)
	assert.Equal(t, "/var/lib/gridnode/servers", cfg.ServersDir)
	assert.Equal(t, 60, cfg.WaitTime)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":8090", cfg.Admin.ListenAddr)
	assert.Equal(t, 10*time.Second, cfg.Admin.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Admin.ShutdownTimeout)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "supervisord.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
servers_dir: /tmp/servers
wait_time: 5
log:
  level: debug
admin:
  listen_addr: ":9999"
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/servers", cfg.ServersDir)
	assert.Equal(t, 5, cfg.WaitTime)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9999", cfg.Admin.ListenAddr)
	// Untouched defaults survive a partial override file.
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_MissingExplicitFileErrors(t *testing.T) {
	// An explicitly named config path that doesn't exist surfaces as a
	// plain read error, not viper.ConfigFileNotFoundError: that type is
	// only returned when viper searches its config-name/paths list, which
	// never applies once SetConfigFile has pinned an exact path.
	_, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("SUPERVISOR_SERVERS_DIR", "/env/servers")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/env/servers", cfg.ServersDir)
}
