package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, `
server:
  root: "`+root+`"
  port: 2094
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2094, cfg.Server.Port)
	assert.Equal(t, defaultMaxFrameSize, cfg.Server.MaxFrameSize)
	assert.Equal(t, defaultMaxBodySize, cfg.Server.MaxBodySize)
	assert.Equal(t, defaultIdleTimeout, cfg.Server.IdleTimeout)
	assert.Equal(t, defaultTrustAnchorRefresh, cfg.GSI.TrustAnchorRefresh)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output)
}

func TestLoadMissingConfigFileStillRequiresRoot(t *testing.T) {
	dir := t.TempDir()
	nonExistent := filepath.Join(dir, "absent.yaml")

	// No config file and no server.root set: defaults fill in everything
	// except root, which validation still requires.
	_, err := Load(nonExistent)
	assert.Error(t, err)
}

func TestLoadRejectsMissingRoot(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 2094
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsNonDirectoryRoot(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0644))

	path := writeConfig(t, `
server:
  root: "`+filePath+`"
  port: 2094
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBodySizeSmallerThanFrameSize(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, `
server:
  root: "`+root+`"
  port: 2094
  max_frame_size: 1048576
  max_body_size: 1024
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, `
server:
  root: "`+root+`"
  port: 2094
logging:
  level: "INFO"
`)

	t.Setenv("XROOTD4G_LOGGING_LEVEL", "ERROR")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ERROR", cfg.Logging.Level)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [[[not yaml")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "config.yaml", filepath.Base(path))
}

func TestApplyDefaultsFillsConnBurstFromRate(t *testing.T) {
	cfg := &Config{}
	cfg.Server.MaxConnRate = 50
	ApplyDefaults(cfg)
	assert.Equal(t, uint(100), cfg.Server.MaxConnBurst)
}

func TestApplyDefaultsLeavesExplicitBurst(t *testing.T) {
	cfg := &Config{}
	cfg.Server.MaxConnRate = 50
	cfg.Server.MaxConnBurst = 10
	ApplyDefaults(cfg)
	assert.Equal(t, uint(10), cfg.Server.MaxConnBurst)
}

func TestDefaultTrustAnchorRefreshIsPositive(t *testing.T) {
	assert.Greater(t, defaultTrustAnchorRefresh, time.Duration(0))
}
