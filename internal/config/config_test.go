package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/kpiwatch/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "http://localhost:5000", cfg.Server.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.False(t, cfg.Auth.Gated)
	assert.Equal(t, 5*time.Second, cfg.Auth.PollInterval)
	assert.Equal(t, 5*time.Minute, cfg.Refresh.Interval)
	assert.True(t, cfg.Refresh.Cache)
	assert.Equal(t, 5*time.Second, cfg.UI.ToastDuration)
	assert.Equal(t, 10, cfg.UI.PageSize)
	assert.Equal(t, "auto", cfg.UI.Color)

	require.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)

	content := `
version: 1
server:
  base_url: https://kpi.example.com/
  request_timeout: 10s
auth:
  gated: true
  login_url: https://login.example/x
  poll_interval: 2s
refresh:
  interval: 1m
ui:
  page_size: 25
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "https://kpi.example.com", cfg.Server.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.True(t, cfg.Auth.Gated)
	assert.Equal(t, "https://login.example/x", cfg.Auth.LoginURL)
	assert.Equal(t, 2*time.Second, cfg.Auth.PollInterval)
	assert.Equal(t, time.Minute, cfg.Refresh.Interval)
	assert.True(t, cfg.Refresh.Cache, "unset keys keep defaults")
	assert.Equal(t, 25, cfg.UI.PageSize)
	assert.Equal(t, 5*time.Second, cfg.UI.ToastDuration)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  base_url: http://file:5000\n"), 0644))

	t.Setenv("KPI_SERVER_BASE_URL", "http://env:6000")
	t.Setenv("KPI_AUTH_GATED", "true")

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "http://env:6000", cfg.Server.BaseURL)
	assert.True(t, cfg.Auth.Gated)
}

func TestFind_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

	found, err := Find(path)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	_, err = Find(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFind_CurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("version: 1\n"), 0644))
	t.Chdir(dir)

	found, err := Find("")
	require.NoError(t, err)

	// macOS temp dirs resolve through /private
	want, _ := filepath.EvalSymlinks(filepath.Join(dir, ConfigFileName))
	got, _ := filepath.EvalSymlinks(found)
	assert.Equal(t, want, got)
}

func TestLoadOrDefault_NoFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	cfg, path, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, DefaultConfig().Server.BaseURL, cfg.Server.BaseURL)
}

func TestConfig_LogFile(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join(os.TempDir(), "kpi.log"), cfg.LogFile())

	cfg.Log.File = "/var/log/kpi.log"
	assert.Equal(t, "/var/log/kpi.log", cfg.LogFile())
}
