package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "udpstat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "/proc", cfg.ProcRoot)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
proc_root: /host/proc
log_level: debug
owners: false
exporter:
  listen_address: 127.0.0.1:9100
  endpoints: true
tui:
  refresh_interval: 5s
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/host/proc", cfg.ProcRoot)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Owners)
	assert.Equal(t, "127.0.0.1:9100", cfg.Exporter.ListenAddress)
	assert.Equal(t, "/metrics", cfg.Exporter.MetricsPath, "unset keys keep defaults")
	assert.True(t, cfg.Exporter.Endpoints)
	assert.Equal(t, 5*time.Second, cfg.TUI.RefreshInterval)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "does not exist")

	_, err = LoadConfig(writeConfig(t, "exporter: [1, 2"))
	assert.ErrorContains(t, err, "unmarshal")

	_, err = LoadConfig(writeConfig(t, "exporter:\n  metrics_path: metrics\n"))
	assert.ErrorContains(t, err, "metrics_path")

	_, err = LoadConfig(writeConfig(t, "tui:\n  refresh_interval: 10ms\n"))
	assert.ErrorContains(t, err, "refresh_interval")
}

func TestValidateMetricsPath(t *testing.T) {
	assert.NoError(t, ValidateMetricsPath("/metrics"))
	assert.Error(t, ValidateMetricsPath("metrics"))
	assert.Error(t, ValidateMetricsPath(""))
}
