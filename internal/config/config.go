// Package config loads the udpstat configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ExporterConfig configures the Prometheus endpoint of `udpstat serve`.
type ExporterConfig struct {
	ListenAddress string `yaml:"listen_address"`
	MetricsPath   string `yaml:"metrics_path"`
	// Endpoints also exports one series per bound port.
	Endpoints bool `yaml:"endpoints"`
}

// TUIConfig configures the interactive viewer.
type TUIConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// Config is the top-level configuration.
type Config struct {
	ProcRoot string         `yaml:"proc_root"`
	LogLevel string         `yaml:"log_level"`
	Owners   bool           `yaml:"owners"`
	Exporter ExporterConfig `yaml:"exporter"`
	TUI      TUIConfig      `yaml:"tui"`
}

// Default is the configuration used when no file is given.
func Default() *Config {
	return &Config{
		ProcRoot: "/proc",
		LogLevel: "info",
		Owners:   true,
		Exporter: ExporterConfig{
			ListenAddress: ":9867",
			MetricsPath:   "/metrics",
		},
		TUI: TUIConfig{RefreshInterval: 2 * time.Second},
	}
}

// LoadConfig reads filePath over the defaults. An empty path returns the
// defaults; a missing file is an error.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()
	if filePath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %s does not exist", filePath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filePath, err)
	}
	return cfg, nil
}

// ValidateMetricsPath rejects paths http.ServeMux cannot register.
func ValidateMetricsPath(path string) error {
	if path == "" || path[0] != '/' {
		return fmt.Errorf("metrics path %q must start with /", path)
	}
	return nil
}

func (c *Config) validate() error {
	if err := ValidateMetricsPath(c.Exporter.MetricsPath); err != nil {
		return fmt.Errorf("exporter.metrics_path: %w", err)
	}
	if c.TUI.RefreshInterval < 100*time.Millisecond {
		return fmt.Errorf("tui.refresh_interval %s is below 100ms", c.TUI.RefreshInterval)
	}
	return nil
}
