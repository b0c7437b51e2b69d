package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig holds per-user configuration from ~/.cortex/config.yaml
type LocalConfig struct {
	API      APIConfig      `yaml:"api"`
	Editor   EditorConfig   `yaml:"editor"`
	Feedback FeedbackConfig `yaml:"feedback"`
	Preview  PreviewConfig  `yaml:"preview"`
}

// APIConfig holds backend endpoint settings
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// EditorConfig holds diagram editor cadence settings
type EditorConfig struct {
	// RenderDebounceMs coalesces re-renders of declarative diagram text
	RenderDebounceMs int `yaml:"render_debounce_ms"`
	// ExportDebounceMs coalesces scene serialization and raster export
	ExportDebounceMs int `yaml:"export_debounce_ms"`
}

// FeedbackConfig holds the display-side feedback cooldown estimate
type FeedbackConfig struct {
	CooldownSeconds int `yaml:"cooldown_seconds"`
}

// PreviewConfig holds the live-preview server settings
type PreviewConfig struct {
	Port int    `yaml:"port"`
	Bind string `yaml:"bind"`
}

// CortexDir returns the path to ~/.cortex
func CortexDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".cortex"), nil
}

// EnsureCortexDir creates ~/.cortex and its subdirectories if needed
func EnsureCortexDir() (string, error) {
	dir, err := CortexDir()
	if err != nil {
		return "", err
	}

	subdirs := []string{
		"",
		"drafts",
		"cache",
		"workspaces",
	}

	for _, subdir := range subdirs {
		path := filepath.Join(dir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}

	return dir, nil
}

// DefaultLocalConfig returns sensible defaults for the client
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		API: APIConfig{
			BaseURL:        "https://api.cortex.dev/v1",
			TimeoutSeconds: 30,
		},
		Editor: EditorConfig{
			RenderDebounceMs: 300,
			ExportDebounceMs: 1000,
		},
		Feedback: FeedbackConfig{
			CooldownSeconds: 300,
		},
		Preview: PreviewConfig{
			Port: 7319,
			Bind: "127.0.0.1",
		},
	}
}

// LoadLocalConfig loads configuration from ~/.cortex/config.yaml, falling
// back to defaults when the file does not exist
func LoadLocalConfig() (*LocalConfig, error) {
	dir, err := CortexDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(dir, "config.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultLocalConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultLocalConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// SaveLocalConfig saves configuration to ~/.cortex/config.yaml
func SaveLocalConfig(cfg *LocalConfig) error {
	dir, err := EnsureCortexDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
