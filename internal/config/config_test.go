package config

import (
	"os"
	"testing"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{"returns default when not set", "TEST_KEY_UNSET", "default", "", "default"},
		{"returns env value when set", "TEST_KEY_SET", "default", "custom", "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		want         int
	}{
		{"returns default when not set", "TEST_INT_UNSET", 30, "", 30},
		{"parses valid int", "TEST_INT_VALID", 30, "42", 42},
		{"returns default on invalid int", "TEST_INT_INVALID", 30, "not-a-number", 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnvInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvInt(%q, %d) = %d, want %d", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestDefaultLocalConfig(t *testing.T) {
	cfg := DefaultLocalConfig()

	if cfg.Editor.RenderDebounceMs != 300 {
		t.Errorf("RenderDebounceMs = %d, want 300", cfg.Editor.RenderDebounceMs)
	}
	if cfg.Editor.ExportDebounceMs != 1000 {
		t.Errorf("ExportDebounceMs = %d, want 1000", cfg.Editor.ExportDebounceMs)
	}
	if cfg.Feedback.CooldownSeconds != 300 {
		t.Errorf("CooldownSeconds = %d, want 300", cfg.Feedback.CooldownSeconds)
	}
	if cfg.Preview.Bind != "127.0.0.1" {
		t.Errorf("Preview.Bind = %q, want loopback", cfg.Preview.Bind)
	}
}
