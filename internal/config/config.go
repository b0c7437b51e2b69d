package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds process-level configuration resolved from the environment
type Config struct {
	// API
	APIBaseURL     string
	TimeoutSeconds int

	// Diagnostics
	Debug bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() *Config {
	godotenv.Load()

	return &Config{
		APIBaseURL:     getEnv("CORTEX_API_URL", "https://api.cortex.dev/v1"),
		TimeoutSeconds: getEnvInt("CORTEX_TIMEOUT_SECONDS", 30),
		Debug:          getEnvBool("DEBUG", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
