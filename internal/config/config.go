package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr         string
	RemoteEndpointURL  string
	SpreadsheetID      string
	DriveFolderID      string
	SessionDBPath      string
	SessionIdleTimeout time.Duration
	CookieSecure       bool
	LogLevel           string
	LogFile            string
}

// Load reads configuration from the environment. Variables from a .env file
// in the working directory are applied first but never override values that
// are already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	idle, err := time.ParseDuration(getEnv("SESSION_IDLE_TIMEOUT", "8h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_IDLE_TIMEOUT: %w", err)
	}

	cfg := &Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		RemoteEndpointURL:  getEnv("REMOTE_ENDPOINT_URL", ""),
		SpreadsheetID:      getEnv("SPREADSHEET_ID", ""),
		DriveFolderID:      getEnv("DRIVE_FOLDER_ID", ""),
		SessionDBPath:      getEnv("SESSION_DB_PATH", ":memory:"),
		SessionIdleTimeout: idle,
		CookieSecure:       os.Getenv("COOKIE_SECURE") == "1",
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
	}
	if cfg.RemoteEndpointURL == "" {
		return nil, fmt.Errorf("REMOTE_ENDPOINT_URL is required")
	}
	if cfg.SessionIdleTimeout <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
