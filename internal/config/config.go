package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Log     LogConfig
}

// ServerConfig holds the page server settings
type ServerConfig struct {
	Host string
	Port string
	Addr string // Combined host:port for convenience
	// SessionIdle is how long a visitor's page state outlives its last request.
	SessionIdle time.Duration
}

// BackendConfig points at the sales API the page talks to
type BackendConfig struct {
	URL string
	// Timeout bounds every backend request. Zero means no timeout.
	Timeout time.Duration
}

// LogConfig selects the logger preset and level
type LogConfig struct {
	Env   string
	Level string
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// A missing .env file is fine
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: os.Getenv("SERVER_HOST"),
			Port: getEnv("SERVER_PORT", "8081"),
		},
		Backend: BackendConfig{
			URL: getEnv("BACKEND_URL", "http://localhost:5000"),
		},
		Log: LogConfig{
			Env:   getEnv("APP_ENV", "production"),
			Level: os.Getenv("LOG_LEVEL"),
		},
	}

	if _, err := strconv.ParseUint(cfg.Server.Port, 10, 16); err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT %q: %w", cfg.Server.Port, err)
	}
	cfg.Server.Addr = fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	u, err := url.Parse(cfg.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid BACKEND_URL %q", cfg.Backend.URL)
	}

	timeout, err := time.ParseDuration(getEnv("BACKEND_TIMEOUT", "0s"))
	if err != nil || timeout < 0 {
		return nil, fmt.Errorf("invalid BACKEND_TIMEOUT %q", os.Getenv("BACKEND_TIMEOUT"))
	}
	cfg.Backend.Timeout = timeout

	idle, err := time.ParseDuration(getEnv("SESSION_IDLE", "30m"))
	if err != nil || idle <= 0 {
		return nil, fmt.Errorf("invalid SESSION_IDLE %q", os.Getenv("SESSION_IDLE"))
	}
	cfg.Server.SessionIdle = idle

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
