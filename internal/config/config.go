package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API  APIConfig
	Bulk BulkConfig
	Mock MockConfig
	Env  string

	LogLevel string
}

type APIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type BulkConfig struct {
	Mode        string
	Concurrency int
}

type MockConfig struct {
	Port            string
	Token           string
	RateLimitPerMin int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("VIGIL_API_URL", ""), "/"),
			Token:   getEnv("VIGIL_API_TOKEN", ""),
			Timeout: getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		},
		Bulk: BulkConfig{
			Mode:        getEnv("BULK_MODE", "per_item"),
			Concurrency: getEnvAsInt("BULK_CONCURRENCY", 4),
		},
		Mock: MockConfig{
			Port:            getEnv("MOCK_SERVER_PORT", "8090"),
			Token:           getEnv("VIGIL_API_TOKEN", ""),
			RateLimitPerMin: getEnvAsInt("MOCK_RATE_LIMIT", 0),
		},
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.API.Timeout <= 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if cfg.Bulk.Concurrency < 1 {
		return nil, fmt.Errorf("BULK_CONCURRENCY must be at least 1 (got %d)", cfg.Bulk.Concurrency)
	}

	return cfg, nil
}

// RequireAPI checks the settings needed to reach the remote directory
func (c *Config) RequireAPI() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("VIGIL_API_URL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("VIGIL_API_URL must be an absolute URL (got %q)", c.API.BaseURL)
	}
	if c.Env == "production" && u.Scheme != "https" {
		return fmt.Errorf("VIGIL_API_URL must use https in production")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
