package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Broker    BrokerConfig
	Scheduler SchedulerConfig
	CORS      CORSConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// BrokerConfig holds the brokerage API settings. Token is the clear-text API
// token from the environment; FernetKey encrypts it before it is stored in
// the settings table.
type BrokerConfig struct {
	BaseURL   string
	Token     string
	FernetKey string
}

// SchedulerConfig holds the cron schedule for the periodic reconciliation
// job. An empty schedule disables the scheduler.
type SchedulerConfig struct {
	ReconcileSpec string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_tracker.db"),
		},
		Broker: BrokerConfig{
			BaseURL:   getEnv("BROKER_API_URL", "https://api-invest.tinkoff.ru/openapi"),
			Token:     os.Getenv("BROKER_API_TOKEN"),
			FernetKey: os.Getenv("FERNET_KEY"),
		},
		Scheduler: SchedulerConfig{
			ReconcileSpec: getEnv("RECONCILE_SCHEDULE", "@every 15m"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
