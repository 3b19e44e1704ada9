package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	DBConn         string
	LogLevel       string
	RedisAddr      string
	CacheTTL       time.Duration
	CronSpec       string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SenderEmail    string
	AlertRecipient string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DBConn:         getEnv("DB_CONN", "host=localhost port=5432 user=fincast password=fincast dbname=fincast sslmode=disable"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		CronSpec:       getEnv("CRON_SPEC", "0 7 * * *"),
		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SenderEmail:    getEnv("SENDER_EMAIL", "noreply@fincast.local"),
		AlertRecipient: getEnv("ALERT_RECIPIENT", ""),
	}

	ttl, err := time.ParseDuration(getEnv("FORECAST_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid FORECAST_CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = ttl

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
