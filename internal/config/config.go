package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all configuration for the application
type Config struct {
	// Server Configuration
	Server ServerConfig

	// Database Configuration
	Database DatabaseConfig

	// Redis Configuration
	Redis RedisConfig

	// Auth Configuration
	Auth AuthConfig

	// Game Configuration
	Game GameConfig

	// Logging Configuration
	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        string
	CORSOrigins []string
	MonitorPort string // asynqmon dashboard
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address string // Redis address (host:port)
}

// AuthConfig holds token configuration
type AuthConfig struct {
	TokenTTL time.Duration
}

// GameConfig holds balance game configuration
type GameConfig struct {
	DailySchedule string // 5-field cron expression
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// cronParser matches the 5-field expressions accepted for DAILY_GAME_SCHEDULE
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	tokenTTL := 7 * 24 * time.Hour
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", v, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", v)
		}
		tokenTTL = d
	}

	schedule := getEnv("DAILY_GAME_SCHEDULE", "0 0 * * *")
	if _, err := cronParser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid DAILY_GAME_SCHEDULE %q: %w", schedule, err)
	}

	var origins []string
	for _, o := range strings.Split(getEnv("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: origins,
			MonitorPort: getEnv("ASYNQMON_PORT", "8090"),
		},
		Database: DatabaseConfig{
			// default to a local file, allow override for docker volumes
			URL: getEnv("DATABASE_URL", "banban.sqlite"),
		},
		Redis: RedisConfig{
			Address: getEnv("REDIS_ADDRESS", "localhost:6379"),
		},
		Auth: AuthConfig{
			TokenTTL: tokenTTL,
		},
		Game: GameConfig{
			DailySchedule: schedule,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
