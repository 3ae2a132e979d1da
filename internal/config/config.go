// Package config provides configuration management for the platform.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Wager    WagerConfig
	Sports   SportsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	MetricsPort  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database configuration. An empty DSN selects
// the in-memory store.
type DatabaseConfig struct {
	DSN string
}

// RedisConfig holds Redis configuration. An empty address disables
// the leaderboards.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
	SignupBonus int64
}

// WagerConfig holds the stake bounds for the casino products and the
// point charge/withdraw limits.
type WagerConfig struct {
	MinBet      int64
	MaxBet      int64
	SlotsMaxBet int64
	ChargeMin   int64
	ChargeMax   int64
	WithdrawMin int64
}

// SportsConfig holds sports betting and simulator configuration.
type SportsConfig struct {
	MinBet      int64
	MaxBet      int64
	SimInterval time.Duration
	SimEnabled  bool
}

// Load loads configuration from environment with defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PB_PORT", "8080"),
			MetricsPort:  getEnv("PB_METRICS_PORT", "9090"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			DSN: getEnv("PB_DB_DSN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("PB_REDIS_ADDR", ""),
			Password: getEnv("PB_REDIS_PASSWORD", ""),
			DB:       int(getEnvInt64("PB_REDIS_DB", 0)),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("PB_JWT_SECRET", "pointbook-dev-secret-change-in-production"),
			TokenExpiry: 24 * time.Hour,
			SignupBonus: getEnvInt64("PB_SIGNUP_BONUS", 10000),
		},
		Wager: WagerConfig{
			MinBet:      getEnvInt64("PB_MIN_BET", 1000),
			MaxBet:      getEnvInt64("PB_MAX_BET", 500000),
			SlotsMaxBet: getEnvInt64("PB_SLOTS_MAX_BET", 100000),
			ChargeMin:   getEnvInt64("PB_CHARGE_MIN", 10000),
			ChargeMax:   getEnvInt64("PB_CHARGE_MAX", 10000000),
			WithdrawMin: getEnvInt64("PB_WITHDRAW_MIN", 30000),
		},
		Sports: SportsConfig{
			MinBet:      getEnvInt64("PB_SPORTS_MIN_BET", 1000),
			MaxBet:      getEnvInt64("PB_SPORTS_MAX_BET", 500000),
			SimInterval: getEnvDuration("PB_SIM_INTERVAL", 30*time.Second),
			SimEnabled:  getEnv("PB_SIM_ENABLED", "true") == "true",
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
