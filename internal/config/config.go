package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/spotsense/spotscore/internal/ratelimit"
	"github.com/spotsense/spotscore/internal/scoring"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Cache       CacheConfig
	RateLimit   ratelimit.Config
	Scoring     scoring.Config
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds SQLite configuration
type DatabaseConfig struct {
	DataDir       string
	RetentionDays int
}

// RedisConfig holds Redis configuration. An empty address disables Redis and
// the rate limiter runs on its in-memory fallback.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig holds score cache configuration
type CacheConfig struct {
	ScoreTTL    time.Duration
	RankingsTTL time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env file")
	}

	return Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8090),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			DataDir:       getEnv("DATA_DIR", "./data"),
			RetentionDays: getEnvAsInt("DATA_RETENTION_DAYS", 365),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			ScoreTTL:    getEnvAsDuration("CACHE_SCORE_TTL", 2*time.Minute),
			RankingsTTL: getEnvAsDuration("CACHE_RANKINGS_TTL", 5*time.Minute),
		},
		RateLimit: ratelimit.Config{
			IPLimitPerMin:       getEnvAsInt("RATE_LIMIT_IP_PER_MIN", 120),
			CheckinLimitPerHour: getEnvAsInt("RATE_LIMIT_CHECKIN_PER_HOUR", 30),
			BurstMultiplier:     getEnvAsInt("RATE_LIMIT_BURST_MULTIPLIER", 2),
		},
		Scoring: scoring.Config{
			StalenessThreshold: getEnvAsDuration("SCORE_STALENESS_THRESHOLD", 0),
			MomentumWindow:     getEnvAsDuration("SCORE_MOMENTUM_WINDOW", 0),
			MomentumMinSamples: getEnvAsInt("SCORE_MOMENTUM_MIN_SAMPLES", 0),
			CheckinWindow:      getEnvAsDuration("SCORE_CHECKIN_WINDOW", 0),
		},
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
