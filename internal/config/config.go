package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Database URLs
	PostgresURL   string
	ClickHouseURL string
	RedisURL      string

	// Worker pool
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration

	// Auth
	AdminToken string

	// Rate limiting
	RateLimitPerSecond int

	// Aggregation
	MinGames          int
	AggregationShards int
	RebuildInterval   time.Duration

	// Prediction
	TierAdvantage    float64
	TierDisadvantage float64
	Schema           []string
	AliasFile        string
	ProfilesFile     string
	ModelFile        string
	CacheTTL         time.Duration
}

var defaultSchema = []string{
	"weight", "recovery", "speed", "combo_game", "projectiles",
	"killpower", "ledgetrap", "edgeguard", "spacing", "cheese",
}

// Load loads configuration from environment variables.
// It returns an error if critical configuration is missing or inconsistent.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  getEnv("ENV", "development"),

		WorkerCount:   getEnvInt("WORKER_COUNT", 8),
		QueueSize:     getEnvInt("QUEUE_SIZE", 10000),
		BatchSize:     getEnvInt("BATCH_SIZE", 500),
		FlushInterval: getEnvDuration("FLUSH_INTERVAL", 1*time.Second),

		AdminToken: getEnv("ADMIN_TOKEN", ""),

		RateLimitPerSecond: getEnvInt("RATE_LIMIT_PER_SECOND", 100),

		MinGames:          getEnvInt("MIN_GAMES", 5),
		AggregationShards: getEnvInt("AGGREGATION_SHARDS", 4),
		RebuildInterval:   getEnvDuration("REBUILD_INTERVAL", 0),

		TierAdvantage:    getEnvFloat("TIER_ADVANTAGE", 0.55),
		TierDisadvantage: getEnvFloat("TIER_DISADVANTAGE", 0.45),
		Schema:           getEnvList("ATTRIBUTE_SCHEMA", defaultSchema),
		AliasFile:        getEnv("ALIAS_FILE", ""),
		ProfilesFile:     getEnv("PROFILES_FILE", ""),
		ModelFile:        getEnv("MODEL_FILE", ""),
		CacheTTL:         getEnvDuration("PREDICTION_CACHE_TTL", time.Hour),
	}

	cfg.AllowedOrigins = getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	if cfg.MinGames < 0 {
		return nil, fmt.Errorf("MIN_GAMES must be zero or more, got %d", cfg.MinGames)
	}
	if cfg.TierDisadvantage > cfg.TierAdvantage {
		return nil, fmt.Errorf("TIER_DISADVANTAGE (%v) is above TIER_ADVANTAGE (%v)", cfg.TierDisadvantage, cfg.TierAdvantage)
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.PostgresURL, err = getEnvRequired("POSTGRES_URL"); err != nil {
		return nil, err
	}
	if cfg.ClickHouseURL, err = getEnvRequired("CLICKHOUSE_URL"); err != nil {
		return nil, err
	}
	if cfg.RedisURL, err = getEnvRequired("REDIS_URL"); err != nil {
		return nil, err
	}
	if cfg.ModelFile, err = getEnvRequired("MODEL_FILE"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping blank entries.
func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
