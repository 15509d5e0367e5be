package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Code issuing strategies.
const (
	StrategyLocal    = "local"
	StrategyExternal = "external"
)

type Config struct {
	DatabaseURL string
	RedisURL    string
	Port        string
	BaseURL     string // Base URL for generated short links (e.g. http://localhost:8080)
	FrontendURL string // Frontend URL for CORS

	// Code generation
	Strategy        string        // "local" or "external"
	CodeLength      int           // Length of locally generated codes
	IssuerURL       string        // External issuer endpoint (is.gd compatible)
	IssuerTimeout   time.Duration // Bound on the external issuer call
	FallbackToLocal bool          // Fall back to local synthesis on issuer failure
}

func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	port := getEnv("PORT", "8080")

	cfg := &Config{
		DatabaseURL:     dbURL,
		RedisURL:        getEnv("REDIS_URL", "localhost:6379"),
		Port:            port,
		BaseURL:         getEnv("BASE_URL", "http://localhost:"+port),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		Strategy:        getEnv("SHORTENER_STRATEGY", StrategyLocal),
		CodeLength:      getEnvInt("CODE_LENGTH", 6),
		IssuerURL:       getEnv("ISSUER_URL", "https://is.gd/create.php"),
		IssuerTimeout:   getEnvDuration("ISSUER_TIMEOUT", 5*time.Second),
		FallbackToLocal: getEnvBool("FALLBACK_TO_LOCAL", false),
	}

	if cfg.Strategy != StrategyLocal && cfg.Strategy != StrategyExternal {
		return nil, fmt.Errorf("SHORTENER_STRATEGY must be %q or %q, got %q",
			StrategyLocal, StrategyExternal, cfg.Strategy)
	}
	if cfg.CodeLength < 3 || cfg.CodeLength > 20 {
		return nil, fmt.Errorf("CODE_LENGTH must be between 3 and 20, got %d", cfg.CodeLength)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
