package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds every environment setting the process needs. Required keys are
// validated at load time so a misconfigured deployment fails at startup
// instead of on the first request.
type Config struct {
	AppHost string
	AppPort string
	AppEnv  string

	DBHost     string
	DBPort     string
	DBDatabase string
	DBUsername string
	DBPassword string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string

	JWTAccessSecret   string
	JWTRefreshSecret  string
	JWTAccessExpires  time.Duration
	JWTRefreshExpires time.Duration

	BcryptCost  int
	FrontendURL string
}

var requiredKeys = []string{
	"APP_PORT",
	"DB_HOST",
	"DB_PORT",
	"DB_DATABASE",
	"DB_USERNAME",
	"DB_PASSWORD",
	"JWT_ACCESS_SECRET",
	"JWT_REFRESH_SECRET",
	"JWT_ACCESS_EXPIRES",
	"JWT_REFRESH_EXPIRES",
}

// Load reads the .env file if present and builds the Config. A missing
// required key is a fatal configuration error.
func Load() (*Config, error) {
	// A missing .env file is fine in production where the environment is
	// injected by the platform.
	_ = godotenv.Load()

	for _, key := range requiredKeys {
		if os.Getenv(key) == "" {
			return nil, fmt.Errorf("missing required environment variable %s", key)
		}
	}

	accessExpires, err := time.ParseDuration(os.Getenv("JWT_ACCESS_EXPIRES"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRES: %w", err)
	}
	refreshExpires, err := time.ParseDuration(os.Getenv("JWT_REFRESH_EXPIRES"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRES: %w", err)
	}

	cfg := &Config{
		AppHost:           os.Getenv("APP_HOST"),
		AppPort:           os.Getenv("APP_PORT"),
		AppEnv:            getEnvOrDefault("APP_ENV", "development"),
		DBHost:            os.Getenv("DB_HOST"),
		DBPort:            os.Getenv("DB_PORT"),
		DBDatabase:        os.Getenv("DB_DATABASE"),
		DBUsername:        os.Getenv("DB_USERNAME"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBSSLMode:         getEnvOrDefault("DB_SSLMODE", "disable"),
		RedisAddr:         getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		JWTAccessSecret:   os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret:  os.Getenv("JWT_REFRESH_SECRET"),
		JWTAccessExpires:  accessExpires,
		JWTRefreshExpires: refreshExpires,
		BcryptCost:        bcrypt.DefaultCost,
		FrontendURL:       getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}

	if raw := os.Getenv("BCRYPT_COST"); raw != "" {
		cost, err := strconv.Atoi(raw)
		if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %s", raw)
		}
		cfg.BcryptCost = cost
	}

	return cfg, nil
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
