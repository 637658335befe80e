package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	ServerPort string
	ServerHost string
	LogLevel   string

	DBDriver string
	DBDSN    string

	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	JWTSecret string
	JWTIssuer string
}

func Load() (*Config, error) {
	port := getEnvOrDefault("SERVER_PORT", "8080")
	host := getEnvOrDefault("SERVER_HOST", "localhost")
	logLevel := getEnvOrDefault("LOG_LEVEL", "info")

	driver := getEnvOrDefault("DB_DRIVER", "memory")
	dsn := os.Getenv("DB_DSN")
	switch driver {
	case "memory":
	case "postgres", "oracle", "sqlite":
		if dsn == "" {
			return nil, fmt.Errorf("DB_DSN environment variable is required for the %s driver", driver)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", driver)
	}

	cacheTTL, err := time.ParseDuration(getEnvOrDefault("CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET environment variable is required")
	}

	return &Config{
		ServerPort:    port,
		ServerHost:    host,
		LogLevel:      logLevel,
		DBDriver:      driver,
		DBDSN:         dsn,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CacheTTL:      cacheTTL,
		JWTSecret:     secret,
		JWTIssuer:     os.Getenv("AUTH_JWT_ISSUER"),
	}, nil
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
