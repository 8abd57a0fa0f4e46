package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/zcorvus/zauth/pkg/jwtx"
	"github.com/zcorvus/zauth/pkg/timex"
)

type Config struct {
	JWTSecret string // Required: HMAC secret for signing tokens
	Issuer    string // Optional: issuer claim for tokens (default: zauth)

	AccessTokenTTL      time.Duration // Optional: access token lifetime (default: 5m)
	RefreshTokenTTL     time.Duration // Optional: refresh token absolute lifetime (default: 30d)
	RefreshInactivity   time.Duration // Optional: refresh token idle window (default: 10d)
	TwoFactorSetupTTL   time.Duration // Optional: staged 2FA secret lifetime (default: 10m)
	CacheBackend        string        // Optional: 2FA staging cache backend (memory, redis) (default: memory)
	RedisAddr           string        // Optional: Redis address when CacheBackend is redis
	RedisPassword       string        // Optional: Redis password
	RedisDB             int           // Optional: Redis database number
	DatabaseFile        string        // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile          string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingPeriod  time.Duration // Expired refresh token sweep interval (default: 1h)
}

// LoadConfig reads configuration from the environment. Malformed duration
// strings are a startup failure, never silently replaced with a default.
func LoadConfig() (Config, error) {
	cfg := Config{
		JWTSecret:     os.Getenv("AUTH_JWT_SECRET"),
		Issuer:        getEnvOrDefault("AUTH_ISSUER", "zauth"),
		CacheBackend:  getEnvOrDefault("AUTH_CACHE_BACKEND", "memory"),
		RedisAddr:     os.Getenv("AUTH_REDIS_ADDR"),
		RedisPassword: os.Getenv("AUTH_REDIS_PASSWORD"),
		DatabaseFile:  getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:    getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		Env:           getEnvOrDefault("ENV", "dev"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:     getEnvOrDefault("LOG_FORMAT", "json"),
		Port:          getEnvIntOrDefault("PORT", 8080),
		RedisDB:       getEnvIntOrDefault("AUTH_REDIS_DB", 0),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	var err error
	if cfg.AccessTokenTTL, err = getEnvDuration("ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTokenTTL, err = getEnvDuration("REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.RefreshInactivity, err = getEnvDuration("REFRESH_INACTIVITY_TTL", 10*timex.Day); err != nil {
		return Config{}, err
	}
	if cfg.TwoFactorSetupTTL, err = getEnvDuration("TWO_FACTOR_SETUP_TTL", 10*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownGracePeriod, err = getEnvDuration("SHUTDOWN_GRACE_PERIOD", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.HousekeepingPeriod, err = getEnvDuration("HOUSEKEEPING_INTERVAL", time.Hour); err != nil {
		return Config{}, err
	}

	switch cfg.CacheBackend {
	case "memory":
	case "redis":
		if cfg.RedisAddr == "" {
			return Config{}, fmt.Errorf("AUTH_REDIS_ADDR is required when AUTH_CACHE_BACKEND is redis")
		}
	default:
		return Config{}, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

// getEnvDuration parses a duration string ("5m", "30d", bare integer
// milliseconds). Unlike the plain getters, a malformed value is an error.
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	d, err := timex.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
