package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const devSessionSecret = "kpitter-dev-secret-change-me"

type Config struct {
	Server struct {
		Port         string
		CookieSecure bool
	}
	Backend struct {
		BaseURL string
		Timeout time.Duration
	}
	Database struct {
		DSN string // empty keeps sessions in memory
	}
	Session struct {
		Secret     string
		Expiration time.Duration
	}
	Cache struct {
		MemcacheURL string
		UserTTL     time.Duration
	}
	Tracing struct {
		ZipkinAddress string
	}
	Locale struct {
		Default string
	}
	RateLimit struct {
		LoginPerMinute int
	}
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[Config] Could not read .env: %v", err)
	}

	cfg := &Config{}

	cfg.Server.Port = getEnv("PORT", "8080")
	cfg.Server.CookieSecure = getEnv("COOKIE_SECURE", "false") == "true"

	cfg.Backend.BaseURL = getEnv("BACKEND_URL", "http://localhost:8000/api")
	cfg.Backend.Timeout = time.Duration(getInt("BACKEND_TIMEOUT_SECONDS", 10)) * time.Second

	cfg.Database.DSN = getEnv("DATABASE_URL", "")

	cfg.Session.Secret = getEnv("SESSION_SECRET", "")
	if cfg.Session.Secret == "" {
		log.Println("[Config] WARNING: SESSION_SECRET is not set, using the development secret")
		cfg.Session.Secret = devSessionSecret
	}
	cfg.Session.Expiration = time.Duration(getInt("SESSION_HOURS", 24)) * time.Hour

	cfg.Cache.MemcacheURL = getEnv("MEM_URL", "")
	cfg.Cache.UserTTL = time.Duration(getInt("USER_CACHE_SECONDS", 60)) * time.Second

	cfg.Tracing.ZipkinAddress = getEnv("ZIPKIN_ADDRESS", "")

	cfg.Locale.Default = getEnv("DEFAULT_LANGUAGE", "uk")

	cfg.RateLimit.LoginPerMinute = getInt("LOGIN_RATE_PER_MINUTE", 20)

	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getInt falls back on missing, malformed or non-positive values.
func getInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		log.Printf("[Config] WARNING: invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return value
}
