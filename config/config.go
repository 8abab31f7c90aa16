package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration values for the application.
type Config struct {
	Port        string
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	JWTSecret   string
	JWTTTL      time.Duration
	Environment string
	CORSOrigins string
	RedisURL    string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	ContactInbox string

	AdminEmail    string
	AdminPassword string
}

// Load reads a .env file when present and then the process environment.
func Load() (*Config, error) {
	// A missing .env is fine, the variables may come from the environment
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "3000"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBMaxConns:    int32(getInt("DB_MAX_CONNS", 30)),
		DBMinConns:    int32(getInt("DB_MIN_CONNS", 5)),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		CORSOrigins:   getEnv("CORS_ORIGINS", "*"),
		RedisURL:      os.Getenv("REDIS_URL"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getInt("SMTP_PORT", 587),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		ContactInbox:  os.Getenv("CONTACT_INBOX"),
		AdminEmail:    strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	ttl, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, errors.New("JWT_TTL is not a valid duration")
	}
	cfg.JWTTTL = ttl

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return nil, errors.New("JWT_SECRET is required outside development")
		}
		cfg.JWTSecret = "development-only-secret"
	}
	return cfg, nil
}

// IsDev reports whether the server runs in development mode
func (c *Config) IsDev() bool {
	return c.Environment == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
