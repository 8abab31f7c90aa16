package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitConfig configures one rate limiter
type RateLimitConfig struct {
	Name       string        // key prefix, keeps limiters apart in shared storage
	Max        int           // requests allowed per window
	Expiration time.Duration // window length
	Message    string
}

// DefaultRateLimit applies to the whole API
var DefaultRateLimit = RateLimitConfig{
	Name:       "api",
	Max:        300,
	Expiration: 15 * time.Minute,
	Message:    "too many requests, try again later",
}

// PublicFormRateLimit applies to the unauthenticated intake forms
var PublicFormRateLimit = RateLimitConfig{
	Name:       "form",
	Max:        30,
	Expiration: 15 * time.Minute,
	Message:    "too many submissions, try again later",
}

// AuthRateLimit applies to login
var AuthRateLimit = RateLimitConfig{
	Name:       "auth",
	Max:        20,
	Expiration: 30 * time.Minute,
	Message:    "too many login attempts, try again later",
}

// CreateRateLimiter builds a limiter keyed by client IP. A nil storage keeps
// counters in memory.
func CreateRateLimiter(config RateLimitConfig, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.Max,
		Expiration: config.Expiration,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return config.Name + ":" + c.Path() + "|" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       true,
				"message":     config.Message,
				"retry_after": int(config.Expiration.Seconds()),
			})
		},
	})
}

// BodySizeLimit rejects bodies larger than maxSize bytes
func BodySizeLimit(maxSize int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(c.Body()) > maxSize {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error":    true,
				"message":  "request body exceeds the allowed size",
				"max_size": maxSize,
			})
		}
		return c.Next()
	}
}

// SecurityHeaders sets the usual hardening headers on every response
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Content-Security-Policy", "default-src 'self'")
		c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		return c.Next()
	}
}
