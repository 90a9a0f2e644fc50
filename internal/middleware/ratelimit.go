package middleware

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitConfig holds per-IP request budgets for the booking API
type RateLimitConfig struct {
	GlobalAPIMax        int
	GlobalAPIExpiration time.Duration

	// Failed shared-login attempts
	LoginMax        int
	LoginExpiration time.Duration

	// Feed websocket upgrades
	WebSocketMax        int
	WebSocketExpiration time.Duration
}

// DefaultRateLimitConfig returns production defaults sized for a single room board
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		GlobalAPIMax:        200,
		GlobalAPIExpiration: time.Minute,

		LoginMax:        5,
		LoginExpiration: 15 * time.Minute,

		WebSocketMax:        20,
		WebSocketExpiration: time.Minute,
	}
}

// LoadRateLimitConfig overlays RATE_LIMIT_* settings from getenv on the defaults.
// Development mode relaxes the API and websocket budgets.
func LoadRateLimitConfig(getenv func(string) string) *RateLimitConfig {
	cfg := DefaultRateLimitConfig()

	overrides := map[string]*int{
		"RATE_LIMIT_GLOBAL_API": &cfg.GlobalAPIMax,
		"RATE_LIMIT_LOGIN":      &cfg.LoginMax,
		"RATE_LIMIT_WEBSOCKET":  &cfg.WebSocketMax,
	}
	for key, target := range overrides {
		if n, err := strconv.Atoi(getenv(key)); err == nil && n > 0 {
			*target = n
		}
	}

	if getenv("ENVIRONMENT") == "development" {
		cfg.GlobalAPIMax = 1000
		cfg.WebSocketMax = 100
		log.Println("⚠️  [RATE-LIMIT] Development mode: using relaxed rate limits")
	}

	return cfg
}

func ipLimiter(scope string, max int, expiration time.Duration, message string, skipSuccessful bool) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return scope + ":" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("🚫 [RATE-LIMIT] %s limit reached for IP: %s", scope, c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       message,
				"retry_after": int(expiration.Seconds()),
			})
		},
		SkipSuccessfulRequests: skipSuccessful,
	})
}

// GlobalAPIRateLimiter limits every /api request per IP
func GlobalAPIRateLimiter(cfg *RateLimitConfig) fiber.Handler {
	return ipLimiter("api", cfg.GlobalAPIMax, cfg.GlobalAPIExpiration,
		"Too many requests. Please slow down.", false)
}

// LoginRateLimiter limits shared-login attempts per IP. Successful logins do not count.
func LoginRateLimiter(cfg *RateLimitConfig) fiber.Handler {
	return ipLimiter("login", cfg.LoginMax, cfg.LoginExpiration,
		"Too many login attempts. Please wait before trying again.", true)
}

// WebSocketRateLimiter limits feed connection attempts per IP
func WebSocketRateLimiter(cfg *RateLimitConfig) fiber.Handler {
	return ipLimiter("ws", cfg.WebSocketMax, cfg.WebSocketExpiration,
		"Too many connection attempts. Please wait before reconnecting.", false)
}
