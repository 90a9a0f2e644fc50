package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"meetingroom/internal/models"
)

type stubValidator struct {
	token string
}

func (s stubValidator) Validate(_ context.Context, token string) (*models.UserSession, error) {
	if token != s.token {
		return nil, errors.New("invalid token")
	}
	return &models.UserSession{ID: "1000"}, nil
}

func TestSessionAuthMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(SessionAuthMiddleware(stubValidator{token: "good"}))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("session_id").(string))
	})

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "missing token", want: fiber.StatusUnauthorized},
		{name: "bad token", header: "Bearer bad", want: fiber.StatusUnauthorized},
		{name: "header token", header: "Bearer good", want: fiber.StatusOK},
		{name: "query token", query: "?token=good", want: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to send request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestSessionAuthMiddleware_Disabled(t *testing.T) {
	app := fiber.New()
	app.Use(SessionAuthMiddleware(nil))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		t.Errorf("Expected requests to pass when login is disabled, got %d", resp.StatusCode)
	}
}

func TestLoginRateLimiter(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	cfg.LoginMax = 2

	app := fiber.New()
	app.Post("/login", LoginRateLimiter(cfg), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusUnauthorized)
	})

	codes := []int{}
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
		if err != nil {
			t.Fatalf("Failed to send request: %v", err)
		}
		codes = append(codes, resp.StatusCode)
	}

	if codes[2] != fiber.StatusTooManyRequests {
		t.Errorf("Expected the third failed login to be limited, got %v", codes)
	}
}

func TestLoadRateLimitConfig(t *testing.T) {
	env := map[string]string{
		"RATE_LIMIT_LOGIN":      "9",
		"RATE_LIMIT_WEBSOCKET":  "not-a-number",
		"RATE_LIMIT_GLOBAL_API": "-3",
	}
	cfg := LoadRateLimitConfig(func(k string) string { return env[k] })

	defaults := DefaultRateLimitConfig()
	if cfg.LoginMax != 9 {
		t.Errorf("Expected login budget 9, got %d", cfg.LoginMax)
	}
	if cfg.WebSocketMax != defaults.WebSocketMax {
		t.Errorf("Expected invalid websocket budget to keep default %d, got %d", defaults.WebSocketMax, cfg.WebSocketMax)
	}
	if cfg.GlobalAPIMax != defaults.GlobalAPIMax {
		t.Errorf("Expected negative API budget to keep default %d, got %d", defaults.GlobalAPIMax, cfg.GlobalAPIMax)
	}

	env = map[string]string{"ENVIRONMENT": "development"}
	cfg = LoadRateLimitConfig(func(k string) string { return env[k] })
	if cfg.GlobalAPIMax != 1000 || cfg.WebSocketMax != 100 {
		t.Errorf("Expected relaxed budgets in development, got api=%d ws=%d", cfg.GlobalAPIMax, cfg.WebSocketMax)
	}
	if cfg.LoginMax != defaults.LoginMax {
		t.Errorf("Expected login budget unchanged in development, got %d", cfg.LoginMax)
	}
}
