package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	token, err := issuer.Generate(7, "grey@hospital.test", "doctor", 3)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != 7 || claims.Email != "grey@hospital.test" || claims.Role != "doctor" || claims.StaffID != 3 {
		t.Errorf("claims = %+v", claims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Errorf("lifetime = %v, want 1h", got)
	}
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	other, _ := NewTokenIssuer("other-secret", time.Hour).Generate(1, "a@b.c", "admin", 0)
	if _, err := issuer.Parse(other); err == nil {
		t.Error("token signed with another secret was accepted")
	}

	expired, _ := NewTokenIssuer("test-secret", -time.Minute).Generate(1, "a@b.c", "admin", 0)
	if _, err := issuer.Parse(expired); err == nil {
		t.Error("expired token was accepted")
	}
}

func newGuardedApp(issuer *TokenIssuer, roles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/guarded", JWTMiddleware(issuer), RequireRole(roles...), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":  UserID(c),
			"staff_id": StaffID(c),
			"role":     Role(c),
			"email":    Email(c),
		})
	})
	return app
}

func TestJWTMiddlewareAndRequireRole(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	app := newGuardedApp(issuer, "nurse", "admin")

	nurseToken, _ := issuer.Generate(2, "joy@hospital.test", "nurse", 5)
	doctorToken, _ := issuer.Generate(3, "grey@hospital.test", "doctor", 4)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"not bearer", "Token " + nurseToken, fiber.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", fiber.StatusUnauthorized},
		{"wrong role", "Bearer " + doctorToken, fiber.StatusForbidden},
		{"allowed role", "Bearer " + nurseToken, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/guarded", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}
