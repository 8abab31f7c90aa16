package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Keys under which the authenticated identity is stored in fiber locals
const (
	LocalUserID  = "user_id"
	LocalEmail   = "user_email"
	LocalRole    = "user_role"
	LocalStaffID = "staff_id"
)

// Claims carried by every access token
type Claims struct {
	UserID  int    `json:"user_id"`
	Email   string `json:"email"`
	Role    string `json:"user_role"`
	StaffID int    `json:"staff_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// TTL is the lifetime of issued tokens
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Generate signs a token for a user
func (t *TokenIssuer) Generate(userID int, email, role string, staffID int) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Email:   email,
		Role:    role,
		StaffID: staffID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates a token string and returns its claims
func (t *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// JWTMiddleware requires a valid "Bearer <token>" Authorization header and
// stores the identity in locals.
func JWTMiddleware(issuer *TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   true,
				"message": "authorization token required",
			})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   true,
				"message": "invalid token format",
			})
		}

		claims, err := issuer.Parse(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   true,
				"message": "invalid or expired token",
			})
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalEmail, claims.Email)
		c.Locals(LocalRole, claims.Role)
		c.Locals(LocalStaffID, claims.StaffID)

		return c.Next()
	}
}

// RequireRole only lets through tokens whose role is one of allowedRoles
func RequireRole(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Role(c)
		for _, allowed := range allowedRoles {
			if role == allowed {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   true,
			"message": "access denied: insufficient permissions",
		})
	}
}

// Role returns the authenticated role, or "" on public routes
func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(LocalRole).(string)
	return role
}

// UserID returns the authenticated user id, or 0
func UserID(c *fiber.Ctx) int {
	id, _ := c.Locals(LocalUserID).(int)
	return id
}

// StaffID returns the doctor or nurse id of the authenticated user, or 0
func StaffID(c *fiber.Ctx) int {
	id, _ := c.Locals(LocalStaffID).(int)
	return id
}

// Email returns the authenticated email, or ""
func Email(c *fiber.Ctx) string {
	email, _ := c.Locals(LocalEmail).(string)
	return email
}
