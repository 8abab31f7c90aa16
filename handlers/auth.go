package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/hospital-appointments/apperr"
	"github.com/lizet96/hospital-appointments/models"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)

// Login authenticates a staff member and returns a bearer token. Unknown
// email, wrong password and role mismatch all answer the same 401.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}

	user, err := h.store.FindUserByEmail(c.UserContext(), req.Email)
	if errors.Is(err, apperr.ErrNotFound) {
		return h.fail(c, errInvalidCredentials)
	}
	if err != nil {
		return h.fail(c, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return h.fail(c, errInvalidCredentials)
	}
	if req.Role != "" && req.Role != user.Role {
		return h.fail(c, errInvalidCredentials)
	}

	if user.MFAEnabled {
		if req.MFACode == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":        true,
				"message":      "MFA code required",
				"intCode":      "F20",
				"mfa_required": true,
			})
		}
		if !totp.Validate(req.MFACode, user.MFASecret) {
			return h.fail(c, fmt.Errorf("%w: invalid MFA code", apperr.ErrUnauthorized))
		}
	}

	token, err := h.tokens.Generate(user.UserID, user.Email, user.Role, user.StaffID)
	if err != nil {
		return h.fail(c, fmt.Errorf("sign token: %w", err))
	}

	return c.JSON(models.LoginResponse{
		Token:     token,
		Email:     user.Email,
		Role:      user.Role,
		UserID:    user.UserID,
		StaffID:   user.StaffID,
		ExpiresIn: int(h.tokens.TTL().Seconds()),
	})
}
