package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/hospital-appointments/apperr"
	"github.com/lizet96/hospital-appointments/middleware"
	"github.com/lizet96/hospital-appointments/models"
	"github.com/pquerna/otp/totp"
)

const mfaIssuer = "Hospital Appointments"

// SetupMFA generates a TOTP secret for the caller. MFA stays disabled until
// a code from the authenticator app is confirmed with VerifyMFA.
func (h *Handler) SetupMFA(c *fiber.Ctx) error {
	user, err := h.store.FindUserByID(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	if user.MFAEnabled {
		return h.fail(c, fmt.Errorf("%w: MFA is already enabled", apperr.ErrConflict))
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      mfaIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		return h.fail(c, fmt.Errorf("generate TOTP key: %w", err))
	}
	if err := h.store.SetMFA(c.UserContext(), user.UserID, key.Secret(), false); err != nil {
		return h.fail(c, err)
	}

	return c.JSON(models.MFASetupResponse{
		Secret:    key.Secret(),
		QRCodeURL: key.URL(),
	})
}

// VerifyMFA enables MFA once the caller proves they hold the secret
func (h *Handler) VerifyMFA(c *fiber.Ctx) error {
	var req models.MFAVerifyRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	user, err := h.store.FindUserByID(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	if user.MFASecret == "" {
		return h.fail(c, apperr.Validation("run MFA setup first"))
	}
	if !totp.Validate(req.Code, user.MFASecret) {
		return h.fail(c, fmt.Errorf("%w: invalid MFA code", apperr.ErrUnauthorized))
	}
	if err := h.store.SetMFA(c.UserContext(), user.UserID, user.MFASecret, true); err != nil {
		return h.fail(c, err)
	}

	h.audit.Event(c, models.LogLevelInfo, "MFA enabled", nil)
	return c.JSON(fiber.Map{"message": "MFA enabled"})
}

// DisableMFA turns MFA off and forgets the secret. A current code is
// required.
func (h *Handler) DisableMFA(c *fiber.Ctx) error {
	var req models.MFAVerifyRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	user, err := h.store.FindUserByID(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	if !user.MFAEnabled {
		return h.fail(c, apperr.Validation("MFA is not enabled"))
	}
	if !totp.Validate(req.Code, user.MFASecret) {
		return h.fail(c, fmt.Errorf("%w: invalid MFA code", apperr.ErrUnauthorized))
	}
	if err := h.store.SetMFA(c.UserContext(), user.UserID, "", false); err != nil {
		return h.fail(c, err)
	}

	h.audit.Event(c, models.LogLevelWarning, "MFA disabled", nil)
	return c.JSON(fiber.Map{"message": "MFA disabled"})
}
