package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/hospital-appointments/models"
)

// UpdatePayment records how much was paid for an appointment and how.
// Repeating the same update is harmless.
func (h *Handler) UpdatePayment(c *fiber.Ctx) error {
	var req models.PaymentUpdate
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}

	rows, err := h.store.UpdatePayment(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}

	h.audit.Event(c, models.LogLevelInfo, "payment updated", map[string]interface{}{
		"appointment_id": int(req.AppointmentID),
		"payment_status": req.PaymentStatus,
		"amount":         float64(req.Amount),
		"payment_method": req.PaymentMethod,
	})

	return c.JSON(fiber.Map{
		"message":      "Payment updated successfully",
		"affectedRows": rows,
	})
}
