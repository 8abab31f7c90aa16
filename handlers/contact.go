package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/hospital-appointments/models"
)

// Contact stores a message from the public site and forwards it to the
// front desk inbox when mail is configured. Delivery failures are only
// logged.
func (h *Handler) Contact(c *fiber.Ctx) error {
	var msg models.ContactMessage
	if err := h.bind(c, &msg); err != nil {
		return h.fail(c, err)
	}

	id, err := h.store.SaveContactMessage(c.UserContext(), &msg)
	if err != nil {
		return h.fail(c, err)
	}

	if h.mail != nil {
		go func(msg models.ContactMessage) {
			if err := h.mail.SendContact(msg); err != nil {
				h.logger.Error().Err(err).Int("message_id", msg.MessageID).Msg("failed to forward contact message")
			}
		}(msg)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Message received, we will get back to you soon",
		"message_id": id,
	})
}
