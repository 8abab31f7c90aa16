package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/hospital-appointments/apperr"
	"github.com/lizet96/hospital-appointments/models"
)

var errBadStatus = apperr.Validation("status must be pending or approved")

// CreateRequest stores a patient's appointment request as pending
func (h *Handler) CreateRequest(c *fiber.Ctx) error {
	var req models.AppointmentRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}

	id, err := h.store.CreateRequest(c.UserContext(), &req)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Appointment request submitted successfully",
		"request_id": id,
	})
}

// ListPendingRequests is the nurse's triage queue
func (h *Handler) ListPendingRequests(c *fiber.Ctx) error {
	return h.listRequests(c, models.RequestPending)
}

// ListAllRequests returns requests in every status, or the one named by
// the status query parameter
func (h *Handler) ListAllRequests(c *fiber.Ctx) error {
	status := c.Query("status")
	switch status {
	case "", models.RequestPending, models.RequestApproved:
	default:
		return h.fail(c, errBadStatus)
	}
	return h.listRequests(c, status)
}

func (h *Handler) listRequests(c *fiber.Ctx, status string) error {
	requests, err := h.store.ListRequests(c.UserContext(), status)
	if err != nil {
		return h.fail(c, err)
	}
	if requests == nil {
		requests = []models.AppointmentRequest{}
	}
	return c.JSON(requests)
}
