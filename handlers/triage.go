package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/hospital-appointments/apperr"
	"github.com/lizet96/hospital-appointments/middleware"
	"github.com/lizet96/hospital-appointments/models"
)

// ListDoctorsByDepartment lists doctors for the triage form, also grouped
// by department
func (h *Handler) ListDoctorsByDepartment(c *fiber.Ctx) error {
	doctors, err := h.store.ListDoctors(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	if doctors == nil {
		doctors = []models.Doctor{}
	}
	return c.JSON(fiber.Map{
		"data":          doctors,
		"by_department": models.GroupByDepartment(doctors),
	})
}

// ListNurseAppointments lists the appointments a nurse booked
func (h *Handler) ListNurseAppointments(c *fiber.Ctx) error {
	nurseID, err := paramID(c, "nurse_id")
	if err != nil {
		return h.fail(c, err)
	}
	if err := ownStaffID(c, nurseID); err != nil {
		return h.fail(c, err)
	}

	appointments, err := h.store.ListAppointments(c.UserContext(), models.AppointmentFilter{NurseID: nurseID})
	if err != nil {
		return h.fail(c, err)
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	return c.JSON(fiber.Map{"data": appointments})
}

// ApproveRequest books an appointment for a pending request. A nurse books
// under their own id; an admin may name any nurse or none.
func (h *Handler) ApproveRequest(c *fiber.Ctx) error {
	var req models.ApproveRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}

	if middleware.Role(c) == models.RoleNurse {
		staffID := middleware.StaffID(c)
		if req.NurseID == 0 {
			req.NurseID = models.FlexInt(staffID)
		} else if int(req.NurseID) != staffID {
			return h.fail(c, fmt.Errorf("%w: cannot book under another nurse", apperr.ErrForbidden))
		}
	}
	req.AppointmentDate = models.NormalizeDate(req.AppointmentDate)

	appointmentID, err := h.store.ApproveRequest(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}

	h.audit.Event(c, models.LogLevelInfo, "request approved", map[string]interface{}{
		"request_id":     int(req.RequestID),
		"appointment_id": appointmentID,
		"doctor_id":      int(req.DoctorID),
		"critical":       req.Critical,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "Appointment booked successfully",
		"appointment_id": appointmentID,
	})
}
