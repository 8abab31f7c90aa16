package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/hospital-appointments/apperr"
	"github.com/lizet96/hospital-appointments/middleware"
	"github.com/lizet96/hospital-appointments/models"
)

// ListDoctorAppointments is the doctor's worklist
func (h *Handler) ListDoctorAppointments(c *fiber.Ctx) error {
	doctorID, err := paramID(c, "doctor_id")
	if err != nil {
		return h.fail(c, err)
	}
	if err := ownStaffID(c, doctorID); err != nil {
		return h.fail(c, err)
	}

	appointments, err := h.store.ListAppointments(c.UserContext(), models.AppointmentFilter{DoctorID: doctorID})
	if err != nil {
		return h.fail(c, err)
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	return c.JSON(appointments)
}

// actingDoctor is the doctor a treatment action is attributed to: the
// caller for doctors, the requested id (possibly zero) for admins.
func actingDoctor(c *fiber.Ctx, requested int) (int, error) {
	if middleware.Role(c) != models.RoleDoctor {
		return requested, nil
	}
	staffID := middleware.StaffID(c)
	if requested != 0 && requested != staffID {
		return 0, fmt.Errorf("%w: cannot act for another doctor", apperr.ErrForbidden)
	}
	return staffID, nil
}

// AddPrescription attaches one entry per medicine to an appointment
func (h *Handler) AddPrescription(c *fiber.Ctx) error {
	var req models.PrescriptionRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	doctorID, err := actingDoctor(c, int(req.DoctorID))
	if err != nil {
		return h.fail(c, err)
	}

	rows, err := h.store.AddPrescriptions(c.UserContext(), int(req.AppointmentID), doctorID, req.Medicines)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Prescription added successfully",
		"affectedRows": rows,
	})
}

// GetPrescription returns the medicines prescribed for an appointment. A
// doctor may only read their own appointments.
func (h *Handler) GetPrescription(c *fiber.Ctx) error {
	appointmentID, err := paramID(c, "appointment_id")
	if err != nil {
		return h.fail(c, err)
	}

	view, err := h.store.GetPrescription(c.UserContext(), appointmentID)
	if err != nil {
		return h.fail(c, err)
	}
	if middleware.Role(c) == models.RoleDoctor && view.DoctorID != middleware.StaffID(c) {
		return h.fail(c, fmt.Errorf("%w: appointment belongs to another doctor", apperr.ErrForbidden))
	}
	if view.Medicines == nil {
		view.Medicines = []models.PrescriptionEntry{}
	}
	return c.JSON(view)
}

// DeleteAppointment removes an appointment, its prescriptions and the
// request it was booked from
func (h *Handler) DeleteAppointment(c *fiber.Ctx) error {
	appointmentID, err := paramID(c, "appointment_id")
	if err != nil {
		return h.fail(c, err)
	}
	doctorID, err := actingDoctor(c, 0)
	if err != nil {
		return h.fail(c, err)
	}

	res, err := h.store.DeleteAppointment(c.UserContext(), appointmentID, doctorID)
	if err != nil {
		return h.fail(c, err)
	}

	h.audit.Event(c, models.LogLevelWarning, "appointment deleted", map[string]interface{}{
		"appointment_id":   appointmentID,
		"requests_removed": res.RequestsRemoved,
	})

	return c.JSON(fiber.Map{
		"message":         "Appointment deleted successfully",
		"affectedRows":    res.AppointmentsRemoved,
		"requestsRemoved": res.RequestsRemoved,
	})
}
