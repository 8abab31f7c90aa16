package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/hospital-appointments/apperr"
	"github.com/lizet96/hospital-appointments/models"
	"golang.org/x/crypto/bcrypt"
)

// ListAppointments returns every appointment
func (h *Handler) ListAppointments(c *fiber.Ctx) error {
	appointments, err := h.store.ListAppointments(c.UserContext(), models.AppointmentFilter{})
	if err != nil {
		return h.fail(c, err)
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	return c.JSON(appointments)
}

func (h *Handler) ListDoctors(c *fiber.Ctx) error {
	doctors, err := h.store.ListDoctors(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	if doctors == nil {
		doctors = []models.Doctor{}
	}
	return c.JSON(doctors)
}

func (h *Handler) ListNurses(c *fiber.Ctx) error {
	nurses, err := h.store.ListNurses(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	if nurses == nil {
		nurses = []models.Nurse{}
	}
	return c.JSON(nurses)
}

// CreateDoctor provisions a doctor together with their login
func (h *Handler) CreateDoctor(c *fiber.Ctx) error {
	var req models.CreateDoctorRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return h.fail(c, fmt.Errorf("hash password: %w", err))
	}

	doctor, err := h.store.CreateDoctor(c.UserContext(), req, string(hash))
	if err != nil {
		return h.fail(c, err)
	}

	h.audit.Event(c, models.LogLevelInfo, "doctor created", map[string]interface{}{
		"doctor_id":  doctor.DoctorID,
		"department": doctor.Department,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Doctor created successfully",
		"doctor":  doctor,
	})
}

// CreateNurse provisions a nurse together with their login
func (h *Handler) CreateNurse(c *fiber.Ctx) error {
	var req models.CreateNurseRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return h.fail(c, fmt.Errorf("hash password: %w", err))
	}

	nurse, err := h.store.CreateNurse(c.UserContext(), req, string(hash))
	if err != nil {
		return h.fail(c, err)
	}

	h.audit.Event(c, models.LogLevelInfo, "nurse created", map[string]interface{}{
		"nurse_id": nurse.NurseID,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Nurse created successfully",
		"nurse":   nurse,
	})
}

// Stats returns the aggregate dashboard numbers
func (h *Handler) Stats(c *fiber.Ctx) error {
	stats, err := h.store.Stats(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(stats)
}

// ListLogs pages through the audit log with optional filters
func (h *Handler) ListLogs(c *fiber.Ctx) error {
	f := models.LogFilter{
		LogLevel: c.Query("log_level"),
		Method:   c.Query("method"),
		Email:    c.Query("email"),
		Path:     c.Query("path"),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 50),
	}
	if s := c.Query("status_code"); s != "" {
		code, err := strconv.Atoi(s)
		if err != nil {
			return h.fail(c, apperr.Validation("status_code must be a number"))
		}
		f.StatusCode = code
	}
	if s := c.Query("from"); s != "" {
		from, err := time.Parse("2006-01-02", s)
		if err != nil {
			return h.fail(c, apperr.Validation("from must be YYYY-MM-DD"))
		}
		f.From = from
	}
	if s := c.Query("to"); s != "" {
		to, err := time.Parse("2006-01-02", s)
		if err != nil {
			return h.fail(c, apperr.Validation("to must be YYYY-MM-DD"))
		}
		// include the whole day
		f.To = to.Add(24 * time.Hour)
	}

	logs, total, err := h.store.ListLogs(c.UserContext(), f)
	if err != nil {
		return h.fail(c, err)
	}
	if logs == nil {
		logs = []models.Log{}
	}

	return c.JSON(StandardResponse{
		StatusCode: fiber.StatusOK,
		Body: BodyResponse{
			IntCode: "S70",
			Data: []interface{}{fiber.Map{
				"logs":  logs,
				"total": total,
				"page":  f.Page,
				"limit": f.Limit,
			}},
		},
	})
}
