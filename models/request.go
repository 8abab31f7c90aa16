package models

import (
	"strings"
	"time"
)

// Request statuses. A request only ever moves from pending to approved.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
)

// AppointmentRequest represents the appointment_requests table
type AppointmentRequest struct {
	RequestID       int       `json:"request_id" db:"request_id"`
	Name            string    `json:"name" db:"name" validate:"required,max=100"`
	Contact         string    `json:"contact" db:"contact" validate:"required,max=50"`
	AppointmentDate string    `json:"appointment_date" db:"appointment_date" validate:"required"`
	AppointmentTime string    `json:"appointment_time" db:"appointment_time" validate:"required"`
	Gender          string    `json:"gender" db:"gender" validate:"required"`
	Age             FlexInt   `json:"age" db:"age" validate:"required"`
	Department      string    `json:"department" db:"department" validate:"required"`
	RequestStatus   string    `json:"request_status" db:"request_status"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// NormalizeDate trims an ISO timestamp such as 2025-01-02T00:00:00.000Z to
// its YYYY-MM-DD date part.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i == 10 {
		return s[:i]
	}
	return s
}
