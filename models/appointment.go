package models

import (
	"time"
)

// Criticality levels assigned at triage
const (
	CriticalLow  = "low"
	CriticalMid  = "mid"
	CriticalHigh = "high"
)

// Payment values
const (
	PaymentPaid   = "paid"
	PaymentUnpaid = "unpaid"
	PaymentCash   = "cash"
	PaymentCard   = "card"
)

// Appointment represents the appointments table
type Appointment struct {
	AppointmentID   int       `json:"appointment_id" db:"appointment_id"`
	SourceRequestID *int      `json:"source_request_id" db:"source_request_id"`
	PatientName     string    `json:"patient_name" db:"patient_name"`
	PatientContact  string    `json:"patient_contact" db:"patient_contact"`
	DoctorID        int       `json:"doctor_id" db:"doctor_id"`
	NurseID         *int      `json:"nurse_id" db:"nurse_id"`
	AppointmentDate string    `json:"appointment_date" db:"appointment_date"`
	AppointmentTime string    `json:"appointment_time" db:"appointment_time"`
	Gender          string    `json:"gender" db:"gender"`
	Age             int       `json:"age" db:"age"`
	Critical        string    `json:"critical" db:"critical"`
	PaymentStatus   string    `json:"payment_status" db:"payment_status"`
	PaymentAmount   float64   `json:"payment_amount" db:"payment_amount"`
	PaymentType     *string   `json:"payment_type" db:"payment_type"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// ApproveRequest is the nurse's triage decision for a pending request
type ApproveRequest struct {
	RequestID       FlexInt `json:"request_id" validate:"required"`
	PatientName     string  `json:"patient_name" validate:"required"`
	PatientContact  string  `json:"patient_contact" validate:"required"`
	DoctorID        FlexInt `json:"doctor_id" validate:"required"`
	NurseID         FlexInt `json:"nurse_id"`
	AppointmentDate string  `json:"appointment_date" validate:"required"`
	AppointmentTime string  `json:"appointment_time" validate:"required"`
	Gender          string  `json:"gender" validate:"required"`
	Age             FlexInt `json:"age" validate:"required"`
	Critical        string  `json:"critical" validate:"required,oneof=low mid high"`
}

// PaymentUpdate sets the payment columns of one appointment
type PaymentUpdate struct {
	AppointmentID FlexInt   `json:"appointment_id" validate:"required"`
	PaymentStatus string    `json:"payment_status" validate:"required,oneof=paid unpaid"`
	Amount        FlexFloat `json:"amount" validate:"gte=0"`
	PaymentMethod string    `json:"payment_method" validate:"required,oneof=cash card"`
}

// AppointmentFilter narrows an appointment listing. Zero values match all.
type AppointmentFilter struct {
	DoctorID int
	NurseID  int
}

// DeleteResult reports what an appointment delete removed
type DeleteResult struct {
	AppointmentsRemoved int64 `json:"affectedRows"`
	RequestsRemoved     int64 `json:"requestsRemoved"`
}
