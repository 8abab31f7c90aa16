package models

import (
	"time"
)

// PrescriptionEntry represents one row of the prescriptions table
type PrescriptionEntry struct {
	PrescriptionID int       `json:"prescription_id" db:"prescription_id"`
	AppointmentID  int       `json:"appointment_id" db:"appointment_id"`
	DoctorID       int       `json:"doctor_id" db:"doctor_id"`
	MedicineName   string    `json:"medicine_name" db:"medicine_name"`
	MedicineDosage string    `json:"medicine_dosage" db:"medicine_dosage"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type Medicine struct {
	MedicineName   string `json:"medicine_name" validate:"required,max=255"`
	MedicineDosage string `json:"medicine_dosage" validate:"required,max=100"`
}

// PrescriptionRequest attaches medicines to an appointment
type PrescriptionRequest struct {
	AppointmentID FlexInt    `json:"appointment_id" validate:"required"`
	DoctorID      FlexInt    `json:"doctor_id"`
	Medicines     []Medicine `json:"medicines" validate:"required,min=1,dive"`
}

// PrescriptionView is what dashboards show for one appointment. An empty
// Medicines list means no medication was prescribed.
type PrescriptionView struct {
	AppointmentID int                 `json:"appointment_id"`
	PatientName   string              `json:"patient_name"`
	DoctorID      int                 `json:"doctor_id"`
	DoctorName    string              `json:"doctor_name"`
	Medicines     []PrescriptionEntry `json:"medicines"`
}
