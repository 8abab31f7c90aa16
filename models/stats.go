package models

import (
	"time"
)

// Stats is the admin aggregate view
type Stats struct {
	TotalRequests       int            `json:"total_requests"`
	PendingRequests     int            `json:"pending_requests"`
	ApprovedRequests    int            `json:"approved_requests"`
	TotalAppointments   int            `json:"total_appointments"`
	AppointmentsByLevel map[string]int `json:"appointments_by_criticality"`
	PaidAppointments    int            `json:"paid_appointments"`
	UnpaidAppointments  int            `json:"unpaid_appointments"`
	RevenueCollected    float64        `json:"revenue_collected"`
	TotalDoctors        int            `json:"total_doctors"`
	TotalNurses         int            `json:"total_nurses"`
	TotalPrescriptions  int            `json:"total_prescriptions"`
	GeneratedAt         time.Time      `json:"generated_at"`
}
