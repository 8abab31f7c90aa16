package models

import (
	"time"
)

// Doctor represents the doctors table
type Doctor struct {
	DoctorID   int       `json:"doctor_id" db:"doctor_id"`
	UserID     int       `json:"user_id" db:"user_id"`
	Name       string    `json:"name" db:"name"`
	Department string    `json:"department" db:"department"`
	Contact    string    `json:"contact" db:"contact"`
	Email      string    `json:"email" db:"email"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Nurse represents the nurses table
type Nurse struct {
	NurseID   int       `json:"nurse_id" db:"nurse_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Contact   string    `json:"contact" db:"contact"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateDoctorRequest is the admin form for a new doctor
type CreateDoctorRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	Department string `json:"department" validate:"required,max=100"`
	Contact    string `json:"contact" validate:"required,max=50"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
}

// CreateNurseRequest is the admin form for a new nurse
type CreateNurseRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Contact  string `json:"contact" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// GroupByDepartment buckets doctors by department, keeping list order
// within each bucket.
func GroupByDepartment(doctors []Doctor) map[string][]Doctor {
	grouped := make(map[string][]Doctor)
	for _, d := range doctors {
		grouped[d.Department] = append(grouped[d.Department], d)
	}
	return grouped
}
