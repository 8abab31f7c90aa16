package models

import (
	"time"
)

// Roles a staff account can hold
const (
	RoleDoctor = "doctor"
	RoleNurse  = "nurse"
	RoleAdmin  = "admin"
)

// User represents the users table: credentials and role of a staff member
type User struct {
	UserID       int       `json:"user_id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	StaffID      int       `json:"staff_id"` // doctor_id or nurse_id, 0 for admins
	MFAEnabled   bool      `json:"mfa_enabled" db:"mfa_enabled"`
	MFASecret    string    `json:"-" db:"mfa_secret"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// LoginRequest is the login body. Role is optional for older clients.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=doctor nurse admin"`
	MFACode  string `json:"mfa_code,omitempty"`
}

// LoginResponse carries the token and the ids dashboards keep in cookies
type LoginResponse struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	UserID    int    `json:"user_id"`
	StaffID   int    `json:"staff_id"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

type MFASetupResponse struct {
	Secret    string `json:"secret"`
	QRCodeURL string `json:"qr_code_url"`
}

type MFAVerifyRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}
