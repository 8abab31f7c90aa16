package models

import "time"

// ContactMessage represents the contact_messages table
type ContactMessage struct {
	MessageID int       `json:"message_id" db:"message_id"`
	Name      string    `json:"name" db:"name" validate:"required,max=100"`
	Email     string    `json:"email" db:"email" validate:"required,email"`
	Subject   string    `json:"subject" db:"subject" validate:"required,max=200"`
	Message   string    `json:"message" db:"message" validate:"required,max=5000"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
