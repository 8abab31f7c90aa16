package models

import (
	"time"
)

type Log struct {
	IDLog        int       `json:"id_log" db:"id_log"`
	RequestID    string    `json:"request_id" db:"request_id"`
	Method       string    `json:"method" db:"method"`
	Path         string    `json:"path" db:"path"`
	StatusCode   int       `json:"status_code" db:"status_code"`
	ResponseTime *int      `json:"response_time" db:"response_time"`
	UserAgent    *string   `json:"user_agent" db:"user_agent"`
	IP           string    `json:"ip" db:"ip"`
	Body         *string   `json:"body" db:"body"`
	Params       *string   `json:"params" db:"params"`
	Query        *string   `json:"query" db:"query"`
	Email        *string   `json:"email" db:"email"`
	Role         *string   `json:"role" db:"role"`
	LogLevel     string    `json:"log_level" db:"log_level"`
	Environment  string    `json:"environment" db:"environment"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type CreateLogRequest struct {
	RequestID    string  `json:"request_id"`
	Method       string  `json:"method"`
	Path         string  `json:"path"`
	StatusCode   int     `json:"status_code"`
	ResponseTime *int    `json:"response_time,omitempty"`
	UserAgent    *string `json:"user_agent,omitempty"`
	IP           string  `json:"ip"`
	Body         *string `json:"body,omitempty"`
	Params       *string `json:"params,omitempty"`
	Query        *string `json:"query,omitempty"`
	Email        *string `json:"email,omitempty"`
	Role         *string `json:"role,omitempty"`
	LogLevel     string  `json:"log_level"`
	Environment  string  `json:"environment"`
}

// Log levels
const (
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
	LogLevelDebug   = "debug"
	LogLevelSuccess = "success"
)

// Environments
const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
	EnvironmentTesting     = "testing"
)

// LogFilter narrows an audit log listing. Empty fields match everything.
type LogFilter struct {
	LogLevel   string
	Method     string
	StatusCode int
	Email      string
	Path       string
	From       time.Time
	To         time.Time
	Page       int
	Limit      int
}
