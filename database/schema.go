package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id SERIAL PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(10) NOT NULL CHECK (role IN ('doctor', 'nurse', 'admin')),
		mfa_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		mfa_secret TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS doctors (
		doctor_id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL UNIQUE REFERENCES users(user_id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		department VARCHAR(100) NOT NULL,
		contact VARCHAR(50) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS nurses (
		nurse_id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL UNIQUE REFERENCES users(user_id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		contact VARCHAR(50) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS appointment_requests (
		request_id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		contact VARCHAR(50) NOT NULL,
		appointment_date DATE NOT NULL,
		appointment_time VARCHAR(20) NOT NULL,
		gender VARCHAR(20) NOT NULL,
		age INTEGER NOT NULL,
		department VARCHAR(100) NOT NULL,
		request_status VARCHAR(10) NOT NULL DEFAULT 'pending'
			CHECK (request_status IN ('pending', 'approved')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS appointments (
		appointment_id SERIAL PRIMARY KEY,
		source_request_id INTEGER REFERENCES appointment_requests(request_id) ON DELETE SET NULL,
		patient_name VARCHAR(100) NOT NULL,
		patient_contact VARCHAR(50) NOT NULL,
		doctor_id INTEGER NOT NULL REFERENCES doctors(doctor_id),
		nurse_id INTEGER REFERENCES nurses(nurse_id) ON DELETE SET NULL,
		appointment_date DATE NOT NULL,
		appointment_time VARCHAR(20) NOT NULL,
		gender VARCHAR(20) NOT NULL,
		age INTEGER NOT NULL,
		critical VARCHAR(4) NOT NULL CHECK (critical IN ('low', 'mid', 'high')),
		payment_status VARCHAR(6) NOT NULL DEFAULT 'unpaid' CHECK (payment_status IN ('paid', 'unpaid')),
		payment_amount NUMERIC(10, 2) NOT NULL DEFAULT 0,
		payment_type VARCHAR(4) CHECK (payment_type IN ('cash', 'card')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_appointments_doctor ON appointments(doctor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_nurse ON appointments(nurse_id)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_status ON appointment_requests(request_status)`,

	`CREATE TABLE IF NOT EXISTS prescriptions (
		prescription_id SERIAL PRIMARY KEY,
		appointment_id INTEGER NOT NULL REFERENCES appointments(appointment_id) ON DELETE CASCADE,
		doctor_id INTEGER NOT NULL REFERENCES doctors(doctor_id),
		medicine_name VARCHAR(255) NOT NULL,
		medicine_dosage VARCHAR(100) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS contact_messages (
		message_id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL,
		subject VARCHAR(200) NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS logs (
		id_log BIGSERIAL PRIMARY KEY,
		request_id VARCHAR(36),
		method VARCHAR(10) NOT NULL,
		path VARCHAR(500) NOT NULL,
		status_code INTEGER NOT NULL,
		response_time INTEGER,
		user_agent TEXT,
		ip VARCHAR(45) NOT NULL,
		body TEXT,
		params TEXT,
		query TEXT,
		email VARCHAR(255),
		role VARCHAR(10),
		log_level VARCHAR(10) NOT NULL,
		environment VARCHAR(20) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates any missing tables. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// SeedAdmin creates the bootstrap admin account when it does not exist yet
func SeedAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string, logger zerolog.Logger) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	var id int
	err := pool.QueryRow(ctx, "SELECT user_id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := pool.Exec(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES ($1, $2, 'admin')",
		email, string(hash)); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logger.Info().Str("email", email).Msg("bootstrap admin created")
	return nil
}
