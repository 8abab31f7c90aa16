// Package repository holds every SQL statement of the service. Handlers
// depend on the Store interface; Postgres is the pgx implementation.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lizet96/hospital-appointments/apperr"
	"github.com/lizet96/hospital-appointments/models"
)

// Store is the persistence contract of the appointment lifecycle
type Store interface {
	// Request intake and triage
	CreateRequest(ctx context.Context, req *models.AppointmentRequest) (int, error)
	ListRequests(ctx context.Context, status string) ([]models.AppointmentRequest, error)
	ApproveRequest(ctx context.Context, in models.ApproveRequest) (int, error)

	// Appointments
	ListAppointments(ctx context.Context, f models.AppointmentFilter) ([]models.Appointment, error)
	UpdatePayment(ctx context.Context, in models.PaymentUpdate) (int64, error)
	DeleteAppointment(ctx context.Context, appointmentID, doctorID int) (models.DeleteResult, error)

	// Prescriptions
	AddPrescriptions(ctx context.Context, appointmentID, doctorID int, medicines []models.Medicine) (int64, error)
	GetPrescription(ctx context.Context, appointmentID int) (*models.PrescriptionView, error)

	// Staff directory and accounts
	ListDoctors(ctx context.Context) ([]models.Doctor, error)
	ListNurses(ctx context.Context) ([]models.Nurse, error)
	CreateDoctor(ctx context.Context, in models.CreateDoctorRequest, passwordHash string) (*models.Doctor, error)
	CreateNurse(ctx context.Context, in models.CreateNurseRequest, passwordHash string) (*models.Nurse, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, userID int) (*models.User, error)
	SetMFA(ctx context.Context, userID int, secret string, enabled bool) error

	// Misc
	SaveContactMessage(ctx context.Context, msg *models.ContactMessage) (int, error)
	Stats(ctx context.Context) (*models.Stats, error)
	SaveLog(ctx context.Context, entry models.CreateLogRequest) error
	ListLogs(ctx context.Context, f models.LogFilter) ([]models.Log, int, error)
}

// Postgres implements Store with a pgx connection pool
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

var _ Store = (*Postgres)(nil)

// Postgres error codes the service reacts to
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidDatetime     = "22007"
	codeDatetimeOverflow    = "22008"
	codeInvalidText         = "22P02"
)

// classify maps constraint and format errors onto error kinds. what names
// the referenced row for foreign key failures.
func classify(err error, what string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s already exists", apperr.ErrConflict, what)
	case codeForeignKeyViolation:
		return apperr.NotFound(what)
	case codeCheckViolation, codeInvalidDatetime, codeDatetimeOverflow, codeInvalidText:
		return apperr.Validation(pgErr.Message)
	}
	return err
}
