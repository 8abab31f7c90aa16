package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lizet96/hospital-appointments/apperr"
	"github.com/lizet96/hospital-appointments/models"
)

const requestColumns = `request_id, name, contact, to_char(appointment_date, 'YYYY-MM-DD'),
	appointment_time, gender, age, department, request_status, created_at`

func scanRequest(row pgx.Row) (models.AppointmentRequest, error) {
	var r models.AppointmentRequest
	var age int
	err := row.Scan(&r.RequestID, &r.Name, &r.Contact, &r.AppointmentDate,
		&r.AppointmentTime, &r.Gender, &age, &r.Department, &r.RequestStatus, &r.CreatedAt)
	r.Age = models.FlexInt(age)
	return r, err
}

// CreateRequest stores a new pending request
func (p *Postgres) CreateRequest(ctx context.Context, req *models.AppointmentRequest) (int, error) {
	query := `INSERT INTO appointment_requests
		(name, contact, appointment_date, appointment_time, gender, age, department, request_status)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, 'pending') RETURNING request_id`

	var id int
	err := p.pool.QueryRow(ctx, query,
		req.Name, req.Contact, models.NormalizeDate(req.AppointmentDate), req.AppointmentTime,
		req.Gender, int(req.Age), req.Department).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert request: %w", classify(err, "request"))
	}
	req.RequestID = id
	req.RequestStatus = models.RequestPending
	return id, nil
}

// ListRequests lists requests with the given status, or all when status is
// empty, in insertion order.
func (p *Postgres) ListRequests(ctx context.Context, status string) ([]models.AppointmentRequest, error) {
	query := "SELECT " + requestColumns + " FROM appointment_requests"
	var args []interface{}
	if status != "" {
		query += " WHERE request_status = $1"
		args = append(args, status)
	}
	query += " ORDER BY request_id"

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	requests, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AppointmentRequest, error) {
		return scanRequest(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan requests: %w", err)
	}
	return requests, nil
}

// ApproveRequest creates the appointment and flips the request to approved
// in one transaction. The request row is locked first so that two nurses
// cannot approve the same request.
func (p *Postgres) ApproveRequest(ctx context.Context, in models.ApproveRequest) (int, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin approve: %w", err)
	}
	defer tx.Rollback(ctx)

	requestID := int(in.RequestID)
	var status string
	err = tx.QueryRow(ctx,
		"SELECT request_status FROM appointment_requests WHERE request_id = $1 FOR UPDATE",
		requestID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperr.NotFound("request")
	}
	if err != nil {
		return 0, fmt.Errorf("load request: %w", err)
	}
	if status != models.RequestPending {
		return 0, fmt.Errorf("%w: request %d is already %s", apperr.ErrConflict, requestID, status)
	}

	var nurseID *int
	if in.NurseID != 0 {
		id := int(in.NurseID)
		nurseID = &id
	}

	var appointmentID int
	err = tx.QueryRow(ctx, `INSERT INTO appointments (
			source_request_id, patient_name, patient_contact, doctor_id, nurse_id,
			appointment_date, appointment_time, gender, age, critical
		) VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9, $10) RETURNING appointment_id`,
		requestID, in.PatientName, in.PatientContact, int(in.DoctorID), nurseID,
		models.NormalizeDate(in.AppointmentDate), in.AppointmentTime, in.Gender, int(in.Age), in.Critical,
	).Scan(&appointmentID)
	if err != nil {
		return 0, fmt.Errorf("book appointment: %w", classify(err, "doctor or nurse"))
	}

	tag, err := tx.Exec(ctx,
		"UPDATE appointment_requests SET request_status = 'approved' WHERE request_id = $1 AND request_status = 'pending'",
		requestID)
	if err != nil {
		return 0, apperr.Partial("appointment not booked, failed to update request status", err)
	}
	if tag.RowsAffected() != 1 {
		return 0, apperr.Partial("appointment not booked, request status changed during approval",
			fmt.Errorf("%d rows updated", tag.RowsAffected()))
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit approve: %w", err)
	}
	return appointmentID, nil
}
