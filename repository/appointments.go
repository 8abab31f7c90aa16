package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/lizet96/hospital-appointments/apperr"
	"github.com/lizet96/hospital-appointments/models"
)

const appointmentColumns = `appointment_id, source_request_id, patient_name, patient_contact, doctor_id, nurse_id,
	to_char(appointment_date, 'YYYY-MM-DD'), appointment_time, gender, age, critical,
	payment_status, payment_amount::float8, payment_type, created_at`

func scanAppointment(row pgx.Row) (models.Appointment, error) {
	var a models.Appointment
	err := row.Scan(&a.AppointmentID, &a.SourceRequestID, &a.PatientName, &a.PatientContact,
		&a.DoctorID, &a.NurseID, &a.AppointmentDate, &a.AppointmentTime, &a.Gender, &a.Age,
		&a.Critical, &a.PaymentStatus, &a.PaymentAmount, &a.PaymentType, &a.CreatedAt)
	return a, err
}

// ListAppointments returns appointments matching the filter in storage order
func (p *Postgres) ListAppointments(ctx context.Context, f models.AppointmentFilter) ([]models.Appointment, error) {
	var conditions []string
	var args []interface{}
	if f.DoctorID != 0 {
		args = append(args, f.DoctorID)
		conditions = append(conditions, fmt.Sprintf("doctor_id = $%d", len(args)))
	}
	if f.NurseID != 0 {
		args = append(args, f.NurseID)
		conditions = append(conditions, fmt.Sprintf("nurse_id = $%d", len(args)))
	}

	query := "SELECT " + appointmentColumns + " FROM appointments"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY appointment_id"

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	appointments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Appointment, error) {
		return scanAppointment(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan appointments: %w", err)
	}
	return appointments, nil
}

// UpdatePayment overwrites the payment columns. Postgres counts matched
// rows, so repeating the same update still reports one row.
func (p *Postgres) UpdatePayment(ctx context.Context, in models.PaymentUpdate) (int64, error) {
	tag, err := p.pool.Exec(ctx,
		`UPDATE appointments SET payment_status = $1, payment_amount = round($2::numeric, 2), payment_type = $3
		 WHERE appointment_id = $4`,
		in.PaymentStatus, float64(in.Amount), in.PaymentMethod, int(in.AppointmentID))
	if err != nil {
		return 0, fmt.Errorf("update payment: %w", classify(err, "appointment"))
	}
	if tag.RowsAffected() == 0 {
		return 0, apperr.NotFound("appointment")
	}
	return tag.RowsAffected(), nil
}

// DeleteAppointment removes the appointment and its originating request in
// one transaction. doctorID restricts the delete to that doctor's
// appointments; zero allows any. Appointments booked before requests were
// linked by id fall back to matching name, contact and date.
func (p *Postgres) DeleteAppointment(ctx context.Context, appointmentID, doctorID int) (models.DeleteResult, error) {
	var res models.DeleteResult

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		sourceRequestID *int
		name, contact   string
		date            string
	)
	err = tx.QueryRow(ctx,
		`DELETE FROM appointments WHERE appointment_id = $1 AND ($2::int = 0 OR doctor_id = $2::int)
		 RETURNING source_request_id, patient_name, patient_contact, to_char(appointment_date, 'YYYY-MM-DD')`,
		appointmentID, doctorID).Scan(&sourceRequestID, &name, &contact, &date)
	if errors.Is(err, pgx.ErrNoRows) {
		return res, apperr.NotFound("appointment")
	}
	if err != nil {
		return res, fmt.Errorf("delete appointment: %w", err)
	}
	res.AppointmentsRemoved = 1

	if sourceRequestID != nil {
		res.RequestsRemoved, err = execRows(ctx, tx,
			"DELETE FROM appointment_requests WHERE request_id = $1", *sourceRequestID)
	} else {
		res.RequestsRemoved, err = execRows(ctx, tx,
			"DELETE FROM appointment_requests WHERE name = $1 AND contact = $2 AND appointment_date = $3::date",
			name, contact, date)
	}
	if err != nil {
		return models.DeleteResult{}, apperr.Partial("appointment not deleted, failed to remove its request", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.DeleteResult{}, fmt.Errorf("commit delete: %w", err)
	}
	return res, nil
}

func execRows(ctx context.Context, tx pgx.Tx, sql string, args ...interface{}) (int64, error) {
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
