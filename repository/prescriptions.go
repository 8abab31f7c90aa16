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

// AddPrescriptions writes one row per medicine with a single multi-row
// insert. A non-zero doctorID must own the appointment; zero attributes the
// entries to the appointment's doctor.
func (p *Postgres) AddPrescriptions(ctx context.Context, appointmentID, doctorID int, medicines []models.Medicine) (int64, error) {
	if len(medicines) == 0 {
		return 0, apperr.Validation("medicines must be a non-empty list")
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin prescription: %w", err)
	}
	defer tx.Rollback(ctx)

	var ownerID int
	err = tx.QueryRow(ctx,
		"SELECT doctor_id FROM appointments WHERE appointment_id = $1", appointmentID).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperr.NotFound("appointment")
	}
	if err != nil {
		return 0, fmt.Errorf("load appointment: %w", err)
	}
	if doctorID == 0 {
		doctorID = ownerID
	} else if doctorID != ownerID {
		return 0, fmt.Errorf("%w: appointment %d belongs to another doctor", apperr.ErrForbidden, appointmentID)
	}

	values := make([]string, 0, len(medicines))
	args := make([]interface{}, 0, len(medicines)*4)
	for i, m := range medicines {
		n := i * 4
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4))
		args = append(args, appointmentID, doctorID, m.MedicineName, m.MedicineDosage)
	}
	query := "INSERT INTO prescriptions (appointment_id, doctor_id, medicine_name, medicine_dosage) VALUES " +
		strings.Join(values, ", ")

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert prescriptions: %w", classify(err, "appointment"))
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit prescription: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetPrescription returns every entry of an appointment with the doctor's
// name. A missing appointment is an error, an empty list is not.
func (p *Postgres) GetPrescription(ctx context.Context, appointmentID int) (*models.PrescriptionView, error) {
	view := &models.PrescriptionView{AppointmentID: appointmentID, Medicines: []models.PrescriptionEntry{}}

	err := p.pool.QueryRow(ctx,
		`SELECT a.patient_name, a.doctor_id, d.name
		 FROM appointments a JOIN doctors d ON a.doctor_id = d.doctor_id
		 WHERE a.appointment_id = $1`, appointmentID).Scan(&view.PatientName, &view.DoctorID, &view.DoctorName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("appointment")
	}
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	rows, err := p.pool.Query(ctx,
		`SELECT prescription_id, appointment_id, doctor_id, medicine_name, medicine_dosage, created_at
		 FROM prescriptions WHERE appointment_id = $1 ORDER BY prescription_id`, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PrescriptionEntry, error) {
		var e models.PrescriptionEntry
		err := row.Scan(&e.PrescriptionID, &e.AppointmentID, &e.DoctorID, &e.MedicineName, &e.MedicineDosage, &e.CreatedAt)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan prescriptions: %w", err)
	}
	view.Medicines = append(view.Medicines, entries...)
	return view, nil
}
