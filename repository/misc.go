package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lizet96/hospital-appointments/models"
)

// SaveContactMessage stores a message sent from the public contact form
func (p *Postgres) SaveContactMessage(ctx context.Context, msg *models.ContactMessage) (int, error) {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO contact_messages (name, email, subject, message)
		 VALUES ($1, $2, $3, $4) RETURNING message_id, created_at`,
		msg.Name, msg.Email, msg.Subject, msg.Message).Scan(&msg.MessageID, &msg.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert contact message: %w", classify(err, "message"))
	}
	return msg.MessageID, nil
}

// Stats computes the admin aggregate view in a few round trips
func (p *Postgres) Stats(ctx context.Context) (*models.Stats, error) {
	s := &models.Stats{
		AppointmentsByLevel: make(map[string]int, 3),
		GeneratedAt:         time.Now(),
	}

	err := p.pool.QueryRow(ctx, `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE request_status = 'pending'),
			COUNT(*) FILTER (WHERE request_status = 'approved')
		FROM appointment_requests`).Scan(&s.TotalRequests, &s.PendingRequests, &s.ApprovedRequests)
	if err != nil {
		return nil, fmt.Errorf("request stats: %w", err)
	}

	var low, mid, high int
	err = p.pool.QueryRow(ctx, `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE critical = 'low'),
			COUNT(*) FILTER (WHERE critical = 'mid'),
			COUNT(*) FILTER (WHERE critical = 'high'),
			COUNT(*) FILTER (WHERE payment_status = 'paid'),
			COUNT(*) FILTER (WHERE payment_status = 'unpaid'),
			COALESCE(SUM(payment_amount) FILTER (WHERE payment_status = 'paid'), 0)::float8
		FROM appointments`).Scan(&s.TotalAppointments,
		&low, &mid, &high, &s.PaidAppointments, &s.UnpaidAppointments, &s.RevenueCollected)
	if err != nil {
		return nil, fmt.Errorf("appointment stats: %w", err)
	}
	s.AppointmentsByLevel[models.CriticalLow] = low
	s.AppointmentsByLevel[models.CriticalMid] = mid
	s.AppointmentsByLevel[models.CriticalHigh] = high

	err = p.pool.QueryRow(ctx, `SELECT
			(SELECT COUNT(*) FROM doctors),
			(SELECT COUNT(*) FROM nurses),
			(SELECT COUNT(*) FROM prescriptions)`).Scan(&s.TotalDoctors, &s.TotalNurses, &s.TotalPrescriptions)
	if err != nil {
		return nil, fmt.Errorf("staff stats: %w", err)
	}
	return s, nil
}

// SaveLog writes one audit entry
func (p *Postgres) SaveLog(ctx context.Context, e models.CreateLogRequest) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO logs (
			request_id, method, path, status_code, response_time, user_agent, ip,
			body, params, query, email, role, log_level, environment
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		e.RequestID, e.Method, e.Path, e.StatusCode, e.ResponseTime, e.UserAgent, e.IP,
		e.Body, e.Params, e.Query, e.Email, e.Role, e.LogLevel, e.Environment)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}
