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

// ListDoctors returns every doctor ordered by department and name
func (p *Postgres) ListDoctors(ctx context.Context) ([]models.Doctor, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT doctor_id, user_id, name, department, contact, email, created_at
		 FROM doctors ORDER BY department, name`)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	doctors, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Doctor, error) {
		var d models.Doctor
		err := row.Scan(&d.DoctorID, &d.UserID, &d.Name, &d.Department, &d.Contact, &d.Email, &d.CreatedAt)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan doctors: %w", err)
	}
	return doctors, nil
}

// ListNurses returns every nurse ordered by name
func (p *Postgres) ListNurses(ctx context.Context) ([]models.Nurse, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT nurse_id, user_id, name, contact, email, created_at FROM nurses ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list nurses: %w", err)
	}
	nurses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Nurse, error) {
		var n models.Nurse
		err := row.Scan(&n.NurseID, &n.UserID, &n.Name, &n.Contact, &n.Email, &n.CreatedAt)
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan nurses: %w", err)
	}
	return nurses, nil
}

// CreateDoctor creates the login account and the doctor profile together
func (p *Postgres) CreateDoctor(ctx context.Context, in models.CreateDoctorRequest, passwordHash string) (*models.Doctor, error) {
	d := &models.Doctor{
		Name:       in.Name,
		Department: in.Department,
		Contact:    in.Contact,
		Email:      normalizeEmail(in.Email),
	}
	err := p.withStaffUser(ctx, d.Email, passwordHash, models.RoleDoctor, func(tx pgx.Tx, userID int) error {
		d.UserID = userID
		return tx.QueryRow(ctx,
			`INSERT INTO doctors (user_id, name, department, contact, email)
			 VALUES ($1, $2, $3, $4, $5) RETURNING doctor_id, created_at`,
			userID, d.Name, d.Department, d.Contact, d.Email).Scan(&d.DoctorID, &d.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// CreateNurse creates the login account and the nurse profile together
func (p *Postgres) CreateNurse(ctx context.Context, in models.CreateNurseRequest, passwordHash string) (*models.Nurse, error) {
	n := &models.Nurse{
		Name:    in.Name,
		Contact: in.Contact,
		Email:   normalizeEmail(in.Email),
	}
	err := p.withStaffUser(ctx, n.Email, passwordHash, models.RoleNurse, func(tx pgx.Tx, userID int) error {
		n.UserID = userID
		return tx.QueryRow(ctx,
			`INSERT INTO nurses (user_id, name, contact, email)
			 VALUES ($1, $2, $3, $4) RETURNING nurse_id, created_at`,
			userID, n.Name, n.Contact, n.Email).Scan(&n.NurseID, &n.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (p *Postgres) withStaffUser(ctx context.Context, email, passwordHash, role string, profile func(pgx.Tx, int) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin staff: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID int
	err = tx.QueryRow(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES ($1, $2, $3) RETURNING user_id",
		email, passwordHash, role).Scan(&userID)
	if err != nil {
		return fmt.Errorf("create user: %w", classify(err, "email"))
	}
	if err := profile(tx, userID); err != nil {
		return fmt.Errorf("create %s: %w", role, classify(err, "email"))
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit staff: %w", err)
	}
	return nil
}

const userQuery = `SELECT u.user_id, u.email, u.password_hash, u.role, u.mfa_enabled,
	COALESCE(u.mfa_secret, ''), COALESCE(d.doctor_id, n.nurse_id, 0), u.created_at
	FROM users u
	LEFT JOIN doctors d ON d.user_id = u.user_id
	LEFT JOIN nurses n ON n.user_id = u.user_id`

func (p *Postgres) findUser(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	var u models.User
	err := p.pool.QueryRow(ctx, userQuery+" WHERE "+where, arg).Scan(
		&u.UserID, &u.Email, &u.PasswordHash, &u.Role, &u.MFAEnabled, &u.MFASecret, &u.StaffID, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// FindUserByEmail looks a user up by email, ignoring case
func (p *Postgres) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return p.findUser(ctx, "lower(u.email) = $1", normalizeEmail(email))
}

func (p *Postgres) FindUserByID(ctx context.Context, userID int) (*models.User, error) {
	return p.findUser(ctx, "u.user_id = $1", userID)
}

// SetMFA stores the TOTP secret and whether it is active. An empty secret
// clears it.
func (p *Postgres) SetMFA(ctx context.Context, userID int, secret string, enabled bool) error {
	var secretArg *string
	if secret != "" {
		secretArg = &secret
	}
	tag, err := p.pool.Exec(ctx,
		"UPDATE users SET mfa_secret = $1, mfa_enabled = $2 WHERE user_id = $3",
		secretArg, enabled, userID)
	if err != nil {
		return fmt.Errorf("update mfa: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
