package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/lizet96/hospital-appointments/models"
)

// ListLogs pages through audit entries, newest first, and returns the total
// number of matching rows.
func (p *Postgres) ListLogs(ctx context.Context, f models.LogFilter) ([]models.Log, int, error) {
	var conditions []string
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if f.LogLevel != "" {
		add("log_level = $%d", f.LogLevel)
	}
	if f.Method != "" {
		add("method = $%d", strings.ToUpper(f.Method))
	}
	if f.StatusCode != 0 {
		add("status_code = $%d", f.StatusCode)
	}
	if f.Email != "" {
		add("email ILIKE $%d", "%"+f.Email+"%")
	}
	if f.Path != "" {
		add("path ILIKE $%d", "%"+f.Path+"%")
	}
	if !f.From.IsZero() {
		add("created_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("created_at < $%d", f.To)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := p.pool.QueryRow(ctx, "SELECT COUNT(*) FROM logs "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count logs: %w", err)
	}

	limit, page := f.Limit, f.Page
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf(`SELECT id_log, COALESCE(request_id, ''), method, path, status_code, response_time,
			user_agent, ip, body, params, query, email, role, log_level, environment, created_at
		FROM logs %s
		ORDER BY created_at DESC, id_log DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list logs: %w", err)
	}
	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Log, error) {
		var l models.Log
		err := row.Scan(&l.IDLog, &l.RequestID, &l.Method, &l.Path, &l.StatusCode, &l.ResponseTime,
			&l.UserAgent, &l.IP, &l.Body, &l.Params, &l.Query, &l.Email, &l.Role,
			&l.LogLevel, &l.Environment, &l.CreatedAt)
		return l, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scan logs: %w", err)
	}
	return logs, total, nil
}
