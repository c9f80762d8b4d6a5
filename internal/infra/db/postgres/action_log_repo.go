package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"tefillin-reminder-bot/internal/domain/model"
	"tefillin-reminder-bot/internal/domain/ports/repository"
)

var _ repository.ActionLogRepository = (*ActionLogRepo)(nil)

type ActionLogRepo struct {
	pool *pgxpool.Pool
}

func NewActionLogRepo(pool *pgxpool.Pool) *ActionLogRepo {
	return &ActionLogRepo{pool: pool}
}

func (r *ActionLogRepo) Log(ctx context.Context, userID int64, action, details string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO action_logs (user_id, action, details) VALUES ($1, $2, $3)`,
		userID, action, details)
	return err
}

func (r *ActionLogRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM action_logs WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *ActionLogRepo) CountByUserAction(ctx context.Context, userID int64, action string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM action_logs WHERE user_id = $1 AND action = $2`,
		userID, action).Scan(&n)
	return n, err
}

func (r *ActionLogRepo) CountActionBetween(ctx context.Context, action string, from, to time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM action_logs WHERE action = $1 AND ts >= $2 AND ts < $3`,
		action, from, to).Scan(&n)
	return n, err
}

// UsageSince groups completions per user. Days and hours are computed from
// the log timestamps in SQL so the window never loads raw rows into memory.
func (r *ActionLogRepo) UsageSince(ctx context.Context, since time.Time) ([]model.UsageRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.user_id,
		       COUNT(DISTINCT to_char(l.ts, 'YYYY-MM-DD')) AS days_count,
		       ARRAY_AGG(DISTINCT to_char(l.ts, 'HH24:MI')) AS hours,
		       MAX(l.ts) AS last,
		       COALESCE(u.daily_time, '') AS daily_time,
		       COALESCE(u.active, FALSE) AS active
		FROM action_logs l
		LEFT JOIN users u ON u.id = l.user_id
		WHERE l.action = $1 AND l.ts >= $2
		GROUP BY l.user_id, u.daily_time, u.active
		ORDER BY days_count DESC, last DESC`,
		repository.ActionTefillinDone, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UsageRow
	for rows.Next() {
		var row model.UsageRow
		if err := rows.Scan(&row.UserID, &row.DaysCount, &row.Hours, &row.Last,
			&row.DailyTime, &row.Active); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *ActionLogRepo) UsageSummarySince(ctx context.Context, since time.Time) (model.UsageSummary, error) {
	var s model.UsageSummary
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(marks), 0)
		FROM (
			SELECT COUNT(*) AS marks
			FROM action_logs
			WHERE action = $1 AND ts >= $2
			GROUP BY user_id
		) per_user`,
		repository.ActionTefillinDone, since).Scan(&s.UsersMarkedDone, &s.TotalMarks)
	if err != nil {
		return model.UsageSummary{}, err
	}
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE active`).Scan(&s.TotalActiveUsers)
	if err != nil {
		return model.UsageSummary{}, err
	}
	return s, nil
}

func (r *ActionLogRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM action_logs WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
