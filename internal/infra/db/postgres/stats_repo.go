package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"tefillin-reminder-bot/internal/domain/model"
	"tefillin-reminder-bot/internal/domain/ports/repository"
)

var _ repository.StatsRepository = (*StatsRepo)(nil)

type StatsRepo struct {
	pool *pgxpool.Pool
}

func NewStatsRepo(pool *pgxpool.Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

// UpsertDaily replaces the row for the day, so re-running the rollup after a
// restart is harmless.
func (r *StatsRepo) UpsertDaily(ctx context.Context, s model.DailyStats) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO daily_stats (date, type, total_users, users_done_today, reminders_sent,
			completion_rate, computed_at)
		VALUES ($1, 'daily', $2, $3, $4, $5, $6)
		ON CONFLICT (date, type) DO UPDATE SET
			total_users = EXCLUDED.total_users,
			users_done_today = EXCLUDED.users_done_today,
			reminders_sent = EXCLUDED.reminders_sent,
			completion_rate = EXCLUDED.completion_rate,
			computed_at = EXCLUDED.computed_at`,
		s.Date, s.TotalUsers, s.UsersDoneToday, s.RemindersSent, s.CompletionRate, s.ComputedAt)
	return err
}

func (r *StatsRepo) ListRecent(ctx context.Context, days int) ([]model.DailyStats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date, total_users, users_done_today, reminders_sent, completion_rate, computed_at
		FROM daily_stats
		WHERE type = 'daily'
		ORDER BY date DESC
		LIMIT $1`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DailyStats
	for rows.Next() {
		var s model.DailyStats
		if err := rows.Scan(&s.Date, &s.TotalUsers, &s.UsersDoneToday, &s.RemindersSent,
			&s.CompletionRate, &s.ComputedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
