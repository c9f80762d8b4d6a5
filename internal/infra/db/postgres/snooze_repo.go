package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"tefillin-reminder-bot/internal/domain/model"
	"tefillin-reminder-bot/internal/domain/ports/repository"
)

var _ repository.SnoozeJobRepository = (*SnoozeRepo)(nil)

type SnoozeRepo struct {
	pool *pgxpool.Pool
}

func NewSnoozeRepo(pool *pgxpool.Pool) *SnoozeRepo {
	return &SnoozeRepo{pool: pool}
}

// Upsert replaces any pending job for the user. A second snooze supersedes
// the first rather than stacking.
func (r *SnoozeRepo) Upsert(ctx context.Context, job model.SnoozeJob) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO snooze_jobs (user_id, fire_at) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET fire_at = EXCLUDED.fire_at, created_at = now()`,
		job.UserID, job.FireAt)
	return err
}

func (r *SnoozeRepo) Delete(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM snooze_jobs WHERE user_id = $1`, userID)
	return err
}

func (r *SnoozeRepo) ListPending(ctx context.Context) ([]model.SnoozeJob, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, fire_at FROM snooze_jobs ORDER BY fire_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SnoozeJob
	for rows.Next() {
		var j model.SnoozeJob
		if err := rows.Scan(&j.UserID, &j.FireAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
