package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"tefillin-reminder-bot/internal/domain"
	"tefillin-reminder-bot/internal/domain/model"
	"tefillin-reminder-bot/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, daily_time, timezone, active, streak, last_done, last_done_at,
	last_reminder_date, last_sunset_reminder_date, sunset_reminder, skipped_date,
	skip_shabbat, skip_holidays, created_at, updated_at, deactivated_at, deactivation_reason`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.DailyTime, &u.Timezone, &u.Active, &u.Streak, &u.LastDone,
		&u.LastDoneAt, &u.LastReminderDate, &u.LastSunsetReminderDate, &u.SunsetReminder,
		&u.SkippedDate, &u.SkipShabbat, &u.SkipHolidays, &u.CreatedAt, &u.UpdatedAt,
		&u.DeactivatedAt, &u.DeactivationReason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// Save inserts a new user. Registration is the only path that creates rows;
// a duplicate id maps to domain.ErrAlreadyExists so the caller can fall back
// to an update flow.
func (r *UserRepo) Save(ctx context.Context, u *model.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		u.ID, u.DailyTime, u.Timezone, u.Active, u.Streak, u.LastDone, u.LastDoneAt,
		u.LastReminderDate, u.LastSunsetReminderDate, u.SunsetReminder, u.SkippedDate,
		u.SkipShabbat, u.SkipHolidays, u.CreatedAt, u.UpdatedAt, u.DeactivatedAt,
		u.DeactivationReason)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *UserRepo) FindActiveByDailyTime(ctx context.Context, hhmm string) ([]*model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE active AND daily_time = $1`, hhmm)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *UserRepo) FindActiveWithSunsetReminder(ctx context.Context) ([]*model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE active AND sunset_reminder > 0`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]*model.User, error) {
	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepo) update(ctx context.Context, id int64, query string, args ...interface{}) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) SetDailyTime(ctx context.Context, id int64, hhmm string) error {
	return r.update(ctx, id,
		`UPDATE users SET daily_time = $2, updated_at = now() WHERE id = $1`, id, hhmm)
}

func (r *UserRepo) SetSunsetReminder(ctx context.Context, id int64, minutes int) error {
	return r.update(ctx, id,
		`UPDATE users SET sunset_reminder = $2, updated_at = now() WHERE id = $1`, id, minutes)
}

func (r *UserRepo) SetSkippedDate(ctx context.Context, id int64, day string) error {
	return r.update(ctx, id,
		`UPDATE users SET skipped_date = $2, updated_at = now() WHERE id = $1`, id, day)
}

func (r *UserRepo) SetLastReminderDate(ctx context.Context, id int64, day string) error {
	return r.update(ctx, id,
		`UPDATE users SET last_reminder_date = $2, updated_at = now() WHERE id = $1`, id, day)
}

func (r *UserRepo) SetLastSunsetReminderDate(ctx context.Context, id int64, day string) error {
	return r.update(ctx, id,
		`UPDATE users SET last_sunset_reminder_date = $2, updated_at = now() WHERE id = $1`, id, day)
}

func (r *UserRepo) RecordDone(ctx context.Context, id int64, streak int, day string, at time.Time) error {
	return r.update(ctx, id, `
		UPDATE users SET streak = $2, last_done = $3, last_done_at = $4, updated_at = now()
		WHERE id = $1`, id, streak, day, at)
}

func (r *UserRepo) Deactivate(ctx context.Context, id int64, reason string) error {
	return r.update(ctx, id, `
		UPDATE users SET active = FALSE, deactivated_at = now(), deactivation_reason = $2,
			updated_at = now()
		WHERE id = $1`, id, reason)
}

func (r *UserRepo) Reactivate(ctx context.Context, id int64) error {
	return r.update(ctx, id, `
		UPDATE users SET active = TRUE, deactivated_at = NULL, deactivation_reason = '',
			updated_at = now()
		WHERE id = $1`, id)
}

func (r *UserRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE active`).Scan(&n)
	return n, err
}

func (r *UserRepo) CountDoneOn(ctx context.Context, day string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE last_done = $1`, day).Scan(&n)
	return n, err
}
