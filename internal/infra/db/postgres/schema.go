package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// EnsureSchema creates tables and indexes if missing. Index creation failure
// is fatal at startup; a process without the dedup-relevant indexes would
// scan the users table every poll cycle.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id                        BIGINT PRIMARY KEY,
			daily_time                TEXT NOT NULL,
			timezone                  TEXT NOT NULL DEFAULT 'Asia/Jerusalem',
			active                    BOOLEAN NOT NULL DEFAULT TRUE,
			streak                    INT NOT NULL DEFAULT 0,
			last_done                 TEXT NOT NULL DEFAULT '',
			last_done_at              TIMESTAMPTZ NOT NULL DEFAULT 'epoch',
			last_reminder_date        TEXT NOT NULL DEFAULT '',
			last_sunset_reminder_date TEXT NOT NULL DEFAULT '',
			sunset_reminder           INT NOT NULL DEFAULT 0,
			skipped_date              TEXT NOT NULL DEFAULT '',
			skip_shabbat              BOOLEAN NOT NULL DEFAULT TRUE,
			skip_holidays             BOOLEAN NOT NULL DEFAULT TRUE,
			created_at                TIMESTAMPTZ NOT NULL,
			updated_at                TIMESTAMPTZ NOT NULL,
			deactivated_at            TIMESTAMPTZ,
			deactivation_reason       TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_users_daily_time ON users (daily_time);`,
		`CREATE INDEX IF NOT EXISTS idx_users_active ON users (active);`,
		`CREATE INDEX IF NOT EXISTS idx_users_active_daily_time ON users (active, daily_time);`,

		`CREATE TABLE IF NOT EXISTS action_logs (
			id      BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			action  TEXT NOT NULL,
			details TEXT NOT NULL DEFAULT '',
			ts      TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_action_logs_ts ON action_logs (ts DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_action_logs_user ON action_logs (user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_action_logs_action ON action_logs (action);`,

		`CREATE TABLE IF NOT EXISTS daily_stats (
			date             TEXT NOT NULL,
			type             TEXT NOT NULL DEFAULT 'daily',
			total_users      INT NOT NULL DEFAULT 0,
			users_done_today INT NOT NULL DEFAULT 0,
			reminders_sent   INT NOT NULL DEFAULT 0,
			completion_rate  DOUBLE PRECISION NOT NULL DEFAULT 0,
			computed_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (date, type)
		);`,

		`CREATE TABLE IF NOT EXISTS snooze_jobs (
			user_id    BIGINT PRIMARY KEY,
			fire_at    TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	}
	for _, q := range stmts {
		if _, err := pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
