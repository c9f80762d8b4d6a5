package repository

import (
	"context"
	"time"

	"tefillin-reminder-bot/internal/domain/model"
)

// UserRepository persists reminder users. Every mutation is a single-row,
// field-scoped update; the streak counter is always derived from the same
// row's prior state, never incremented concurrently.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	// Save upserts the full document. Used for registration only.
	Save(ctx context.Context, u *model.User) error

	FindActiveByDailyTime(ctx context.Context, hhmm string) ([]*model.User, error)
	FindActiveWithSunsetReminder(ctx context.Context) ([]*model.User, error)

	SetDailyTime(ctx context.Context, id int64, hhmm string) error
	SetSunsetReminder(ctx context.Context, id int64, minutes int) error
	SetSkippedDate(ctx context.Context, id int64, day string) error
	SetLastReminderDate(ctx context.Context, id int64, day string) error
	SetLastSunsetReminderDate(ctx context.Context, id int64, day string) error
	// RecordDone persists a completion: streak, last_done and last_done_time
	// in one update.
	RecordDone(ctx context.Context, id int64, streak int, day string, at time.Time) error

	Deactivate(ctx context.Context, id int64, reason string) error
	Reactivate(ctx context.Context, id int64) error

	CountActive(ctx context.Context) (int, error)
	CountDoneOn(ctx context.Context, day string) (int, error)
}
