package repository

import (
	"context"

	"tefillin-reminder-bot/internal/domain/model"
)

// SnoozeJobRepository persists pending one-shot snoozes so they survive a
// process restart. One row per user; Upsert replaces any pending job.
type SnoozeJobRepository interface {
	Upsert(ctx context.Context, job model.SnoozeJob) error
	Delete(ctx context.Context, userID int64) error
	ListPending(ctx context.Context) ([]model.SnoozeJob, error)
}
