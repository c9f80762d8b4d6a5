package repository

import (
	"context"
	"time"

	"tefillin-reminder-bot/internal/domain/model"
)

// Well-known action names written to the append-only log.
const (
	ActionUserCreated     = "user_created"
	ActionUserUpdated     = "user_updated"
	ActionUserDeactivated = "user_deactivated"
	ActionUserReactivated = "user_reactivated"
	ActionTefillinDone    = "tefillin_done"
	ActionReminderSent    = "reminder_sent"
)

// ActionLogRepository is the append-only user action log. Rows expire after
// 30 days; expiry is enforced by the daily maintenance job via PurgeOlderThan.
type ActionLogRepository interface {
	Log(ctx context.Context, userID int64, action, details string) error

	CountByUser(ctx context.Context, userID int64) (int, error)
	CountByUserAction(ctx context.Context, userID int64, action string) (int, error)
	// CountActionBetween counts rows for one action inside [from, to).
	CountActionBetween(ctx context.Context, action string, from, to time.Time) (int, error)

	// UsageSince aggregates tefillin_done completions per user since the given
	// instant: distinct days, distinct completion times, most recent mark.
	UsageSince(ctx context.Context, since time.Time) ([]model.UsageRow, error)
	UsageSummarySince(ctx context.Context, since time.Time) (model.UsageSummary, error)

	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
