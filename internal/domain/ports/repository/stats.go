package repository

import (
	"context"

	"tefillin-reminder-bot/internal/domain/model"
)

// StatsRepository stores one rolled-up row per calendar day.
type StatsRepository interface {
	UpsertDaily(ctx context.Context, s model.DailyStats) error
	ListRecent(ctx context.Context, days int) ([]model.DailyStats, error)
}
