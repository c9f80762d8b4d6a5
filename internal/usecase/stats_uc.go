package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tefillin-reminder-bot/internal/domain/model"
	"tefillin-reminder-bot/internal/domain/ports/repository"
	"tefillin-reminder-bot/internal/infra/logging"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase serves the per-user stats screen, the admin usage report and
// the nightly rollup.
type StatsUseCase interface {
	UserStats(ctx context.Context, userID int64, now time.Time) (model.UserStats, error)
	// Usage aggregates completions over the trailing `days` window (clamped
	// to 1..30) and returns the clamped window. The summary is the totals-only
	// fallback for when no per-user rows exist.
	Usage(ctx context.Context, days int, now time.Time) ([]model.UsageRow, model.UsageSummary, int, error)
	// SaveDailyStats rolls today up into one daily_stats row. Rerunning it
	// replaces the row for the day.
	SaveDailyStats(ctx context.Context, now time.Time) (model.DailyStats, error)
	// RecentDaily returns the latest rollup rows, newest first.
	RecentDaily(ctx context.Context, days int) ([]model.DailyStats, error)
}

type statsUC struct {
	users   repository.UserRepository
	actions repository.ActionLogRepository
	stats   repository.StatsRepository
	log     *zerolog.Logger
}

func NewStatsUseCase(users repository.UserRepository, actions repository.ActionLogRepository, stats repository.StatsRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{users: users, actions: actions, stats: stats, log: logger}
}

func (s *statsUC) UserStats(ctx context.Context, userID int64, now time.Time) (model.UserStats, error) {
	defer logging.TraceDuration(s.log, "StatsUC.UserStats")()

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.UserStats{}, err
	}

	total, err := s.actions.CountByUser(ctx, userID)
	if err != nil {
		return model.UserStats{}, err
	}
	done, err := s.actions.CountByUserAction(ctx, userID, repository.ActionTefillinDone)
	if err != nil {
		return model.UserStats{}, err
	}

	days := int(now.Sub(u.CreatedAt).Hours() / 24)
	if days < 0 {
		days = 0
	}
	rate := 0.0
	if days > 0 {
		rate = float64(u.Streak) / float64(days) * 100
		if rate > 100 {
			rate = 100
		}
	}

	return model.UserStats{
		Streak:          u.Streak,
		DaysSinceSignup: days,
		SuccessRate:     rate,
		TotalActions:    total,
		DoneCount:       done,
		LastDone:        u.LastDone,
		DailyTime:       u.DailyTime,
		SunsetReminder:  u.SunsetReminder,
	}, nil
}

func (s *statsUC) Usage(ctx context.Context, days int, now time.Time) ([]model.UsageRow, model.UsageSummary, int, error) {
	defer logging.TraceDuration(s.log, "StatsUC.Usage")()

	if days < 1 {
		days = 1
	}
	if days > 30 {
		days = 30
	}
	since := now.AddDate(0, 0, -days)

	rows, err := s.actions.UsageSince(ctx, since)
	if err != nil {
		return nil, model.UsageSummary{}, days, err
	}
	if len(rows) > 0 {
		return rows, model.UsageSummary{}, days, nil
	}

	summary, err := s.actions.UsageSummarySince(ctx, since)
	if err != nil {
		return nil, model.UsageSummary{}, days, err
	}
	return nil, summary, days, nil
}

func (s *statsUC) SaveDailyStats(ctx context.Context, now time.Time) (model.DailyStats, error) {
	defer logging.TraceDuration(s.log, "StatsUC.SaveDailyStats")()

	total, err := s.users.CountActive(ctx)
	if err != nil {
		return model.DailyStats{}, err
	}
	today := model.DateKey(now)
	done, err := s.users.CountDoneOn(ctx, today)
	if err != nil {
		return model.DailyStats{}, err
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	sent, err := s.actions.CountActionBetween(ctx, repository.ActionReminderSent, midnight, midnight.AddDate(0, 0, 1))
	if err != nil {
		return model.DailyStats{}, err
	}

	rate := 0.0
	if total > 0 {
		rate = float64(done) / float64(total) * 100
	}

	row := model.DailyStats{
		Date:           today,
		TotalUsers:     total,
		UsersDoneToday: done,
		RemindersSent:  sent,
		CompletionRate: rate,
		ComputedAt:     now,
	}
	if err := s.stats.UpsertDaily(ctx, row); err != nil {
		return model.DailyStats{}, err
	}
	return row, nil
}

func (s *statsUC) RecentDaily(ctx context.Context, days int) ([]model.DailyStats, error) {
	if days < 1 {
		days = 7
	}
	if days > 90 {
		days = 90
	}
	return s.stats.ListRecent(ctx, days)
}
