package sched

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tefillin-reminder-bot/internal/domain/ports/repository"
	"tefillin-reminder-bot/internal/usecase"
)

// CalendarRefresher pre-warms the zmanim caches for the coming days.
type CalendarRefresher interface {
	Refresh(ctx context.Context, date time.Time)
}

const actionLogRetention = 30 * 24 * time.Hour

// RefreshWorker runs the nightly maintenance pass: refresh the calendar
// caches for the week ahead, roll yesterday up into daily_stats, and purge
// expired action log rows.
type RefreshWorker struct {
	at      string // HH:MM wall clock
	loc     *time.Location
	oracle  CalendarRefresher
	stats   usecase.StatsUseCase
	actions repository.ActionLogRepository
	log     *zerolog.Logger
}

func NewRefreshWorker(at string, loc *time.Location, oracle CalendarRefresher, stats usecase.StatsUseCase, actions repository.ActionLogRepository, logger *zerolog.Logger) *RefreshWorker {
	compLog := logger.With().Str("component", "RefreshWorker").Logger()
	return &RefreshWorker{
		at:      at,
		loc:     loc,
		oracle:  oracle,
		stats:   stats,
		actions: actions,
		log:     &compLog,
	}
}

func (w *RefreshWorker) Run(ctx context.Context) error {
	hour, minute, err := parseWallClock(w.at)
	if err != nil {
		return err
	}
	w.log.Info().Str("at", w.at).Msg("Starting refresh worker")

	for {
		now := time.Now().In(w.loc)
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, w.loc)
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping refresh worker")
			return ctx.Err()
		case <-time.After(time.Until(next)):
			w.maintain(ctx)
		}
	}
}

func (w *RefreshWorker) maintain(ctx context.Context) {
	now := time.Now().In(w.loc)
	w.oracle.Refresh(ctx, now)

	// The rollup covers the day that just ended.
	yesterday := now.AddDate(0, 0, -1)
	if row, err := w.stats.SaveDailyStats(ctx, yesterday); err != nil {
		w.log.Error().Err(err).Msg("daily stats rollup failed")
	} else {
		w.log.Info().Str("date", row.Date).Int("users_done", row.UsersDoneToday).Msg("daily stats saved")
	}

	purged, err := w.actions.PurgeOlderThan(ctx, now.Add(-actionLogRetention))
	if err != nil {
		w.log.Error().Err(err).Msg("action log purge failed")
	} else if purged > 0 {
		w.log.Info().Int("purged", purged).Msg("expired action log rows removed")
	}
}

func parseWallClock(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid wall clock %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid wall clock %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid wall clock %q", s)
	}
	return hour, minute, nil
}
