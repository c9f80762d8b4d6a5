package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tefillin-reminder-bot/internal/usecase"
)

// ReminderWorker drives both reminder channels on one poll ticker. It only
// ever runs inside a leadership-scoped context; losing the lease cancels the
// context and stops the loop.
type ReminderWorker struct {
	interval  time.Duration
	loc       *time.Location
	reminders usecase.ReminderUseCase
	log       *zerolog.Logger
}

func NewReminderWorker(interval time.Duration, loc *time.Location, reminders usecase.ReminderUseCase, logger *zerolog.Logger) *ReminderWorker {
	compLog := logger.With().Str("component", "ReminderWorker").Logger()
	return &ReminderWorker{
		interval:  interval,
		loc:       loc,
		reminders: reminders,
		log:       &compLog,
	}
}

func (w *ReminderWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting reminder worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping reminder worker")
			return ctx.Err()
		case <-ticker.C:
			w.cycle(ctx)
		}
	}
}

// cycle runs one evaluation pass. It is bounded to the poll interval so a
// hung external call cannot pile cycles on top of each other.
func (w *ReminderWorker) cycle(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()

	now := time.Now().In(w.loc)
	if err := w.reminders.RunDailyCheck(cctx, now); err != nil {
		w.log.Error().Err(err).Msg("daily check failed")
	}
	if err := w.reminders.RunSunsetCheck(cctx, now); err != nil {
		w.log.Error().Err(err).Msg("sunset check failed")
	}
}
