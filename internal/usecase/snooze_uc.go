package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tefillin-reminder-bot/internal/domain"
	"tefillin-reminder-bot/internal/domain/model"
	"tefillin-reminder-bot/internal/domain/ports/repository"
	"tefillin-reminder-bot/internal/infra/logging"
	"tefillin-reminder-bot/internal/infra/metrics"
)

// SnoozeTimers is the in-process timer registry the snooze runner provides.
// Arm replaces any pending timer for the same user.
type SnoozeTimers interface {
	Arm(job model.SnoozeJob)
	Disarm(userID int64)
}

// Compile-time check
var _ SnoozeUseCase = (*snoozeUC)(nil)

// SnoozeUseCase manages one-shot re-reminders. At most one snooze is pending
// per user; scheduling again replaces the previous one. Jobs are persisted
// so a restarted leader can pick them back up.
type SnoozeUseCase interface {
	// Schedule arms a snooze for now+minutes and returns the fire time.
	Schedule(ctx context.Context, userID int64, minutes int, now time.Time) (time.Time, error)
	// ScheduleUntilSunset arms a snooze at sunset minus the configured margin.
	// Returns ErrSunsetTooClose when that instant has already passed.
	ScheduleUntilSunset(ctx context.Context, userID int64, now time.Time) (fireAt, sunset time.Time, err error)
	// Cancel drops any pending snooze, e.g. after the user marked done.
	Cancel(ctx context.Context, userID int64) error
	// Fire delivers a due snooze and clears its persisted job. Called by the
	// runner when a timer expires or a missed same-day job is recovered.
	Fire(ctx context.Context, userID int64, now time.Time) error
}

type snoozeUC struct {
	jobs      repository.SnoozeJobRepository
	timers    SnoozeTimers
	reminders ReminderUseCase
	oracle    TimeOracle
	margin    time.Duration // before sunset, for ScheduleUntilSunset
	log       *zerolog.Logger
}

func NewSnoozeUseCase(jobs repository.SnoozeJobRepository, timers SnoozeTimers, reminders ReminderUseCase, oracle TimeOracle, marginMinutes int, logger *zerolog.Logger) *snoozeUC {
	return &snoozeUC{
		jobs:      jobs,
		timers:    timers,
		reminders: reminders,
		oracle:    oracle,
		margin:    time.Duration(marginMinutes) * time.Minute,
		log:       logger,
	}
}

func (s *snoozeUC) Schedule(ctx context.Context, userID int64, minutes int, now time.Time) (time.Time, error) {
	defer logging.TraceDuration(s.log, "SnoozeUC.Schedule")()

	if minutes <= 0 {
		return time.Time{}, fmt.Errorf("snooze minutes %d: %w", minutes, domain.ErrInvalidArgument)
	}
	fireAt := now.Add(time.Duration(minutes) * time.Minute)
	if err := s.arm(ctx, model.SnoozeJob{UserID: userID, FireAt: fireAt}); err != nil {
		return time.Time{}, err
	}
	return fireAt, nil
}

func (s *snoozeUC) ScheduleUntilSunset(ctx context.Context, userID int64, now time.Time) (time.Time, time.Time, error) {
	defer logging.TraceDuration(s.log, "SnoozeUC.ScheduleUntilSunset")()

	sunset := s.oracle.SunsetTime(ctx, now)
	fireAt := sunset.Add(-s.margin)
	if !fireAt.After(now) {
		return time.Time{}, sunset, domain.ErrSunsetTooClose
	}
	if err := s.arm(ctx, model.SnoozeJob{UserID: userID, FireAt: fireAt}); err != nil {
		return time.Time{}, sunset, err
	}
	return fireAt, sunset, nil
}

func (s *snoozeUC) arm(ctx context.Context, job model.SnoozeJob) error {
	if err := s.jobs.Upsert(ctx, job); err != nil {
		return err
	}
	s.timers.Arm(job)
	metrics.IncSnoozeScheduled()
	s.log.Info().Int64("user_id", job.UserID).Time("fire_at", job.FireAt).Msg("snooze scheduled")
	return nil
}

func (s *snoozeUC) Cancel(ctx context.Context, userID int64) error {
	s.timers.Disarm(userID)
	return s.jobs.Delete(ctx, userID)
}

func (s *snoozeUC) Fire(ctx context.Context, userID int64, now time.Time) error {
	if err := s.reminders.SendSnoozeReminder(ctx, userID, now); err != nil {
		return err
	}
	return s.jobs.Delete(ctx, userID)
}
