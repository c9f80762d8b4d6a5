package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"tefillin-reminder-bot/internal/domain/model"
	"tefillin-reminder-bot/internal/domain/ports/adapter"
	"tefillin-reminder-bot/internal/domain/ports/repository"
	"tefillin-reminder-bot/internal/infra/logging"
	"tefillin-reminder-bot/internal/infra/metrics"
	"tefillin-reminder-bot/internal/infra/texts"
)

// sunsetWindow is the tolerance around a user's pre-sunset target. Sunset
// targets land on arbitrary minutes, so unlike the daily channel the match
// cannot be exact.
const sunsetWindow = 2 * time.Minute

// TimeOracle is the calendar knowledge the scheduler needs. Both operations
// are total; the zmanim service degrades internally instead of erroring.
type TimeOracle interface {
	SunsetTime(ctx context.Context, date time.Time) time.Time
	IsHolidayOrShabbat(ctx context.Context, date time.Time) bool
}

// Compile-time check
var _ ReminderUseCase = (*reminderUC)(nil)

// ReminderUseCase evaluates and delivers the three reminder channels. The
// Run methods are driven once per poll tick by the scheduling worker and
// only ever run on the leader instance.
type ReminderUseCase interface {
	RunDailyCheck(ctx context.Context, now time.Time) error
	RunSunsetCheck(ctx context.Context, now time.Time) error
	// SendSnoozeReminder delivers a fired snooze unless the user completed,
	// skipped, or was deactivated in the meantime.
	SendSnoozeReminder(ctx context.Context, userID int64, now time.Time) error
}

type reminderUC struct {
	users   repository.UserRepository
	actions repository.ActionLogRepository
	msgr    adapter.Messenger
	oracle  TimeOracle
	log     *zerolog.Logger
}

func NewReminderUseCase(users repository.UserRepository, actions repository.ActionLogRepository, msgr adapter.Messenger, oracle TimeOracle, logger *zerolog.Logger) *reminderUC {
	return &reminderUC{users: users, actions: actions, msgr: msgr, oracle: oracle, log: logger}
}

// RunDailyCheck fires the daily channel for every user whose chosen time
// matches the current wall-clock minute exactly. A poll cycle that lands
// late skips the minute rather than sending at the wrong time; the next
// calendar day retries.
func (r *reminderUC) RunDailyCheck(ctx context.Context, now time.Time) error {
	defer logging.TraceDuration(r.log, "ReminderUC.RunDailyCheck")()

	if r.oracle.IsHolidayOrShabbat(ctx, now) {
		r.log.Debug().Str("date", model.DateKey(now)).Msg("holiday or shabbat, daily check suppressed")
		return nil
	}

	users, err := r.users.FindActiveByDailyTime(ctx, now.Format("15:04"))
	if err != nil {
		return err
	}

	today := model.DateKey(now)
	for _, u := range users {
		if u.RemindedOn(today) || u.DoneOn(today) || u.SkippedOn(today) {
			continue
		}
		r.deliver(ctx, u.ID, model.ReminderDaily, texts.DailyReminder, texts.DailyReminderKeyboard())
		// The guard is stamped after the attempt no matter how it went; a
		// failed send must not retry every minute for the rest of the day.
		if err := r.users.SetLastReminderDate(ctx, u.ID, today); err != nil {
			r.log.Error().Err(err).Int64("user_id", u.ID).Msg("stamping daily reminder date failed")
		}
	}
	return nil
}

// RunSunsetCheck fires the pre-sunset channel for users whose offset target
// falls within the tolerance window around now.
func (r *reminderUC) RunSunsetCheck(ctx context.Context, now time.Time) error {
	defer logging.TraceDuration(r.log, "ReminderUC.RunSunsetCheck")()

	if r.oracle.IsHolidayOrShabbat(ctx, now) {
		return nil
	}

	sunset := r.oracle.SunsetTime(ctx, now)
	users, err := r.users.FindActiveWithSunsetReminder(ctx)
	if err != nil {
		return err
	}

	today := model.DateKey(now)
	for _, u := range users {
		if u.SunsetReminder <= 0 {
			continue
		}
		target := sunset.Add(-time.Duration(u.SunsetReminder) * time.Minute)
		diff := now.Sub(target)
		if diff < 0 {
			diff = -diff
		}
		if diff > sunsetWindow {
			continue
		}
		if u.SunsetRemindedOn(today) || u.DoneOn(today) || u.SkippedOn(today) {
			continue
		}
		r.deliver(ctx, u.ID, model.ReminderSunset,
			texts.SunsetReminderText(sunset.Format("15:04")), texts.SunsetReminderKeyboard())
		if err := r.users.SetLastSunsetReminderDate(ctx, u.ID, today); err != nil {
			r.log.Error().Err(err).Int64("user_id", u.ID).Msg("stamping sunset reminder date failed")
		}
	}
	return nil
}

func (r *reminderUC) SendSnoozeReminder(ctx context.Context, userID int64, now time.Time) error {
	u, err := r.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	today := model.DateKey(now)
	if !u.Active || u.DoneOn(today) || u.SkippedOn(today) {
		return nil
	}
	r.deliver(ctx, userID, model.ReminderSnooze, texts.SnoozeReminder, texts.SnoozeReminderKeyboard())
	return nil
}

// deliver sends one reminder. Per-user failures are logged and absorbed so
// one bad recipient never aborts a whole cycle; a blocked recipient is
// deactivated instead of retried tomorrow.
func (r *reminderUC) deliver(ctx context.Context, userID int64, kind model.ReminderKind, text string, rows [][]adapter.Button) {
	err := r.msgr.SendKeyboard(ctx, userID, text, rows)
	if err != nil {
		metrics.IncReminderFailure(kind.String())
		if errors.Is(err, adapter.ErrBlocked) {
			if derr := r.users.Deactivate(ctx, userID, "blocked"); derr != nil {
				r.log.Error().Err(derr).Int64("user_id", userID).Msg("deactivating blocked user failed")
			} else {
				metrics.IncUserDeactivated()
				r.log.Info().Int64("user_id", userID).Msg("user blocked the bot, deactivated")
			}
			return
		}
		r.log.Error().Err(err).Int64("user_id", userID).Str("kind", kind.String()).Msg("reminder send failed")
		return
	}

	metrics.IncReminderSent(kind.String())
	if err := r.actions.Log(ctx, userID, repository.ActionReminderSent, kind.String()); err != nil {
		r.log.Error().Err(err).Int64("user_id", userID).Msg("action log write failed")
	}
	r.log.Info().Int64("user_id", userID).Str("kind", kind.String()).Msg("reminder sent")
}
