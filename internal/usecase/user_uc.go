package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tefillin-reminder-bot/internal/domain"
	"tefillin-reminder-bot/internal/domain/model"
	"tefillin-reminder-bot/internal/domain/ports/repository"
	"tefillin-reminder-bot/internal/infra/logging"
	"tefillin-reminder-bot/internal/infra/metrics"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes user lifecycle and settings operations used by the
// chat handlers.
type UserUseCase interface {
	Get(ctx context.Context, id int64) (*model.User, error)
	// RegisterWithTime creates the user on first time selection, or updates
	// the daily time for an existing user. The second return reports whether
	// a new user was created.
	RegisterWithTime(ctx context.Context, id int64, hhmm, tz string) (*model.User, bool, error)
	SetDailyTime(ctx context.Context, id int64, hhmm string) error
	SetSunsetReminder(ctx context.Context, id int64, minutes int) error
	// SkipToday stamps today as explicitly skipped and returns the day key.
	SkipToday(ctx context.Context, id int64, now time.Time) (string, error)
	Deactivate(ctx context.Context, id int64, reason string) error
	Reactivate(ctx context.Context, id int64) error
}

type userUC struct {
	users   repository.UserRepository
	actions repository.ActionLogRepository
	log     *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, actions repository.ActionLogRepository, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, actions: actions, log: logger}
}

func (u *userUC) Get(ctx context.Context, id int64) (*model.User, error) {
	return u.users.FindByID(ctx, id)
}

func (u *userUC) RegisterWithTime(ctx context.Context, id int64, hhmm, tz string) (*model.User, bool, error) {
	defer logging.TraceDuration(u.log, "UserUC.RegisterWithTime")()

	existing, err := u.users.FindByID(ctx, id)
	switch {
	case err == nil:
		// Returning user: picking a time updates the schedule and revives a
		// deactivated account.
		if err := u.users.SetDailyTime(ctx, id, hhmm); err != nil {
			return nil, false, err
		}
		if !existing.Active {
			if err := u.users.Reactivate(ctx, id); err != nil {
				return nil, false, err
			}
			existing.Active = true
			u.logAction(ctx, id, repository.ActionUserReactivated, "")
		}
		existing.DailyTime = hhmm
		u.logAction(ctx, id, repository.ActionUserUpdated, "daily_time="+hhmm)
		return existing, false, nil

	case errors.Is(err, domain.ErrNotFound):
		nu, err := model.NewUser(id, hhmm, tz)
		if err != nil {
			return nil, false, err
		}
		if err := u.users.Save(ctx, nu); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				// Lost a race against a concurrent registration; fall back to
				// the update path.
				if err := u.users.SetDailyTime(ctx, id, hhmm); err != nil {
					return nil, false, err
				}
				usr, err := u.users.FindByID(ctx, id)
				return usr, false, err
			}
			return nil, false, err
		}
		u.logAction(ctx, id, repository.ActionUserCreated, "daily_time="+hhmm)
		metrics.IncUsersRegistered()
		return nu, true, nil

	default:
		return nil, false, err
	}
}

func (u *userUC) SetDailyTime(ctx context.Context, id int64, hhmm string) error {
	if !model.ValidDailyTime(hhmm) {
		return fmt.Errorf("daily time %q: %w", hhmm, domain.ErrInvalidArgument)
	}
	if err := u.users.SetDailyTime(ctx, id, hhmm); err != nil {
		return err
	}
	u.logAction(ctx, id, repository.ActionUserUpdated, "daily_time="+hhmm)
	return nil
}

func (u *userUC) SetSunsetReminder(ctx context.Context, id int64, minutes int) error {
	if minutes < 0 || minutes > 180 {
		return fmt.Errorf("sunset offset %d: %w", minutes, domain.ErrInvalidArgument)
	}
	if err := u.users.SetSunsetReminder(ctx, id, minutes); err != nil {
		return err
	}
	u.logAction(ctx, id, repository.ActionUserUpdated, fmt.Sprintf("sunset_reminder=%d", minutes))
	return nil
}

func (u *userUC) SkipToday(ctx context.Context, id int64, now time.Time) (string, error) {
	day := model.DateKey(now)
	if err := u.users.SetSkippedDate(ctx, id, day); err != nil {
		return "", err
	}
	u.logAction(ctx, id, repository.ActionUserUpdated, "skipped_date="+day)
	return day, nil
}

func (u *userUC) Deactivate(ctx context.Context, id int64, reason string) error {
	if err := u.users.Deactivate(ctx, id, reason); err != nil {
		return err
	}
	u.logAction(ctx, id, repository.ActionUserDeactivated, reason)
	return nil
}

func (u *userUC) Reactivate(ctx context.Context, id int64) error {
	if err := u.users.Reactivate(ctx, id); err != nil {
		return err
	}
	u.logAction(ctx, id, repository.ActionUserReactivated, "")
	return nil
}

// logAction records to the audit log; failures never fail the user-visible
// operation.
func (u *userUC) logAction(ctx context.Context, id int64, action, details string) {
	if err := u.actions.Log(ctx, id, action, details); err != nil {
		u.log.Error().Err(err).Int64("user_id", id).Str("action", action).Msg("action log write failed")
	}
}
