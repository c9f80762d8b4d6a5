package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"tefillin-reminder-bot/internal/domain"
	"tefillin-reminder-bot/internal/domain/ports/repository"
	"tefillin-reminder-bot/internal/infra/logging"
	"tefillin-reminder-bot/internal/infra/metrics"
)

// Compile-time check
var _ CompletionUseCase = (*completionUC)(nil)

// CompletionUseCase handles the "tefillin done" confirmation.
type CompletionUseCase interface {
	// MarkDone records today's completion and returns the resulting streak.
	// A same-day repeat returns the current streak with ErrAlreadyDone.
	MarkDone(ctx context.Context, userID int64, now time.Time) (int, error)
}

type completionUC struct {
	users   repository.UserRepository
	actions repository.ActionLogRepository
	log     *zerolog.Logger
}

func NewCompletionUseCase(users repository.UserRepository, actions repository.ActionLogRepository, logger *zerolog.Logger) *completionUC {
	return &completionUC{users: users, actions: actions, log: logger}
}

func (c *completionUC) MarkDone(ctx context.Context, userID int64, now time.Time) (int, error) {
	defer logging.TraceDuration(c.log, "CompletionUC.MarkDone")()

	u, err := c.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	streak, err := u.MarkDone(now)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyDone) {
			return streak, err
		}
		return 0, err
	}

	if err := c.users.RecordDone(ctx, userID, streak, u.LastDone, now); err != nil {
		return 0, err
	}
	if err := c.actions.Log(ctx, userID, repository.ActionTefillinDone, now.Format("15:04")); err != nil {
		c.log.Error().Err(err).Int64("user_id", userID).Msg("action log write failed")
	}
	metrics.IncCompletion()
	return streak, nil
}
