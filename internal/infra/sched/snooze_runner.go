package sched

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tefillin-reminder-bot/internal/domain/model"
	"tefillin-reminder-bot/internal/domain/ports/repository"
	"tefillin-reminder-bot/internal/usecase"
)

// Compile-time check
var _ usecase.SnoozeTimers = (*SnoozeRunner)(nil)

// FireFunc delivers one due snooze. Wired after construction because the
// snooze use case and the runner reference each other.
type FireFunc func(ctx context.Context, userID int64, now time.Time) error

// SnoozeRunner keeps the in-process timer per pending snooze. Timers only
// exist on the leader; on gaining leadership Reconcile rebuilds them from
// the persisted jobs.
type SnoozeRunner struct {
	mu     sync.Mutex
	timers map[int64]*time.Timer
	ctx    context.Context // leadership-scoped, set by Start

	jobs repository.SnoozeJobRepository
	fire FireFunc
	loc  *time.Location
	log  *zerolog.Logger
}

func NewSnoozeRunner(jobs repository.SnoozeJobRepository, loc *time.Location, logger *zerolog.Logger) *SnoozeRunner {
	compLog := logger.With().Str("component", "SnoozeRunner").Logger()
	return &SnoozeRunner{
		timers: make(map[int64]*time.Timer),
		jobs:   jobs,
		loc:    loc,
		log:    &compLog,
	}
}

func (r *SnoozeRunner) SetFireFunc(fn FireFunc) { r.fire = fn }

// Start binds the runner to a leadership context and reconciles persisted
// jobs. When the context ends all timers are stopped.
func (r *SnoozeRunner) Start(ctx context.Context) {
	r.mu.Lock()
	r.ctx = ctx
	r.mu.Unlock()

	r.reconcile(ctx)

	go func() {
		<-ctx.Done()
		r.stopAll()
	}()
}

// reconcile rearms every persisted job: future jobs get a timer, jobs missed
// while no leader was running fire immediately if they are still same-day,
// and stale jobs from earlier days are dropped.
func (r *SnoozeRunner) reconcile(ctx context.Context) {
	pending, err := r.jobs.ListPending(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("listing pending snoozes failed")
		return
	}

	now := time.Now().In(r.loc)
	today := model.DateKey(now)
	for _, job := range pending {
		switch {
		case job.FireAt.After(now):
			r.Arm(job)
		case model.DateKey(job.FireAt.In(r.loc)) == today:
			r.log.Info().Int64("user_id", job.UserID).Time("fire_at", job.FireAt).Msg("firing snooze missed while down")
			r.fireNow(job.UserID)
		default:
			// A reminder about yesterday helps no one.
			if err := r.jobs.Delete(ctx, job.UserID); err != nil {
				r.log.Error().Err(err).Int64("user_id", job.UserID).Msg("dropping stale snooze failed")
			}
		}
	}
	if len(pending) > 0 {
		r.log.Info().Int("count", len(pending)).Msg("snooze jobs reconciled")
	}
}

// Arm schedules the job, replacing any pending timer for the same user.
func (r *SnoozeRunner) Arm(job model.SnoozeJob) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[job.UserID]; ok {
		t.Stop()
	}
	delay := time.Until(job.FireAt)
	if delay < 0 {
		delay = 0
	}
	r.timers[job.UserID] = time.AfterFunc(delay, func() {
		r.mu.Lock()
		delete(r.timers, job.UserID)
		r.mu.Unlock()
		r.fireNow(job.UserID)
	})
}

func (r *SnoozeRunner) Disarm(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[userID]; ok {
		t.Stop()
		delete(r.timers, userID)
	}
}

func (r *SnoozeRunner) fireNow(userID int64) {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()
	if ctx == nil || ctx.Err() != nil || r.fire == nil {
		return
	}
	if err := r.fire(ctx, userID, time.Now().In(r.loc)); err != nil {
		r.log.Error().Err(err).Int64("user_id", userID).Msg("snooze delivery failed")
	}
}

func (r *SnoozeRunner) stopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
}

// Pending reports how many timers are currently armed.
func (r *SnoozeRunner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}
