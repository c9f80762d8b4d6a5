package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tefillin-reminder-bot/internal/domain/ports/repository"
	"tefillin-reminder-bot/internal/infra/metrics"
)

// LeaseKeeper campaigns for the leader lease and runs the given work only
// while holding it. The work function receives a context that is cancelled
// the moment leadership is lost; after a loss the keeper goes back to
// campaigning, so a deposed instance becomes a standby rather than exiting.
type LeaseKeeper struct {
	lease    repository.LeaderLease
	ttl      time.Duration
	disabled bool // recovery toggle: run work unguarded
	log      *zerolog.Logger
}

func NewLeaseKeeper(lease repository.LeaderLease, ttl time.Duration, disabled bool, logger *zerolog.Logger) *LeaseKeeper {
	compLog := logger.With().Str("component", "LeaseKeeper").Logger()
	return &LeaseKeeper{lease: lease, ttl: ttl, disabled: disabled, log: &compLog}
}

// Run blocks until ctx is done. work is started on every acquisition and
// must return promptly once its context is cancelled.
func (k *LeaseKeeper) Run(ctx context.Context, work func(ctx context.Context)) error {
	if k.disabled {
		k.log.Warn().Msg("leader lease disabled, running unguarded")
		work(ctx)
		return ctx.Err()
	}

	for {
		if err := k.campaign(ctx); err != nil {
			return err
		}
		k.lead(ctx, work)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// campaign retries acquisition every TTL until it wins or ctx ends.
func (k *LeaseKeeper) campaign(ctx context.Context) error {
	for {
		ok, err := k.lease.Acquire(ctx, k.ttl)
		if err != nil {
			k.log.Warn().Err(err).Msg("lease acquire failed")
		} else if ok {
			k.log.Info().Str("owner", k.lease.OwnerID()).Msg("leader lease acquired")
			metrics.SetLeader(true)
			metrics.IncLeaseTransition("acquired")
			return nil
		} else {
			k.log.Debug().Msg("another instance holds the lease, standing by")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(k.ttl):
		}
	}
}

// lead runs work while refreshing at half the TTL. Any refresh outcome that
// cannot confirm ownership counts as a loss; with a single writer at stake
// the safe reading of an error is "assume deposed".
func (k *LeaseKeeper) lead(ctx context.Context, work func(ctx context.Context)) {
	leadCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		work(leadCtx)
	}()

	ticker := time.NewTicker(k.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cancel()
			<-done
			// Shutdown path: hand the lease back so a standby can take over
			// immediately instead of waiting out the TTL.
			releaseCtx, releaseCancel := context.WithTimeout(context.Background(), 5*time.Second)
			k.lease.Release(releaseCtx)
			releaseCancel()
			metrics.SetLeader(false)
			metrics.IncLeaseTransition("released")
			return
		case <-ticker.C:
			ok, err := k.lease.Refresh(ctx, k.ttl)
			if err == nil && ok {
				continue
			}
			if err != nil {
				k.log.Warn().Err(err).Msg("lease refresh failed, assuming lost")
			} else {
				k.log.Warn().Msg("leader lease lost")
			}
			cancel()
			<-done
			metrics.SetLeader(false)
			metrics.IncLeaseTransition("lost")
			return
		}
	}
}
