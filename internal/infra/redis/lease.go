package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tefillin-reminder-bot/internal/domain/ports/repository"
)

const leaseKey = "tefillin:leader"

var _ repository.LeaderLease = (*Lease)(nil)

// Lease is the Redis-backed leader lease. SET NX with a TTL gives the atomic
// insert-if-absent the lease needs; the key expiring on its own covers a
// crashed holder. Refresh and Release only act while the stored owner token
// still matches, so a lease reacquired by another instance cannot be touched.
type Lease struct {
	cli   *redis.Client
	owner string
	log   *zerolog.Logger
}

func NewLease(c *redClient, logger *zerolog.Logger) *Lease {
	compLog := logger.With().Str("component", "LeaderLease").Logger()
	return &Lease{cli: c.cli, owner: uuid.NewString(), log: &compLog}
}

func (l *Lease) OwnerID() string { return l.owner }

func (l *Lease) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := l.cli.SetNX(ctx, leaseKey, l.owner, ttl).Result()
	if err != nil {
		// Any error counts as failure to acquire.
		return false, err
	}
	return ok, nil
}

var luaRefresh = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
	return 0
end`)

// Refresh extends the lease while still owned. False means ownership is
// lost (expiry, manual intervention, or another instance) and the caller
// must stop all scheduling activity.
func (l *Lease) Refresh(ctx context.Context, ttl time.Duration) (bool, error) {
	res, err := luaRefresh.Run(ctx, l.cli, []string{leaseKey}, l.owner, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

var luaRelease = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

// Release drops the lease if still owned. Best effort: the process is
// shutting down, so failures are only logged.
func (l *Lease) Release(ctx context.Context) {
	if _, err := luaRelease.Run(ctx, l.cli, []string{leaseKey}, l.owner).Result(); err != nil {
		l.log.Warn().Err(err).Msg("lease release failed")
	}
}
