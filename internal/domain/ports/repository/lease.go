package repository

import (
	"context"
	"time"
)

// LeaderLease is the single-writer election primitive. At most one process
// holds an unexpired lease at a time; only the holder may poll Telegram and
// fire reminders.
type LeaderLease interface {
	// Acquire attempts an atomic claim. False (without error) means another
	// unexpired lease exists. Any error is treated as failure to acquire.
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)
	// Refresh extends the lease only while this owner still holds it. A false
	// return means ownership is lost and the caller must stop scheduling.
	Refresh(ctx context.Context, ttl time.Duration) (bool, error)
	// Release drops the lease if still owned. Best effort.
	Release(ctx context.Context)
	OwnerID() string
}
