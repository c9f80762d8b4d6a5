package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotLeader is returned when a scheduling operation is attempted by a
	// process that does not hold the leader lease.
	ErrNotLeader = errors.New("not the leader instance")

	// ErrAlreadyDone marks an idempotent same-day completion.
	ErrAlreadyDone = errors.New("already marked done today")

	// ErrSunsetTooClose rejects a snooze-until-sunset request whose fire time
	// is already in the past.
	ErrSunsetTooClose = errors.New("too close to sunset for a sunset snooze")
)
