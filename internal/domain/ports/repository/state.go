package repository

import "context"

// Conversational input states for multi-step flows.
const (
	StateAwaitingCustomTime   = "awaiting_custom_time"
	StateAwaitingCustomSnooze = "awaiting_custom_snooze"
)

// StateRepository holds short-lived per-user conversation state (what free
// text input the bot is waiting for). Entries expire on their own.
type StateRepository interface {
	SetState(ctx context.Context, userID int64, state string) error
	// GetState returns "" when no state is pending.
	GetState(ctx context.Context, userID int64) (string, error)
	ClearState(ctx context.Context, userID int64) error
}
