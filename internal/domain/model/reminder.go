package model

import "time"

// ReminderKind tags the three delivery channels. Daily and Sunset carry a
// per-day dedup guard on the user document; Snooze is a one-shot and has none.
type ReminderKind int

const (
	ReminderDaily ReminderKind = iota
	ReminderSunset
	ReminderSnooze
)

func (k ReminderKind) String() string {
	switch k {
	case ReminderDaily:
		return "daily"
	case ReminderSunset:
		return "sunset"
	case ReminderSnooze:
		return "snooze"
	}
	return "unknown"
}

// SnoozeJob is a pending one-shot re-reminder. At most one exists per user;
// re-requesting a snooze replaces the previous job rather than stacking.
type SnoozeJob struct {
	UserID int64
	FireAt time.Time
}
