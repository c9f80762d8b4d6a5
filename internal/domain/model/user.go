package model

import (
	"fmt"
	"regexp"
	"time"

	"tefillin-reminder-bot/internal/domain"
)

// DateLayout is the ISO calendar-date form used for every per-day stamp
// (last_done, dedup guards, skipped_date). Comparing these strings is
// comparing days.
const DateLayout = "2006-01-02"

// DateKey returns t's calendar date in ISO form.
func DateKey(t time.Time) string { return t.Format(DateLayout) }

var timeRe = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// ValidDailyTime reports whether s is a well-formed HH:MM wall-clock string.
func ValidDailyTime(s string) bool { return timeRe.MatchString(s) }

// User is the per-subscriber reminder document. ID is the Telegram user id
// and the unique key. Date fields hold ISO date strings ("" = never).
type User struct {
	ID                     int64
	DailyTime              string // HH:MM, local wall clock
	Timezone               string
	Active                 bool
	Streak                 int
	LastDone               string // last day the user confirmed laying tefillin
	LastDoneAt             time.Time
	LastReminderDate       string // dedup guard, daily channel
	LastSunsetReminderDate string // dedup guard, sunset channel
	SunsetReminder         int    // minutes before sunset; 0 = disabled
	SkippedDate            string // day the user explicitly skipped
	SkipShabbat            bool
	SkipHolidays           bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
	DeactivatedAt          *time.Time
	DeactivationReason     string
}

// NewUser builds a freshly registered, active user with a zero streak.
func NewUser(id int64, dailyTime, tz string) (*User, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if !ValidDailyTime(dailyTime) {
		return nil, fmt.Errorf("daily time %q: %w", dailyTime, domain.ErrInvalidArgument)
	}
	now := time.Now()
	return &User{
		ID:           id,
		DailyTime:    dailyTime,
		Timezone:     tz,
		Active:       true,
		SkipShabbat:  true,
		SkipHolidays: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) DoneOn(day string) bool           { return u.LastDone != "" && u.LastDone == day }
func (u *User) SkippedOn(day string) bool        { return u.SkippedDate != "" && u.SkippedDate == day }
func (u *User) RemindedOn(day string) bool       { return u.LastReminderDate == day }
func (u *User) SunsetRemindedOn(day string) bool { return u.LastSunsetReminderDate == day }

// NextStreak computes the streak value a completion on `today` yields.
// The streak continues only when the previous completion was exactly
// yesterday; any gap (or a first-ever completion) restarts at 1.
func (u *User) NextStreak(today time.Time) int {
	yesterday := DateKey(today.AddDate(0, 0, -1))
	if u.LastDone == yesterday {
		return u.Streak + 1
	}
	return 1
}

// MarkDone applies the completion transition in place. It is the only place
// the streak is mutated. Same-day repeats return ErrAlreadyDone untouched.
func (u *User) MarkDone(now time.Time) (int, error) {
	today := DateKey(now)
	if u.DoneOn(today) {
		return u.Streak, domain.ErrAlreadyDone
	}
	u.Streak = u.NextStreak(now)
	u.LastDone = today
	u.LastDoneAt = now
	return u.Streak, nil
}
