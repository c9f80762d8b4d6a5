package model

import "time"

// UserStats is the per-user view behind the /stats screen.
type UserStats struct {
	Streak          int
	DaysSinceSignup int
	SuccessRate     float64 // streak over days since signup, capped at 100
	TotalActions    int
	DoneCount       int
	LastDone        string
	DailyTime       string
	SunsetReminder  int
}

// UsageRow aggregates one user's completions over a trailing window.
type UsageRow struct {
	UserID    int64
	DaysCount int      // distinct days with a completion
	Hours     []string // distinct HH:MM completion times, sorted
	Last      time.Time
	DailyTime string
	Active    bool
}

// UsageSummary is the totals-only fallback when no per-user rows exist.
type UsageSummary struct {
	TotalActiveUsers int
	UsersMarkedDone  int
	TotalMarks       int
}

// DailyStats is one rolled-up row per calendar day.
type DailyStats struct {
	Date           string // ISO date
	TotalUsers     int
	UsersDoneToday int
	RemindersSent  int
	CompletionRate float64
	ComputedAt     time.Time
}
