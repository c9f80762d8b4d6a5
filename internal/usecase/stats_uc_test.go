package usecase

import (
	"context"
	"testing"
	"time"

	"tefillin-reminder-bot/internal/domain/ports/repository"
)

func TestStatsUseCase_Usage(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

	t.Run("clamps the window to 1..30 days", func(t *testing.T) {
		uc := NewStatsUseCase(newMemUserRepo(), newMemActionLog(), newMemStatsRepo(), newTestLogger())

		_, _, days, err := uc.Usage(ctx, 90, now)
		if err != nil {
			t.Fatalf("Usage failed: %v", err)
		}
		if days != 30 {
			t.Errorf("expected clamp to 30, got %d", days)
		}
		_, _, days, _ = uc.Usage(ctx, 0, now)
		if days != 1 {
			t.Errorf("expected clamp to 1, got %d", days)
		}
	})

	t.Run("falls back to the summary when no completions exist", func(t *testing.T) {
		// Arrange
		users := newMemUserRepo()
		users.put(testUser(1, "07:30"))
		uc := NewStatsUseCase(users, newMemActionLog(), newMemStatsRepo(), newTestLogger())

		// Act
		rows, summary, _, err := uc.Usage(ctx, 7, now)

		// Assert
		if err != nil {
			t.Fatalf("Usage failed: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("expected no rows, got %d", len(rows))
		}
		if summary.TotalMarks != 0 || summary.UsersMarkedDone != 0 {
			t.Errorf("expected empty summary, got %+v", summary)
		}
	})

	t.Run("returns per-user rows when completions exist", func(t *testing.T) {
		// Arrange
		actions := newMemActionLog()
		actions.nowFunc = func() time.Time { return now.Add(-24 * time.Hour) }
		_ = actions.Log(ctx, 1, repository.ActionTefillinDone, "09:00")
		actions.nowFunc = func() time.Time { return now.Add(-2 * time.Hour) }
		_ = actions.Log(ctx, 1, repository.ActionTefillinDone, "10:00")
		uc := NewStatsUseCase(newMemUserRepo(), actions, newMemStatsRepo(), newTestLogger())

		// Act
		rows, _, _, err := uc.Usage(ctx, 7, now)

		// Assert
		if err != nil {
			t.Fatalf("Usage failed: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}
		if rows[0].DaysCount != 2 {
			t.Errorf("expected 2 distinct days, got %d", rows[0].DaysCount)
		}
	})
}

func TestStatsUseCase_SaveDailyStats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 20, 23, 59, 0, 0, time.UTC)

	// Arrange: two active users, one of them done today.
	users := newMemUserRepo()
	a := testUser(1, "07:30")
	a.LastDone = "2025-08-20"
	users.put(a)
	users.put(testUser(2, "08:00"))
	actions := newMemActionLog()
	actions.nowFunc = func() time.Time { return now.Add(-10 * time.Hour) }
	_ = actions.Log(ctx, 1, repository.ActionReminderSent, "daily")
	_ = actions.Log(ctx, 2, repository.ActionReminderSent, "daily")
	stats := newMemStatsRepo()
	uc := NewStatsUseCase(users, actions, stats, newTestLogger())

	// Act
	row, err := uc.SaveDailyStats(ctx, now)

	// Assert
	if err != nil {
		t.Fatalf("SaveDailyStats failed: %v", err)
	}
	if row.TotalUsers != 2 || row.UsersDoneToday != 1 || row.RemindersSent != 2 {
		t.Errorf("unexpected rollup: %+v", row)
	}
	if row.CompletionRate != 50 {
		t.Errorf("expected 50%% completion, got %v", row.CompletionRate)
	}
	recent, _ := stats.ListRecent(ctx, 7)
	if len(recent) != 1 || recent[0].Date != "2025-08-20" {
		t.Errorf("expected one stored row for 2025-08-20, got %+v", recent)
	}
}

func TestStatsUseCase_UserStats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 21, 12, 0, 0, 0, time.UTC)

	// Arrange
	users := newMemUserRepo()
	u := testUser(1, "07:30")
	u.Streak = 5
	u.LastDone = "2025-08-21"
	u.SunsetReminder = 45
	users.put(u)
	actions := newMemActionLog()
	for i := 0; i < 5; i++ {
		_ = actions.Log(ctx, 1, repository.ActionTefillinDone, "09:00")
	}
	_ = actions.Log(ctx, 1, repository.ActionUserUpdated, "daily_time=07:30")
	uc := NewStatsUseCase(users, actions, newMemStatsRepo(), newTestLogger())

	// Act
	got, err := uc.UserStats(ctx, 1, now)

	// Assert
	if err != nil {
		t.Fatalf("UserStats failed: %v", err)
	}
	if got.Streak != 5 || got.DoneCount != 5 || got.TotalActions != 6 {
		t.Errorf("unexpected stats: %+v", got)
	}
	if got.DaysSinceSignup != 20 {
		t.Errorf("expected 20 days since signup, got %d", got.DaysSinceSignup)
	}
	if got.SuccessRate != 25 {
		t.Errorf("expected 25%% success rate, got %v", got.SuccessRate)
	}
}
