package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"tefillin-reminder-bot/internal/domain"
)

func TestSnoozeUseCase_Schedule(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)

	t.Run("arms a timer and persists the job", func(t *testing.T) {
		// Arrange
		jobs := newMemSnoozeRepo()
		timers := &fakeTimers{}
		uc := NewSnoozeUseCase(jobs, timers, nil, &fakeOracle{}, 30, newTestLogger())

		// Act
		fireAt, err := uc.Schedule(ctx, 1, 45, now)

		// Assert
		if err != nil {
			t.Fatalf("Schedule failed: %v", err)
		}
		want := now.Add(45 * time.Minute)
		if !fireAt.Equal(want) {
			t.Errorf("expected fire at %v, got %v", want, fireAt)
		}
		pending, _ := jobs.ListPending(ctx)
		if len(pending) != 1 || !pending[0].FireAt.Equal(want) {
			t.Errorf("unexpected persisted jobs: %+v", pending)
		}
		if len(timers.armed) != 1 {
			t.Errorf("expected 1 armed timer, got %d", len(timers.armed))
		}
	})

	t.Run("a second snooze replaces the first", func(t *testing.T) {
		// Arrange
		jobs := newMemSnoozeRepo()
		timers := &fakeTimers{}
		uc := NewSnoozeUseCase(jobs, timers, nil, &fakeOracle{}, 30, newTestLogger())

		// Act
		if _, err := uc.Schedule(ctx, 1, 60, now); err != nil {
			t.Fatalf("first Schedule failed: %v", err)
		}
		if _, err := uc.Schedule(ctx, 1, 15, now.Add(time.Minute)); err != nil {
			t.Fatalf("second Schedule failed: %v", err)
		}

		// Assert
		pending, _ := jobs.ListPending(ctx)
		if len(pending) != 1 {
			t.Fatalf("expected 1 pending job, got %d", len(pending))
		}
		want := now.Add(time.Minute).Add(15 * time.Minute)
		if !pending[0].FireAt.Equal(want) {
			t.Errorf("expected replacement fire time %v, got %v", want, pending[0].FireAt)
		}
	})

	t.Run("rejects non-positive minutes", func(t *testing.T) {
		uc := NewSnoozeUseCase(newMemSnoozeRepo(), &fakeTimers{}, nil, &fakeOracle{}, 30, newTestLogger())
		if _, err := uc.Schedule(ctx, 1, 0, now); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestSnoozeUseCase_ScheduleUntilSunset(t *testing.T) {
	ctx := context.Background()
	sunset := time.Date(2025, 8, 20, 19, 0, 0, 0, time.UTC)

	t.Run("fires at sunset minus the margin", func(t *testing.T) {
		// Arrange
		jobs := newMemSnoozeRepo()
		uc := NewSnoozeUseCase(jobs, &fakeTimers{}, nil, &fakeOracle{sunset: sunset}, 30, newTestLogger())
		now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

		// Act
		fireAt, gotSunset, err := uc.ScheduleUntilSunset(ctx, 1, now)

		// Assert
		if err != nil {
			t.Fatalf("ScheduleUntilSunset failed: %v", err)
		}
		if !fireAt.Equal(sunset.Add(-30 * time.Minute)) {
			t.Errorf("expected fire at 18:30, got %v", fireAt)
		}
		if !gotSunset.Equal(sunset) {
			t.Errorf("expected sunset %v, got %v", sunset, gotSunset)
		}
	})

	t.Run("rejects when the target already passed", func(t *testing.T) {
		// Arrange
		jobs := newMemSnoozeRepo()
		uc := NewSnoozeUseCase(jobs, &fakeTimers{}, nil, &fakeOracle{sunset: sunset}, 30, newTestLogger())
		now := time.Date(2025, 8, 20, 18, 45, 0, 0, time.UTC)

		// Act
		_, _, err := uc.ScheduleUntilSunset(ctx, 1, now)

		// Assert
		if !errors.Is(err, domain.ErrSunsetTooClose) {
			t.Fatalf("expected ErrSunsetTooClose, got %v", err)
		}
		if pending, _ := jobs.ListPending(ctx); len(pending) != 0 {
			t.Errorf("expected no persisted job, got %d", len(pending))
		}
	})
}

func TestSnoozeUseCase_Fire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)

	t.Run("delivers and clears the job", func(t *testing.T) {
		// Arrange
		users := newMemUserRepo()
		users.put(testUser(1, "07:30"))
		msgr := newMockMessenger()
		reminders := NewReminderUseCase(users, newMemActionLog(), msgr, &fakeOracle{}, newTestLogger())
		jobs := newMemSnoozeRepo()
		uc := NewSnoozeUseCase(jobs, &fakeTimers{}, reminders, &fakeOracle{}, 30, newTestLogger())
		if _, err := uc.Schedule(ctx, 1, 10, now.Add(-10*time.Minute)); err != nil {
			t.Fatalf("Schedule failed: %v", err)
		}

		// Act
		if err := uc.Fire(ctx, 1, now); err != nil {
			t.Fatalf("Fire failed: %v", err)
		}

		// Assert
		if got := msgr.sentCount(); got != 1 {
			t.Errorf("expected 1 send, got %d", got)
		}
		if pending, _ := jobs.ListPending(ctx); len(pending) != 0 {
			t.Errorf("expected job cleared, got %d pending", len(pending))
		}
	})

	t.Run("cancel disarms the timer and drops the job", func(t *testing.T) {
		// Arrange
		jobs := newMemSnoozeRepo()
		timers := &fakeTimers{}
		uc := NewSnoozeUseCase(jobs, timers, nil, &fakeOracle{}, 30, newTestLogger())
		if _, err := uc.Schedule(ctx, 1, 30, now); err != nil {
			t.Fatalf("Schedule failed: %v", err)
		}

		// Act
		if err := uc.Cancel(ctx, 1); err != nil {
			t.Fatalf("Cancel failed: %v", err)
		}

		// Assert
		if len(timers.disarmed) != 1 || timers.disarmed[0] != 1 {
			t.Errorf("expected user 1 disarmed, got %v", timers.disarmed)
		}
		if pending, _ := jobs.ListPending(ctx); len(pending) != 0 {
			t.Errorf("expected no pending jobs, got %d", len(pending))
		}
	})
}
