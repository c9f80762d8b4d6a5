package sched

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemLeaseSemantics(t *testing.T) {
	ctx := context.Background()
	state := &leaseState{}
	a := newMemLease(state)
	b := newMemLease(state)

	t.Run("only one instance can acquire an unexpired lease", func(t *testing.T) {
		ok, err := a.Acquire(ctx, time.Minute)
		if err != nil || !ok {
			t.Fatalf("first acquire: ok=%v err=%v", ok, err)
		}
		ok, err = b.Acquire(ctx, time.Minute)
		if err != nil || ok {
			t.Fatalf("second acquire must fail: ok=%v err=%v", ok, err)
		}
	})

	t.Run("refresh after loss returns false", func(t *testing.T) {
		state.expire()
		if ok, _ := a.Refresh(ctx, time.Minute); ok {
			t.Fatal("refresh of an expired lease must fail")
		}
	})

	t.Run("a standby takes over once the lease expires", func(t *testing.T) {
		if ok, _ := b.Acquire(ctx, time.Minute); !ok {
			t.Fatal("standby should acquire the expired lease")
		}
	})
}

func TestLeaseKeeper_Run(t *testing.T) {
	t.Run("starts work after acquiring and cancels it on loss", func(t *testing.T) {
		// Arrange
		state := &leaseState{}
		keeper := NewLeaseKeeper(newMemLease(state), 50*time.Millisecond, false, newTestLogger())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var running atomic.Bool
		workStopped := make(chan struct{}, 4)
		go func() {
			_ = keeper.Run(ctx, func(wctx context.Context) {
				running.Store(true)
				<-wctx.Done()
				running.Store(false)
				workStopped <- struct{}{}
			})
		}()

		// Assert: work starts once leadership is gained.
		waitFor(t, time.Second, func() bool { return running.Load() })

		// Act: depose the keeper by stealing the lease.
		state.expire()
		other := newMemLease(state)
		if ok, _ := other.Acquire(ctx, time.Minute); !ok {
			t.Fatal("rival acquire failed")
		}

		// Assert: the work context is cancelled.
		select {
		case <-workStopped:
		case <-time.After(time.Second):
			t.Fatal("work was not stopped after leadership loss")
		}
	})

	t.Run("disabled lease runs work unguarded", func(t *testing.T) {
		keeper := NewLeaseKeeper(newMemLease(&leaseState{}), 50*time.Millisecond, true, newTestLogger())
		ctx, cancel := context.WithCancel(context.Background())

		var ran atomic.Bool
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = keeper.Run(ctx, func(wctx context.Context) {
				ran.Store(true)
				<-wctx.Done()
			})
		}()

		waitFor(t, time.Second, func() bool { return ran.Load() })
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("keeper did not stop on context cancel")
		}
	})

	t.Run("two keepers never lead at once", func(t *testing.T) {
		// Arrange
		state := &leaseState{}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var leaders atomic.Int32
		var maxSeen atomic.Int32
		work := func(wctx context.Context) {
			n := leaders.Add(1)
			for {
				if cur := maxSeen.Load(); n <= cur || maxSeen.CompareAndSwap(cur, n) {
					break
				}
			}
			<-wctx.Done()
			leaders.Add(-1)
		}

		for i := 0; i < 2; i++ {
			keeper := NewLeaseKeeper(newMemLease(state), 40*time.Millisecond, false, newTestLogger())
			go func() { _ = keeper.Run(ctx, work) }()
		}

		// Act: let both campaign for a while.
		time.Sleep(300 * time.Millisecond)

		// Assert
		if maxSeen.Load() > 1 {
			t.Fatalf("observed %d concurrent leaders", maxSeen.Load())
		}
		if maxSeen.Load() == 0 {
			t.Fatal("no keeper ever led")
		}
	})
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
