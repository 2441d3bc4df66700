package sched

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	log := zerolog.Nop()
	s := New(context.Background(), &log)
	t.Cleanup(s.Shutdown)
	return s
}

func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", d)
}

func TestScheduler_DoubleScheduleCancelsFirst(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t)
	var first, second int32

	err := s.Schedule("sub-1", time.Now().Add(30*time.Millisecond), func(ctx context.Context, id string) {
		atomic.AddInt32(&first, 1)
	})
	if err != nil {
		t.Fatalf("first Schedule: %v", err)
	}
	err = s.Schedule("sub-1", time.Now().Add(30*time.Millisecond), func(ctx context.Context, id string) {
		atomic.AddInt32(&second, 1)
	})
	if err != nil {
		t.Fatalf("second Schedule: %v", err)
	}
	if got := s.Armed(); got != 1 {
		t.Fatalf("one id must hold one timer, got %d", got)
	}

	waitFor(t, time.Second, func() bool { return atomic.LoadInt32(&second) == 1 })
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&first) != 0 {
		t.Fatalf("replaced timer must never fire")
	}
	if atomic.LoadInt32(&second) != 1 {
		t.Fatalf("replacement should fire exactly once, got %d", second)
	}
}

func TestScheduler_PastDueFiresImmediately(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t)
	var fired int32
	err := s.Schedule("sub-1", time.Now().Add(-time.Hour), func(ctx context.Context, id string) {
		atomic.AddInt32(&fired, 1)
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	waitFor(t, time.Second, func() bool { return atomic.LoadInt32(&fired) == 1 })
}

func TestScheduler_CancelIsNoOpWhenAbsent(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t)
	s.Cancel("never-scheduled") // must not panic

	var fired int32
	if err := s.Schedule("sub-1", time.Now().Add(20*time.Millisecond), func(ctx context.Context, id string) {
		atomic.AddInt32(&fired, 1)
	}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	s.Cancel("sub-1")
	s.Cancel("sub-1") // second cancel is a no-op too

	time.Sleep(80 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatalf("cancelled timer must not fire")
	}
	if got := s.Armed(); got != 0 {
		t.Fatalf("expected no armed timers, got %d", got)
	}
}

func TestScheduler_RunNow(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t)
	var fired int32
	if err := s.Schedule("sub-1", time.Now().Add(time.Hour), func(ctx context.Context, id string) {
		atomic.AddInt32(&fired, 1)
	}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if !s.RunNow("sub-1") {
		t.Fatalf("RunNow should report an armed timer")
	}
	waitFor(t, time.Second, func() bool { return atomic.LoadInt32(&fired) == 1 })

	// The firing consumed the timer.
	if got := s.Armed(); got != 0 {
		t.Fatalf("timer must be consumed by RunNow, got %d armed", got)
	}
	if s.RunNow("sub-1") {
		t.Fatalf("RunNow on a consumed timer must report false")
	}
}

func TestScheduler_CallbackPanicIsContained(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t)
	var after int32

	if err := s.Schedule("bad", time.Now(), func(ctx context.Context, id string) {
		panic("boom")
	}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	// The scheduler itself must stay usable for other subscriptions.
	time.Sleep(50 * time.Millisecond)
	if err := s.Schedule("good", time.Now(), func(ctx context.Context, id string) {
		atomic.AddInt32(&after, 1)
	}); err != nil {
		t.Fatalf("Schedule after panic: %v", err)
	}
	waitFor(t, time.Second, func() bool { return atomic.LoadInt32(&after) == 1 })
}

func TestScheduler_ChainRearmsItself(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t)
	var fires int32
	var cb func(ctx context.Context, id string)
	cb = func(ctx context.Context, id string) {
		if atomic.AddInt32(&fires, 1) < 3 {
			_ = s.Schedule(id, time.Now().Add(10*time.Millisecond), cb)
		}
	}

	if err := s.Schedule("sub-1", time.Now(), cb); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt32(&fires) == 3 })
}

func TestScheduler_ShutdownRejectsSchedule(t *testing.T) {
	t.Parallel()

	log := zerolog.Nop()
	s := New(context.Background(), &log)

	var fired int32
	if err := s.Schedule("sub-1", time.Now().Add(time.Hour), func(ctx context.Context, id string) {
		atomic.AddInt32(&fired, 1)
	}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	s.Shutdown()
	if got := s.Armed(); got != 0 {
		t.Fatalf("shutdown must stop all timers, got %d armed", got)
	}
	err := s.Schedule("sub-2", time.Now(), func(ctx context.Context, id string) {})
	if !errors.Is(err, domain.ErrSchedulerClosed) {
		t.Fatalf("expected ErrSchedulerClosed, got %v", err)
	}
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatalf("stopped timer must not fire after shutdown")
	}
}

func TestScheduler_ShutdownRacingScheduleLeavesNothingArmed(t *testing.T) {
	t.Parallel()

	log := zerolog.Nop()
	s := New(context.Background(), &log)

	// Schedule from many goroutines while Shutdown runs. Whatever each
	// Schedule returns, the table must be empty afterwards: an accepted
	// timer armed before the sweep and was stopped by it, a rejected one
	// never landed.
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			_ = s.Schedule(fmt.Sprintf("sub-%d", n), time.Now().Add(time.Hour), func(ctx context.Context, id string) {})
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		s.Shutdown()
	}()
	close(start)
	wg.Wait()

	if got := s.Armed(); got != 0 {
		t.Fatalf("no timer may survive shutdown, got %d armed", got)
	}
	err := s.Schedule("late", time.Now(), func(ctx context.Context, id string) {})
	if !errors.Is(err, domain.ErrSchedulerClosed) {
		t.Fatalf("expected ErrSchedulerClosed, got %v", err)
	}
}

func TestScheduler_InvalidArguments(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t)
	if err := s.Schedule("", time.Now(), func(ctx context.Context, id string) {}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("empty id: expected ErrInvalidArgument, got %v", err)
	}
	if err := s.Schedule("sub-1", time.Now(), nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("nil callback: expected ErrInvalidArgument, got %v", err)
	}
}
