package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestEvery_RunsImmediatelyAndRepeats(t *testing.T) {
	s := New(zerolog.Nop())
	var n atomic.Int32

	dispose := s.Every(context.Background(), "count", 10*time.Millisecond, func(context.Context) error {
		n.Add(1)
		return nil
	})
	defer dispose()

	waitFor(t, func() bool { return n.Load() >= 3 })
}

func TestDisposer_StopsTaskDeterministically(t *testing.T) {
	s := New(zerolog.Nop())
	var n atomic.Int32

	dispose := s.Every(context.Background(), "count", 5*time.Millisecond, func(context.Context) error {
		n.Add(1)
		return nil
	})
	waitFor(t, func() bool { return n.Load() >= 2 })

	dispose()
	after := n.Load()
	time.Sleep(30 * time.Millisecond)
	if got := n.Load(); got != after {
		t.Fatalf("task ran after dispose: %d -> %d", after, got)
	}
	if s.Active() != 0 {
		t.Fatalf("expected no active tasks, got %d", s.Active())
	}

	// Idempotent.
	dispose()
}

func TestDisposer_CancelsInFlightRun(t *testing.T) {
	s := New(zerolog.Nop())
	started := make(chan struct{})
	var cancelled atomic.Bool

	dispose := s.Every(context.Background(), "slow", time.Hour, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	})
	<-started
	dispose()

	if !cancelled.Load() {
		t.Fatal("expected in-flight run to observe cancellation before dispose returned")
	}
}

func TestEvery_ErrorsAndPanicsKeepSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	var n atomic.Int32

	dispose := s.Every(context.Background(), "flaky", 5*time.Millisecond, func(context.Context) error {
		switch n.Add(1) {
		case 1:
			return errors.New("boom")
		case 2:
			panic("bad")
		}
		return nil
	})
	defer dispose()

	waitFor(t, func() bool { return n.Load() >= 4 })
}

func TestShutdown(t *testing.T) {
	s := New(zerolog.Nop())
	for i := 0; i < 3; i++ {
		s.Every(context.Background(), "idle", time.Hour, func(context.Context) error { return nil })
	}
	s.Shutdown()

	if s.Active() != 0 {
		t.Fatalf("expected no active tasks after shutdown, got %d", s.Active())
	}

	var ran atomic.Bool
	dispose := s.Every(context.Background(), "late", time.Millisecond, func(context.Context) error {
		ran.Store(true)
		return nil
	})
	dispose()
	time.Sleep(10 * time.Millisecond)
	if ran.Load() {
		t.Fatal("task registered after shutdown must not run")
	}
}
