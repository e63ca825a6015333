package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"remindbot/internal/pkg/logger"
)

func TestOnceSchedule(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

	future := &onceSchedule{at: now.Add(time.Hour)}
	if got := future.Next(now); !got.Equal(now.Add(time.Hour)) {
		t.Fatalf("first Next = %v", got)
	}
	if got := future.Next(now.Add(time.Hour)); !got.IsZero() {
		t.Fatalf("second Next = %v, want zero", got)
	}

	past := &onceSchedule{at: now.Add(-time.Hour)}
	if got := past.Next(now); !got.Equal(now) {
		t.Fatalf("past Next = %v, want %v", got, now)
	}
}

func TestAddOnceRunsOnce(t *testing.T) {
	t.Parallel()
	s := NewScheduler(logger.Nop(), time.UTC)
	defer s.Stop()

	var runs atomic.Int32
	done := make(chan struct{}, 4)
	s.AddOnce(time.Now().Add(-time.Minute), func() {
		runs.Add(1)
		done <- struct{}{}
	})

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("one-shot job did not run")
	}
	time.Sleep(1500 * time.Millisecond)
	if n := runs.Load(); n != 1 {
		t.Fatalf("job ran %d times, want 1", n)
	}
}

func TestRemoveJobPreventsRun(t *testing.T) {
	t.Parallel()
	s := NewScheduler(logger.Nop(), time.UTC)
	defer s.Stop()

	var ran atomic.Bool
	id := s.AddOnce(time.Now().Add(1500*time.Millisecond), func() { ran.Store(true) })
	if len(s.GetEntries()) != 1 {
		t.Fatalf("entries = %d, want 1", len(s.GetEntries()))
	}
	s.RemoveJob(id)
	time.Sleep(2500 * time.Millisecond)
	if ran.Load() {
		t.Fatal("removed job ran")
	}
	if len(s.GetEntries()) != 0 {
		t.Fatalf("entries after remove = %d", len(s.GetEntries()))
	}
}

func TestRecoverFromPanic(t *testing.T) {
	t.Parallel()
	s := NewScheduler(logger.Nop(), time.UTC)
	defer s.Stop()

	done := make(chan struct{})
	s.AddOnce(time.Now(), func() { panic("boom") })
	s.AddOnce(time.Now(), func() { close(done) })
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduler did not survive a panicking job")
	}
}

func TestAddJobInvalidSpec(t *testing.T) {
	t.Parallel()
	s := NewScheduler(logger.Nop(), time.UTC)
	defer s.Stop()
	if _, err := s.AddJob("not a spec", func() {}); err == nil {
		t.Fatal("expected an error for an invalid spec")
	}
	if _, err := s.AddJob("@every 1h", func() {}); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
}
