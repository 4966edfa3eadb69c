package ratelimit

import (
	"context"
	"testing"
	"time"
)

// fakeClock lets tests advance time manually.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestWindow(maxBurst int) (*Window, *fakeClock, *[]time.Duration) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	var slept []time.Duration

	w := NewWindow(maxBurst, 100)
	w.now = clock.now
	w.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		clock.advance(d)
		return nil
	}
	return w, clock, &slept
}

func TestNoDelayUnderBurstBudget(t *testing.T) {
	w, _, slept := newTestWindow(5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := w.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
		if err := w.Record(ctx); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	if len(*slept) != 0 {
		t.Errorf("expected no sleeps under budget, got %v", *slept)
	}
}

func TestWaitWhenWindowFull(t *testing.T) {
	w, clock, slept := newTestWindow(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = w.Record(ctx)
		clock.advance(time.Second)
	}

	// Window holds 3 entries; the oldest is 3s old, so the wait must be
	// 60 - 3 = 57s.
	if err := w.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(*slept) != 1 {
		t.Fatalf("expected one sleep, got %d", len(*slept))
	}
	if got := (*slept)[0]; got != 57*time.Second {
		t.Errorf("wait = %v, want 57s", got)
	}
	if got := (*slept)[0]; got <= 0 || got > 60*time.Second {
		t.Errorf("wait %v outside (0, 60s]", got)
	}
}

func TestOldEntriesArePruned(t *testing.T) {
	w, clock, slept := newTestWindow(2)
	ctx := context.Background()

	_ = w.Record(ctx)
	_ = w.Record(ctx)

	// After the window passes, both entries expire and admission is free.
	clock.advance(61 * time.Second)
	if err := w.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(*slept) != 0 {
		t.Errorf("expected no sleep after window expiry, got %v", *slept)
	}

	stats, err := w.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.RequestsLastMinute != 0 {
		t.Errorf("requests_last_minute = %d, want 0", stats.RequestsLastMinute)
	}
	if stats.TotalRequests != 2 {
		t.Errorf("total_requests = %d, want 2", stats.TotalRequests)
	}
}

func TestStats(t *testing.T) {
	w, _, _ := newTestWindow(300)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_ = w.Record(ctx)
	}

	stats, err := w.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.RequestsLastMinute != 4 {
		t.Errorf("requests_last_minute = %d, want 4", stats.RequestsLastMinute)
	}
	if stats.RemainingCapacity != 296 {
		t.Errorf("remaining_capacity = %d, want 296", stats.RemainingCapacity)
	}
	if stats.MaxBurst != 300 || stats.MaxPerMinute != 100 {
		t.Errorf("limits = (%d, %d), want (300, 100)", stats.MaxBurst, stats.MaxPerMinute)
	}
}

func TestWaitHonoursContext(t *testing.T) {
	w := NewWindow(1, 100)
	ctx := context.Background()
	_ = w.Record(ctx)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	if err := w.Wait(cancelled); err == nil {
		t.Error("expected context error from Wait on full window")
	}
}
