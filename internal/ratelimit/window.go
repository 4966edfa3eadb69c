// Package ratelimit implements the in-process sliding-window request limiter
// used by the API transport. The window counts requests dispatched in the
// trailing 60 seconds; only the burst budget gates admission, the per-minute
// figure is reported as a statistic.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/ckartner/hoodbot/internal/domain"
)

// span is the sliding-window width.
const span = 60 * time.Second

// Window is a mutex-guarded sliding-window limiter. A single Window may be
// shared by concurrent callers; prune and append are atomic under the mutex.
type Window struct {
	mu           sync.Mutex
	times        []time.Time // dispatch timestamps, oldest first
	maxBurst     int
	maxPerMinute int
	total        int64

	// injectable for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewWindow creates a Window that admits at most maxBurst requests per
// trailing 60 seconds. maxPerMinute is informational only.
func NewWindow(maxBurst, maxPerMinute int) *Window {
	return &Window{
		maxBurst:     maxBurst,
		maxPerMinute: maxPerMinute,
		now:          time.Now,
		sleep:        sleepCtx,
	}
}

// Wait blocks until a request may be dispatched under the burst budget. When
// the window is full, the wait is 60s minus the age of the oldest surviving
// entry, never more than 60s. The entry is not counted here; callers invoke
// Record once the request is actually dispatched.
func (w *Window) Wait(ctx context.Context) error {
	w.mu.Lock()
	wait := w.waitTime(w.now())
	w.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	return w.sleep(ctx, wait)
}

// Record counts one dispatched request. The ctx and error exist to satisfy
// domain.Limiter; the in-process window cannot fail.
func (w *Window) Record(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.prune(now)
	w.times = append(w.times, now)
	w.total++
	return nil
}

// Stats returns an informational snapshot of the window.
func (w *Window) Stats(_ context.Context) (domain.RateLimitStats, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(w.now())
	return domain.RateLimitStats{
		RequestsLastMinute: len(w.times),
		RemainingCapacity:  w.maxBurst - len(w.times),
		MaxBurst:           w.maxBurst,
		MaxPerMinute:       w.maxPerMinute,
		TotalRequests:      w.total,
	}, nil
}

// waitTime computes the admission delay at the given instant. Caller holds
// the mutex.
func (w *Window) waitTime(now time.Time) time.Duration {
	w.prune(now)
	if len(w.times) < w.maxBurst {
		return 0
	}
	oldest := w.times[0]
	wait := span - now.Sub(oldest)
	if wait < 0 {
		return 0
	}
	if wait > span {
		return span
	}
	return wait
}

// prune drops entries older than the window span. Caller holds the mutex.
func (w *Window) prune(now time.Time) {
	cutoff := now.Add(-span)
	i := 0
	for i < len(w.times) && !w.times[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.times = append(w.times[:0], w.times[i:]...)
	}
}

// sleepCtx sleeps for d, returning early if the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Compile-time interface check.
var _ domain.Limiter = (*Window)(nil)
