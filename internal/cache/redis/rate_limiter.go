package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ckartner/hoodbot/internal/domain"
)

// windowStateLua prunes expired entries from the request log and returns the
// surviving count together with the oldest score. Pruning and reading happen
// in one atomic script so two processes never disagree about the window.
const windowStateLua = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local oldestScore = 0
if #oldest == 2 then
  oldestScore = tonumber(oldest[2])
end
return {count, oldestScore}
`

const (
	requestsKey = "hoodbot:ratelimit:requests"
	totalKey    = "hoodbot:ratelimit:total"

	// minPoll keeps Wait from spinning when the computed wait is tiny or
	// another process keeps refilling the window.
	minPoll = 50 * time.Millisecond
)

// RateLimiter is a sliding-window admission gate backed by a Redis sorted
// set, shared by every process that signs with the same API key. It
// implements domain.Limiter with the same window semantics as the in-process
// limiter: admission is gated on the burst budget; MaxPerMinute is reported
// in stats only.
type RateLimiter struct {
	rdb          *redis.Client
	windowState  *redis.Script
	window       time.Duration
	maxBurst     int
	maxPerMinute int
}

// NewRateLimiter creates a RateLimiter backed by the given Client.
func NewRateLimiter(c *Client, maxBurst, maxPerMinute int) *RateLimiter {
	return &RateLimiter{
		rdb:          c.Underlying(),
		windowState:  redis.NewScript(windowStateLua),
		window:       60 * time.Second,
		maxBurst:     maxBurst,
		maxPerMinute: maxPerMinute,
	}
}

// Wait blocks until the shared window has room for another request. It never
// waits longer than one window span per iteration and honours context
// cancellation.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		count, oldest, err := rl.windowSnapshot(ctx)
		if err != nil {
			return err
		}
		if count < int64(rl.maxBurst) {
			return nil
		}

		// Sleep until the oldest entry ages out of the window, with a floor
		// so concurrent writers cannot make us busy-loop.
		wait := rl.window - time.Duration(time.Now().UnixMicro()-oldest)*time.Microsecond
		if wait < minPoll {
			wait = minPoll
		}
		if wait > rl.window {
			wait = rl.window
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("redis: rate limit wait: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// Record logs one dispatched request in the shared window.
func (rl *RateLimiter) Record(ctx context.Context) error {
	now := time.Now().UnixMicro()

	pipe := rl.rdb.TxPipeline()
	pipe.ZAdd(ctx, requestsKey, redis.Z{Score: float64(now), Member: uuid.NewString()})
	pipe.Incr(ctx, totalKey)
	pipe.Expire(ctx, requestsKey, 2*rl.window)
	pipe.Expire(ctx, totalKey, 24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: rate limit record: %w", err)
	}
	return nil
}

// Stats returns the shared window snapshot.
func (rl *RateLimiter) Stats(ctx context.Context) (domain.RateLimitStats, error) {
	count, _, err := rl.windowSnapshot(ctx)
	if err != nil {
		return domain.RateLimitStats{}, err
	}

	total, err := rl.rdb.Get(ctx, totalKey).Int64()
	if err != nil && err != redis.Nil {
		return domain.RateLimitStats{}, fmt.Errorf("redis: rate limit stats: %w", err)
	}

	remaining := rl.maxBurst - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return domain.RateLimitStats{
		RequestsLastMinute: int(count),
		RemainingCapacity:  remaining,
		MaxBurst:           rl.maxBurst,
		MaxPerMinute:       rl.maxPerMinute,
		TotalRequests:      total,
	}, nil
}

func (rl *RateLimiter) windowSnapshot(ctx context.Context) (count, oldest int64, err error) {
	result, err := rl.windowState.Run(
		ctx,
		rl.rdb,
		[]string{requestsKey},
		time.Now().UnixMicro(),
		rl.window.Microseconds(),
	).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("redis: rate limit window state: %w", err)
	}
	if len(result) < 2 {
		return 0, 0, fmt.Errorf("redis: rate limit window state: unexpected result length %d", len(result))
	}
	return result[0], result[1], nil
}

// Compile-time interface check.
var _ domain.Limiter = (*RateLimiter)(nil)
