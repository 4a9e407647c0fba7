package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LimitResult is the outcome of a rate limit check.
type LimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter performs sliding-window rate limiting. With Redis the window is
// shared by every gateway replica; without it each process keeps its own.
type Limiter struct {
	rdb *redis.Client

	mu     sync.Mutex
	local  map[string][]time.Time
	checks int
}

// sweepEvery is how many in-process checks pass between sweeps of keys whose
// hits have all left the window.
const sweepEvery = 256

// NewLimiter creates a new rate limiter. A nil rdb selects the in-process window.
func NewLimiter(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb, local: make(map[string][]time.Time)}
}

// slidingWindowScript atomically: removes expired entries, adds current, counts.
// KEYS[1] = sorted set key
// ARGV[1] = window start (unix micro)
// ARGV[2] = now (unix micro), used as both score and member uniqueness
// ARGV[3] = limit
// ARGV[4] = TTL seconds for the key
// Returns: [current_count, 1=allowed/0=denied]
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local window_start = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)

if count < limit then
    redis.call('ZADD', key, now, now .. ':' .. math.random(1000000))
    redis.call('EXPIRE', key, ttl)
    return {count + 1, 1}
end

redis.call('EXPIRE', key, ttl)
return {count, 0}
`)

// Check counts one request against key, allowing at most limit per window.
func (l *Limiter) Check(ctx context.Context, key string, limit int64, window time.Duration) (LimitResult, error) {
	now := time.Now()
	if l.rdb == nil {
		return l.checkLocal(key, limit, window, now), nil
	}

	windowStart := now.Add(-window).UnixMicro()
	ttlSecs := int64(window.Seconds()) + 1

	result, err := slidingWindowScript.Run(ctx, l.rdb, []string{"shetkari:rl:" + key},
		windowStart, now.UnixMicro(), limit, ttlSecs,
	).Int64Slice()
	if err != nil {
		// Fail open on Redis errors.
		slog.Warn("rate limit check failed, allowing request", "key", key, "error", err)
		return LimitResult{Allowed: true, Remaining: limit, ResetAt: now.Add(window)}, fmt.Errorf("run sliding window: %w", err)
	}

	return newResult(result[0], result[1] == 1, limit, window, now), nil
}

func (l *Limiter) checkLocal(key string, limit int64, window time.Duration, now time.Time) LimitResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-window)
	hits := l.local[key]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	allowed := int64(len(kept)) < limit
	if allowed {
		kept = append(kept, now)
	}
	if len(kept) == 0 {
		delete(l.local, key)
	} else {
		l.local[key] = kept
	}

	l.checks++
	if l.checks%sweepEvery == 0 {
		l.sweep(now.Add(-window))
	}

	res := newResult(int64(len(kept)), allowed, limit, window, now)
	if !allowed && len(kept) > 0 {
		// The oldest hit leaving the window frees the next slot.
		res.RetryAfter = kept[0].Add(window).Sub(now)
		res.ResetAt = kept[0].Add(window)
	}
	return res
}

// sweep drops every key whose newest hit is not after cutoff. The cutoff comes
// from the current call's window; the middleware uses one window for all keys.
// Callers hold mu.
func (l *Limiter) sweep(cutoff time.Time) {
	for key, hits := range l.local {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(l.local, key)
		}
	}
}

func newResult(count int64, allowed bool, limit int64, window time.Duration, now time.Time) LimitResult {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	res := LimitResult{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   now.Add(window),
	}
	if !allowed {
		res.RetryAfter = window / 2
	}
	return res
}
