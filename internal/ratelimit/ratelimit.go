// Package ratelimit limits how many volume changes a relay client may make
// inside a sliding window.
package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultWindowSize      = time.Second
	defaultCleanupInterval = 5 * time.Minute
)

// RateLimiter is a per-key sliding window limiter.
type RateLimiter struct {
	mu          sync.Mutex
	requests    map[string][]time.Time
	limit       int
	window      time.Duration
	cleanupTime time.Time
	now         func() time.Time
}

// NewRateLimiter allows limit events per key in any window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow records an event for key and reports whether it is within the limit.
// Rejected events are not recorded.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.After(rl.cleanupTime) {
		rl.cleanup(now)
		rl.cleanupTime = now.Add(defaultCleanupInterval)
	}

	valid := prune(rl.requests[key], now.Add(-rl.window))
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}
	rl.requests[key] = append(valid, now)
	return true
}

// Forget drops all history for key, e.g. when a client disconnects.
func (rl *RateLimiter) Forget(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.requests, key)
}

// Reset drops the history of every key.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.requests = make(map[string][]time.Time)
}

func (rl *RateLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-rl.window)
	for key, requests := range rl.requests {
		valid := prune(requests, cutoff)
		if len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

// prune keeps the timestamps after cutoff, reusing the backing array.
func prune(requests []time.Time, cutoff time.Time) []time.Time {
	valid := requests[:0]
	for _, t := range requests {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	return valid
}
