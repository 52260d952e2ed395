// Package ratelimit provides a sliding-window request limiter, used to
// throttle login attempts per client address.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter allows at most limit requests per key within window.
type Limiter struct {
	window time.Duration
	limit  int

	mu       sync.Mutex
	requests map[string][]time.Time
	now      func() time.Time
}

// New creates a Limiter.
func New(window time.Duration, limit int) *Limiter {
	return &Limiter{
		window:   window,
		limit:    limit,
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow records a request for key and reports whether it is within the
// limit. Stale entries for the key are pruned on each call.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.window)

	var valid []time.Time
	for _, t := range l.requests[key] {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= l.limit {
		l.requests[key] = valid
		return false
	}

	l.requests[key] = append(valid, now)
	return true
}

// Cleanup drops keys with no requests inside the window. Call it
// periodically from a background goroutine.
func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for key, times := range l.requests {
		var valid []time.Time
		for _, t := range times {
			if t.After(cutoff) {
				valid = append(valid, t)
			}
		}
		if len(valid) == 0 {
			delete(l.requests, key)
		} else {
			l.requests[key] = valid
		}
	}
}
