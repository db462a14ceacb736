// Package ratelimit provides per-key token bucket rate limiting for the
// MCP tools.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrLimited is returned by Tools.Check when a tool has no tokens left.
var ErrLimited = errors.New("rate limit exceeded")

// Limiter is a token bucket per key. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   int     // bucket capacity and initial fill
	now     func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewLimiter creates a limiter refilling rate tokens per second up to burst.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		now:     time.Now,
	}
}

// Allow takes one token from key's bucket and reports whether one was there.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), last: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = min(b.tokens+l.rate*elapsed, float64(l.burst))
		b.last = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Tools maps MCP tool names to their limiters.
type Tools map[string]*Limiter

// DefaultTools returns the limits used by the MCP server. A run is CPU
// bound and writes to the archive, so it is limited much harder than reads.
func DefaultTools() Tools {
	return Tools{
		"crosswalk_run":   NewLimiter(6.0/60.0, 2), // 6/minute, burst 2
		"crosswalk_runs":  NewLimiter(1.0, 10),     // 60/minute, burst 10
		"crosswalk_frame": NewLimiter(2.0, 20),     // 120/minute, burst 20
	}
}

// Check consumes a token for tool. Tools without a limiter always pass.
func (t Tools) Check(tool string) error {
	l, ok := t[tool]
	if !ok {
		return nil
	}
	if !l.Allow(tool) {
		return fmt.Errorf("%w for %s, please try again shortly", ErrLimited, tool)
	}
	return nil
}
