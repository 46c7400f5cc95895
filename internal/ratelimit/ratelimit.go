// Package ratelimit implements a fixed-window per-key request counter.
//
// Each bucket counts requests per client key inside aligned windows; the
// counter resets when a new window starts. Exceeding the cap is a throttling
// signal, never a validation error.
package ratelimit

import (
	"sync"
	"time"
)

type windowCount struct {
	start time.Time
	count int
}

// Limiter is a fixed-window counter for one bucket (e.g. auth or export).
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*windowCount
}

// New creates a Limiter allowing limit requests per key per window.
func New(limit int, window time.Duration) *Limiter {
	rl := &Limiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		entries: make(map[string]*windowCount),
	}
	go rl.cleanup()
	return rl
}

// NewAuth returns the authentication bucket: 20 requests per 15 minutes.
func NewAuth() *Limiter { return New(20, 15*time.Minute) }

// NewExport returns the document-export bucket: 50 requests per 15 minutes.
func NewExport() *Limiter { return New(50, 15*time.Minute) }

// Allow reports whether a request from key fits in the current window and
// counts it if so.
func (rl *Limiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	e, ok := rl.entries[key]
	if !ok || now.Sub(e.start) >= rl.window {
		rl.entries[key] = &windowCount{start: now, count: 1}
		return true
	}
	if e.count >= rl.limit {
		return false
	}
	e.count++
	return true
}

// Remaining returns how many requests key has left in the current window.
func (rl *Limiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.entries[key]
	if !ok || rl.now().Sub(e.start) >= rl.window {
		return rl.limit
	}
	if left := rl.limit - e.count; left > 0 {
		return left
	}
	return 0
}

// cleanup periodically drops keys whose window has long passed so the map
// does not grow with one entry per client forever.
func (rl *Limiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := rl.now()
		for key, e := range rl.entries {
			if now.Sub(e.start) >= rl.window {
				delete(rl.entries, key)
			}
		}
		rl.mu.Unlock()
	}
}
