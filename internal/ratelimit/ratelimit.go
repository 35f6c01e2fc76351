// Package ratelimit implements a fixed-window attempt limiter keyed by
// (client, action). Counters live behind a small store interface so the
// in-process map can be swapped for a shared backend in multi-process
// deployments without touching the policy logic. With the in-memory store,
// each process keeps independent counters; for the guarded action's risk
// profile (login attempts) that is an accepted boundary, not a bug.
package ratelimit

import (
	"errors"
	"sync"
	"time"
)

const (
	DefaultThreshold = 5
	DefaultWindow    = 15 * time.Minute
)

// Counter tracks attempts within one window.
type Counter struct {
	Count       int
	WindowStart time.Time
}

// Store holds counters keyed by (client, action). Increment must be a
// single mutation point per key: read-modify-write under one lock so
// concurrent attempts never lose updates.
type Store interface {
	// Increment bumps the counter for key, resetting it first when the
	// window has elapsed since the first attempt, and returns the
	// post-increment state.
	Increment(key string, now time.Time, window time.Duration) Counter
	Reset(key string)
	ResetAll()
	// Len reports the number of live counters.
	Len() int
}

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]Counter
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]Counter)}
}

func (s *MemoryStore) Increment(key string, now time.Time, window time.Duration) Counter {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[key]
	if !ok || now.Sub(c.WindowStart) >= window {
		c = Counter{WindowStart: now}
	}
	c.Count++
	s.counters[key] = c
	return c
}

func (s *MemoryStore) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, key)
}

func (s *MemoryStore) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = make(map[string]Counter)
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}

// Result reports the outcome of one attempt.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter applies a threshold/window policy over a counter Store.
type Limiter struct {
	store     Store
	threshold int
	window    time.Duration
	now       func() time.Time
}

// Option configures Limiter behavior.
type Option func(*Limiter)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(l *Limiter) {
		if fn != nil {
			l.now = fn
		}
	}
}

// New constructs a Limiter. Non-positive threshold or window fall back to
// the defaults.
func New(store Store, threshold int, window time.Duration, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("ratelimit: store is required")
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if window <= 0 {
		window = DefaultWindow
	}
	l := &Limiter{store: store, threshold: threshold, window: window, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Attempt records one attempt for key and reports whether it is allowed.
// Denied attempts still count: a client hammering past the threshold keeps
// the window open.
func (l *Limiter) Attempt(key string) Result {
	now := l.now()
	c := l.store.Increment(key, now, l.window)
	remaining := l.threshold - c.Count
	if remaining < 0 {
		remaining = 0
	}
	if c.Count > l.threshold {
		return Result{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: c.WindowStart.Add(l.window).Sub(now),
		}
	}
	return Result{Allowed: true, Remaining: remaining}
}

// Reset clears the counter for key; the next attempt is allowed.
func (l *Limiter) Reset(key string) {
	l.store.Reset(key)
}

// ResetAll clears every counter.
func (l *Limiter) ResetAll() {
	l.store.ResetAll()
}

// Window returns the configured window duration.
func (l *Limiter) Window() time.Duration { return l.window }

// Threshold returns the configured attempt threshold.
func (l *Limiter) Threshold() int { return l.threshold }
