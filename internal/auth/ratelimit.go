package auth

import (
	"sync"
	"time"
)

// AttemptLimiter bounds authentication attempts per client key within a
// sliding time window. Check and Record are separate on purpose: handlers
// record failed attempts only, so successful logins do not consume budget.
type AttemptLimiter interface {
	// Check reports whether the key is under its budget, and if not, how
	// long until the oldest counted attempt rolls out of the window.
	Check(key string) (ok bool, retryAfter time.Duration)
	// Record notes one attempt for the key at the current time.
	Record(key string)
}

// SlidingWindow is an in-process AttemptLimiter. The map is guarded by a
// mutex and entries older than the window are pruned lazily on each
// operation. State is volatile; a restart resets all budgets, which is
// acceptable for an abuse deterrent.
type SlidingWindow struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	attempts map[string][]time.Time
	now      func() time.Time
}

// NewSlidingWindow creates a limiter allowing limit attempts per window.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		limit:    limit,
		window:   window,
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Check implements AttemptLimiter.
func (l *SlidingWindow) Check(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := l.prune(key, now)
	if len(recent) < l.limit {
		return true, 0
	}
	return false, recent[0].Add(l.window).Sub(now)
}

// Record implements AttemptLimiter.
func (l *SlidingWindow) Record(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.attempts[key] = append(l.prune(key, now), now)
}

// prune drops attempts older than the window. Caller holds the mutex.
func (l *SlidingWindow) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	kept := l.attempts[key][:0]
	for _, t := range l.attempts[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.attempts, key)
		return nil
	}
	l.attempts[key] = kept
	return kept
}
