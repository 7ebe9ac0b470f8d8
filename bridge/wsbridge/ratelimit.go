package wsbridge

import (
	"sync"
	"time"
)

// ConnectionLimiter gates how frequently a Relay accepts new WebSocket
// upgrades, independent of per-connection behavior. Adapted from the
// teacher's httpapi.SlidingWindowLimiter (there gating replay-dump and
// admin requests) to the one sensitive operation a Relay exposes: opening
// a new long-lived subscription onto Source.
type ConnectionLimiter struct {
	window time.Duration
	limit  int
	now    func() time.Time

	mu     sync.Mutex
	events []time.Time
}

// NewConnectionLimiter builds a limiter allowing up to limit upgrades per
// window. A non-positive window or limit disables rate limiting entirely.
func NewConnectionLimiter(window time.Duration, limit int) *ConnectionLimiter {
	return &ConnectionLimiter{window: window, limit: limit, now: time.Now}
}

// Allow reports whether another upgrade may proceed right now, recording
// the attempt if so.
func (l *ConnectionLimiter) Allow() bool {
	if l == nil || l.limit <= 0 || l.window <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	kept := l.events[:0]
	for _, ts := range l.events {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.events = kept
	if len(l.events) >= l.limit {
		return false
	}
	l.events = append(l.events, now)
	return true
}
