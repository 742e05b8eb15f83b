package httpserver

import (
	"sync"
	"time"
)

// RateLimiter decides whether a client may make another request.
type RateLimiter interface {
	Allow(clientID string) bool
}

// WindowLimiter allows up to limit requests per client within a fixed
// window. Expired client records are reaped lazily on the requests that
// touch them, so an idle server holds no timers.
type WindowLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	clients map[string]*clientWindow
}

type clientWindow struct {
	count   int
	resetAt time.Time
}

// NewWindowLimiter creates a limiter allowing limit requests per window.
func NewWindowLimiter(limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: make(map[string]*clientWindow),
	}
}

// WithLimiterClock overrides the clock, for tests.
func (l *WindowLimiter) WithLimiterClock(now func() time.Time) *WindowLimiter {
	l.now = now
	return l
}

// Allow records a request for clientID and reports whether it is within
// the limit.
func (l *WindowLimiter) Allow(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.reap(now)

	record, ok := l.clients[clientID]
	if !ok || now.After(record.resetAt) {
		l.clients[clientID] = &clientWindow{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	if record.count >= l.limit {
		return false
	}
	record.count++
	return true
}

// reap drops expired windows so the map does not grow with one entry per
// client ever seen. Called with the lock held.
func (l *WindowLimiter) reap(now time.Time) {
	for id, record := range l.clients {
		if now.After(record.resetAt) {
			delete(l.clients, id)
		}
	}
}
