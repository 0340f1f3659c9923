package ratelimit

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when all slots of a limiter are occupied.
var ErrRateLimited = errors.New("rate limited")

// Limiter bounds the number of in-flight attempts for one operation class
// (e.g. "login") within a trailing window. It does not distinguish callers:
// per-identity throttling is the auth service's cool-down, not this.
//
// State is process-local and does not survive restarts or span replicas.
type Limiter struct {
	mu       sync.Mutex
	capacity int
	window   time.Duration
	occupied int
}

// New creates a limiter admitting at most capacity concurrent attempts,
// each occupying its slot for window.
func New(capacity int, window time.Duration) *Limiter {
	if capacity <= 0 {
		capacity = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &Limiter{capacity: capacity, window: window}
}

// TryAcquire claims a slot, scheduling its automatic release after the
// window elapses. It never blocks: when occupancy is at capacity it fails
// immediately with ErrRateLimited.
func (l *Limiter) TryAcquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.occupied >= l.capacity {
		return ErrRateLimited
	}
	l.occupied++

	time.AfterFunc(l.window, func() {
		l.mu.Lock()
		l.occupied--
		l.mu.Unlock()
	})

	return nil
}

// Occupied returns the number of currently held slots.
func (l *Limiter) Occupied() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.occupied
}
