package web

// limiter.go bounds how many API requests load files at the same time.
//
// Each request takes a slot from a semaphore before the handler runs. When
// every slot is busy the request waits up to maxWait and is then rejected
// with 429 and ErrTooManyLoads.

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// ErrTooManyLoads is returned when no load slot frees up within the wait
// limit. Clients should retry after a short delay.
var ErrTooManyLoads = errors.New("too many concurrent loads, please try again later")

// DefaultMaxConcurrentLoads is the default limit for parallel loads.
const DefaultMaxConcurrentLoads = 4

// DefaultMaxWait is how long to wait for a slot before rejecting.
const DefaultMaxWait = 30 * time.Second

// LoadLimiter controls concurrent file loads using a semaphore.
type LoadLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.Mutex
	active int
}

// NewLoadLimiter allows at most maxConcurrent loads; callers that cannot get
// a slot within maxWait receive ErrTooManyLoads.
func NewLoadLimiter(maxConcurrent int, maxWait time.Duration) *LoadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentLoads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	return &LoadLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot. The caller must call Release once the load ends.
func (l *LoadLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyLoads
	}
}

// Release returns a slot taken by Acquire.
func (l *LoadLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.slots
}

// Active returns the number of loads holding a slot.
func (l *LoadLimiter) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Available returns the number of free slots.
func (l *LoadLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// Middleware wraps next so each request holds a slot while it runs.
func (l *LoadLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := l.Acquire(r.Context()); err != nil {
			status := http.StatusTooManyRequests
			if !errors.Is(err, ErrTooManyLoads) {
				status = http.StatusServiceUnavailable
			}
			w.Header().Set("Retry-After", "1")
			writeJSON(w, status, ErrorResponse{
				Error:   "Too many requests",
				Message: "The server is busy loading other files",
				Action:  "Please try again in a few moments",
				Code:    "UPL003",
				Detail:  err.Error(),
			})
			return
		}
		defer l.Release()
		next.ServeHTTP(w, r)
	})
}
