package speech

import (
	"context"
	"sync"
	"time"
)

// RateLimiter caps how many synthesis requests may start inside a
// sliding window. Murf meters by request, so bursts of short phrases
// are the thing to guard against.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	starts []time.Time
	now    func() time.Time
}

// NewRateLimiter allows up to limit requests per window. A limit of
// zero or less disables limiting.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow reports whether a request may start now, recording it if so.
func (r *RateLimiter) Allow() bool {
	if r.limit <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.prune(now)
	if len(r.starts) >= r.limit {
		return false
	}
	r.starts = append(r.starts, now)
	return true
}

// Wait blocks until a request slot opens or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.Allow() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.retryIn()):
		}
	}
}

// retryIn returns how long until the oldest recorded start leaves the
// window.
func (r *RateLimiter) retryIn() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.starts) == 0 {
		return 10 * time.Millisecond
	}
	wait := r.window - r.now().Sub(r.starts[0])
	if wait < 10*time.Millisecond {
		wait = 10 * time.Millisecond
	}
	return wait
}

// prune drops starts that have aged out. Caller holds r.mu.
func (r *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-r.window)
	n := 0
	for _, t := range r.starts {
		if t.After(cutoff) {
			r.starts[n] = t
			n++
		}
	}
	r.starts = r.starts[:n]
}
