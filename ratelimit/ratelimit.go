package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter paces outbound quote calls. A burst scope suspends pacing for the
// tight two-quote window of one cycle so the legs are priced back to back.
type Limiter struct {
	limiter *rate.Limiter

	mu       sync.Mutex
	bursting int
}

func New(perSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Wait blocks until a token is available, or returns immediately inside a
// burst scope.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	bursting := l.bursting > 0
	l.mu.Unlock()
	if bursting {
		return nil
	}
	return l.limiter.Wait(ctx)
}

// Burst runs fn with pacing suspended. Scopes nest; pacing resumes when the
// outermost scope exits.
func (l *Limiter) Burst(fn func() error) error {
	l.mu.Lock()
	l.bursting++
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.bursting--
		l.mu.Unlock()
	}()

	return fn()
}
