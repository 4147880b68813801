// Package ratelimit provides the process-wide request budget shared by every
// LLM provider driver: a token bucket capping total requests per minute, and
// a retry policy that backs off on provider rate-limit signals.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultRequestsPerMinute is used when no limit is configured.
const DefaultRequestsPerMinute = 10

// Limiter is a token bucket bounding requests per minute across all callers.
//
// Tokens refill continuously at capacity/60 per second, capped at capacity.
// The count never goes negative: Acquire blocks until a full token is
// available. A full bucket admits up to capacity calls at once; sustained
// demand is paced to the configured rate thereafter. One instance is
// constructed at startup and shared by every provider in the process.
type Limiter struct {
	mu       sync.Mutex
	capacity float64
	tokens   float64
	rate     float64 // tokens per second
	last     time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLimiter creates a limiter admitting at most rpm requests per rolling
// minute. Values below 1 are clamped to 1. The bucket starts full.
func NewLimiter(rpm int) *Limiter {
	if rpm < 1 {
		rpm = 1
	}
	l := &Limiter{
		capacity: float64(rpm),
		tokens:   float64(rpm),
		rate:     float64(rpm) / 60.0,
		now:      time.Now,
		sleep:    sleepContext,
	}
	l.last = l.now()
	return l
}

// Acquire blocks until one token is available, consumes it, and returns.
// It is safe for concurrent use. The only early return is ctx cancellation
// while waiting for a token to accrue.
func (l *Limiter) Acquire(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		l.mu.Lock()
		l.refillLocked()
		if l.tokens >= 1.0 {
			l.tokens -= 1.0
			l.mu.Unlock()
			return nil
		}
		// Wait exactly as long as one token takes to accrue, outside the
		// lock so other callers can keep their own bookkeeping moving.
		needed := 1.0 - l.tokens
		wait := time.Duration(needed / l.rate * float64(time.Second))
		l.mu.Unlock()

		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Tokens returns the current token count after refill. Intended for
// diagnostics and tests.
func (l *Limiter) Tokens() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refillLocked()
	return l.tokens
}

// Capacity returns the configured requests-per-minute limit.
func (l *Limiter) Capacity() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int(l.capacity)
}

// refillLocked credits tokens for the elapsed time since the last refill,
// capped at capacity. Callers must hold mu.
func (l *Limiter) refillLocked() {
	now := l.now()
	elapsed := now.Sub(l.last)
	l.last = now
	if elapsed <= 0 {
		return
	}

	l.tokens += elapsed.Seconds() * l.rate
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
