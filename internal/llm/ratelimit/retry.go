package ratelimit

import (
	"context"
	"math/rand"
	"time"
)

const (
	// DefaultBaseBackoff seeds the exponential backoff between attempts.
	DefaultBaseBackoff = time.Second
	// DefaultMaxBackoff bounds exponential growth.
	DefaultMaxBackoff = 30 * time.Second
	// DefaultMaxRetries is the extra-attempt budget when none is configured.
	DefaultMaxRetries = 3

	maxJitter = 500 * time.Millisecond
)

// Classifier decides whether a provider error is a recoverable rate-limit or
// quota rejection, and whether the provider suggested how long to wait.
// Each provider adapter supplies its own implementation; the retry policy
// never inspects concrete provider error types.
type Classifier interface {
	IsRateLimited(err error) bool
	SuggestedDelay(err error) (time.Duration, bool)
}

// Operation is one logical provider call.
type Operation[T any] func(ctx context.Context) (T, error)

// Retrier re-invokes an operation when it fails with a recoverable
// rate-limit signal, waiting between attempts and acquiring a limiter token
// before every attempt, including the first.
type Retrier struct {
	// Limiter gates every attempt. Required.
	Limiter *Limiter
	// MaxRetries is the number of extra attempts after the first.
	MaxRetries int
	// BaseBackoff seeds base*2^attempt when the error carries no delay hint.
	BaseBackoff time.Duration
	// MaxBackoff caps the exponential growth.
	MaxBackoff time.Duration
	// OnRetry, if set, observes each backoff (attempt index, wait duration).
	OnRetry func(attempt int, wait time.Duration)

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

// NewRetrier builds a retrier with default backoff constants.
func NewRetrier(limiter *Limiter, maxRetries int) *Retrier {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Retrier{
		Limiter:     limiter,
		MaxRetries:  maxRetries,
		BaseBackoff: DefaultBaseBackoff,
		MaxBackoff:  DefaultMaxBackoff,
	}
}

// Do executes op through r's retry policy.
//
// Success returns immediately. A non-recoverable error propagates after the
// first attempt. A recoverable error is retried up to r.MaxRetries times;
// once exhausted, the last error propagates unchanged.
func Do[T any](ctx context.Context, r *Retrier, classify Classifier, op Operation[T]) (T, error) {
	var zero T
	if ctx == nil {
		ctx = context.Background()
	}

	for attempt := 0; ; attempt++ {
		if r.Limiter != nil {
			if err := r.Limiter.Acquire(ctx); err != nil {
				return zero, err
			}
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if classify == nil || !classify.IsRateLimited(err) {
			return zero, err
		}
		if attempt >= r.MaxRetries {
			return zero, err
		}

		wait, ok := classify.SuggestedDelay(err)
		if !ok || wait <= 0 {
			wait = r.backoff(attempt)
		}
		wait += r.jitterDelay()

		if r.OnRetry != nil {
			r.OnRetry(attempt+1, wait)
		}
		if err := r.doSleep(ctx, wait); err != nil {
			return zero, err
		}
	}
}

func (r *Retrier) backoff(attempt int) time.Duration {
	base := r.BaseBackoff
	if base <= 0 {
		base = DefaultBaseBackoff
	}
	ceiling := r.MaxBackoff
	if ceiling <= 0 {
		ceiling = DefaultMaxBackoff
	}

	// base * 2^attempt, guarding against shift overflow on long runs.
	if attempt > 30 {
		return ceiling
	}
	wait := base << uint(attempt)
	if wait > ceiling {
		wait = ceiling
	}
	return wait
}

func (r *Retrier) jitterDelay() time.Duration {
	if r.jitter != nil {
		return r.jitter()
	}
	return time.Duration(rand.Int63n(int64(maxJitter)))
}

func (r *Retrier) doSleep(ctx context.Context, d time.Duration) error {
	if r.sleep != nil {
		return r.sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}
