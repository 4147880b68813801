package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	errThrottled = errors.New("throttled")
	errFatal     = errors.New("schema exploded")
)

type stubClassifier struct {
	delay    time.Duration
	hasDelay bool
}

func (s stubClassifier) IsRateLimited(err error) bool {
	return errors.Is(err, errThrottled)
}

func (s stubClassifier) SuggestedDelay(err error) (time.Duration, bool) {
	return s.delay, s.hasDelay
}

func newTestRetrier(maxRetries int, waits *[]time.Duration) *Retrier {
	r := NewRetrier(nil, maxRetries)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
	r.jitter = func() time.Duration { return 0 }
	return r
}

func failNTimes(n int, failWith error, result string) (Operation[string], *int) {
	attempts := new(int)
	op := func(ctx context.Context) (string, error) {
		*attempts++
		if *attempts <= n {
			return "", failWith
		}
		return result, nil
	}
	return op, attempts
}

func TestDoReturnsSuccessAfterRecoverableFailures(t *testing.T) {
	var waits []time.Duration
	r := newTestRetrier(3, &waits)

	op, attempts := failNTimes(2, errThrottled, "models: ok")
	result, err := Do(context.Background(), r, stubClassifier{}, op)
	require.NoError(t, err)
	require.Equal(t, "models: ok", result)
	require.Equal(t, 3, *attempts)
	require.Len(t, waits, 2)
}

func TestDoExhaustsRetries(t *testing.T) {
	var waits []time.Duration
	r := newTestRetrier(2, &waits)

	op, attempts := failNTimes(10, errThrottled, "")
	_, err := Do(context.Background(), r, stubClassifier{}, op)
	require.ErrorIs(t, err, errThrottled)
	require.Equal(t, 3, *attempts, "MaxRetries=2 means exactly 3 attempts")
	require.Len(t, waits, 2)
}

func TestDoPropagatesNonRecoverableImmediately(t *testing.T) {
	var waits []time.Duration
	r := newTestRetrier(5, &waits)

	op, attempts := failNTimes(10, errFatal, "")
	_, err := Do(context.Background(), r, stubClassifier{}, op)
	require.ErrorIs(t, err, errFatal)
	require.Equal(t, 1, *attempts)
	require.Empty(t, waits)
}

func TestDoPrefersSuggestedDelay(t *testing.T) {
	var waits []time.Duration
	r := newTestRetrier(1, &waits)

	op, _ := failNTimes(1, errThrottled, "ok")
	_, err := Do(context.Background(), r, stubClassifier{delay: 7 * time.Second, hasDelay: true}, op)
	require.NoError(t, err)
	require.Equal(t, []time.Duration{7 * time.Second}, waits)
}

func TestDoUsesExponentialBackoffWithCeiling(t *testing.T) {
	var waits []time.Duration
	r := newTestRetrier(6, &waits)
	r.BaseBackoff = 8 * time.Second
	r.MaxBackoff = 30 * time.Second

	op, _ := failNTimes(4, errThrottled, "ok")
	_, err := Do(context.Background(), r, stubClassifier{}, op)
	require.NoError(t, err)
	require.Equal(t, []time.Duration{
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}, waits)
}

func TestDoAcquiresTokenBeforeEveryAttempt(t *testing.T) {
	clock := newFakeClock()
	limiter := newTestLimiter(60, clock)

	var waits []time.Duration
	r := newTestRetrier(3, &waits)
	r.Limiter = limiter

	op, attempts := failNTimes(2, errThrottled, "ok")
	_, err := Do(context.Background(), r, stubClassifier{}, op)
	require.NoError(t, err)
	require.Equal(t, 3, *attempts)
	require.InDelta(t, 57.0, limiter.Tokens(), 0.01, "one token per attempt")
}

func TestDoReportsEachBackoff(t *testing.T) {
	var waits []time.Duration
	var reported []int
	r := newTestRetrier(3, &waits)
	r.OnRetry = func(attempt int, wait time.Duration) {
		reported = append(reported, attempt)
		require.Positive(t, wait)
	}

	op, _ := failNTimes(2, errThrottled, "ok")
	_, err := Do(context.Background(), r, stubClassifier{}, op)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, reported)
}
