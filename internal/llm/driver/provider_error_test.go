package driver

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRetryAfterSeconds(t *testing.T) {
	now := time.Now()
	require.Equal(t, 30*time.Second, ParseRetryAfter("30", now))
	require.Equal(t, time.Duration(0), ParseRetryAfter("0", now))
	require.Equal(t, time.Duration(0), ParseRetryAfter("", now))
	require.Equal(t, time.Duration(0), ParseRetryAfter("garbage", now))
}

func TestParseRetryAfterHTTPDate(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	at := now.Add(90 * time.Second)
	require.Equal(t, 90*time.Second, ParseRetryAfter(at.Format(http.TimeFormat), now))

	// Dates in the past yield no hint.
	past := now.Add(-time.Minute)
	require.Equal(t, time.Duration(0), ParseRetryAfter(past.Format(http.TimeFormat), now))
}

func TestProviderErrorRateLimitDetection(t *testing.T) {
	require.True(t, (&ProviderError{StatusCode: 429}).IsRateLimit())
	require.True(t, (&ProviderError{StatusCode: 400, Message: "RESOURCE_EXHAUSTED: quota"}).IsRateLimit())
	require.True(t, (&ProviderError{StatusCode: 402, Message: "insufficient_quota"}).IsRateLimit())
	require.False(t, (&ProviderError{StatusCode: 500, Message: "boom"}).IsRateLimit())
	require.False(t, (&ProviderError{StatusCode: 401, Message: "bad key"}).IsRateLimit())
}

func TestClassifierUnwrapsWrappedErrors(t *testing.T) {
	perr := &ProviderError{Provider: "openai", StatusCode: 429, RetryAfter: 5 * time.Second}
	wrapped := fmt.Errorf("describe model orders: %w", perr)

	c := RateLimitClassifier{}
	require.True(t, c.IsRateLimited(wrapped))

	delay, ok := c.SuggestedDelay(wrapped)
	require.True(t, ok)
	require.Equal(t, 5*time.Second, delay)

	require.False(t, c.IsRateLimited(errors.New("plain failure")))
	_, ok = c.SuggestedDelay(errors.New("plain failure"))
	require.False(t, ok)
}
