package driver

import "time"

// RateLimitClassifier recognizes rate-limit/quota rejections raised as
// *ProviderError and surfaces the server-suggested delay when the response
// carried a usable Retry-After. It satisfies the retry policy's classifier
// interface; drivers expose it so the policy never sees provider error shapes.
type RateLimitClassifier struct{}

// IsRateLimited reports whether err is a recoverable rate-limit signal.
func (RateLimitClassifier) IsRateLimited(err error) bool {
	perr, ok := AsProviderError(err)
	return ok && perr.IsRateLimit()
}

// SuggestedDelay returns the provider-suggested wait, if any.
func (RateLimitClassifier) SuggestedDelay(err error) (time.Duration, bool) {
	perr, ok := AsProviderError(err)
	if !ok || perr.RetryAfter <= 0 {
		return 0, false
	}
	return perr.RetryAfter, true
}
