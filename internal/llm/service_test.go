package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/schemalens/schemalens/internal/llm/prompt"
)

func newTestService(t *testing.T, baseURL string, maxRetries int) *Service {
	t.Helper()
	svc, err := NewService(Config{
		DefaultProvider: ProviderOpenAI,
		RequestsPerMin:  600,
		Providers: map[string]ProviderConfig{
			ProviderOpenAI: {APIKey: "sk-test", Model: "gpt-4o-mini", Temperature: 0.3, MaxRetries: maxRetries, BaseURL: baseURL},
		},
	})
	require.NoError(t, err)
	return svc
}

func TestDescribeReturnsSanitizableYAML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"version: 2\nmodels:\n  - name: fct_orders"},"finish_reason":"stop"}],"usage":{"total_tokens":20}}`))
	}))
	defer server.Close()

	svc := newTestService(t, server.URL, 3)
	result, err := svc.Describe(context.Background(), DescribeRequest{
		Prompt: prompt.Data{ModelName: "fct_orders", SQL: "select 1 as order_id"},
	})
	require.NoError(t, err)
	require.Equal(t, ProviderOpenAI, result.Provider)
	require.Equal(t, 1, result.Attempts)
	require.Contains(t, result.YAML, "fct_orders")
}

func TestDescribeRetriesRateLimitThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"version: 2"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	svc := newTestService(t, server.URL, 3)

	var retries []time.Duration
	svc.OnRetry = func(provider string, attempt int, wait time.Duration) {
		require.Equal(t, ProviderOpenAI, provider)
		retries = append(retries, wait)
	}

	result, err := svc.Describe(context.Background(), DescribeRequest{
		Prompt: prompt.Data{ModelName: "fct_orders", SQL: "select 1"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Attempts)
	require.Len(t, retries, 1)
	require.GreaterOrEqual(t, retries[0], time.Second, "server-suggested delay is preferred")
}

func TestDescribePropagatesNonRecoverable(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	svc := newTestService(t, server.URL, 5)
	_, err := svc.Describe(context.Background(), DescribeRequest{
		Prompt: prompt.Data{ModelName: "fct_orders", SQL: "select 1"},
	})
	require.Error(t, err)
	require.EqualValues(t, 1, calls.Load())
}

func TestLimiterIsSharedAndConstructedOnce(t *testing.T) {
	svc := newTestService(t, "http://127.0.0.1:0", 1)

	done := make(chan *struct{ a, b any }, 8)
	for i := 0; i < 8; i++ {
		go func() {
			done <- &struct{ a, b any }{svc.Limiter(), svc.Limiter()}
		}()
	}
	first := svc.Limiter()
	for i := 0; i < 8; i++ {
		pair := <-done
		require.Same(t, first, pair.a)
		require.Same(t, first, pair.b)
	}
	require.Equal(t, 600, first.Capacity())
}
