package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/schemalens/schemalens/internal/llm/content"
	"github.com/schemalens/schemalens/internal/llm/driver"
)

func TestClientRequiresAPIKey(t *testing.T) {
	client := NewClient("", "")
	_, err := client.Complete(context.Background(), &driver.Request{Model: "test", Messages: []content.Message{content.Text("user", "hi")}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "api key")
}

func TestClientLiftsSystemMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))
		require.Equal(t, apiVersion, r.Header.Get("anthropic-version"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		require.Equal(t, "be precise", payload["system"])
		require.EqualValues(t, defaultMaxTokens, payload["max_tokens"])

		messages, ok := payload["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 1)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"version: 2"}],"stop_reason":"end_turn","usage":{"input_tokens":8,"output_tokens":4}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	resp, err := client.Complete(context.Background(), &driver.Request{
		Model: "test-model",
		Messages: []content.Message{
			content.Text("system", "be precise"),
			content.Text("user", "describe"),
		},
	})
	require.NoError(t, err)
	require.Equal(t, "end_turn", resp.FinishReason)
	require.Equal(t, "version: 2", resp.Text())
	require.NotNil(t, resp.Usage)
	require.Equal(t, 12, resp.Usage.TotalTokens)
}

func TestClientClassifies429(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("retry-after", "3")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	_, err := client.Complete(context.Background(), &driver.Request{Model: "test", Messages: []content.Message{content.Text("user", "hi")}})
	require.Error(t, err)
	require.True(t, client.Classifier().IsRateLimited(err))
}
