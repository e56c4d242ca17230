package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blog-helper-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(v float64) *float64 { return &v }

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	return newTestClientWithGeneration(t, handler, config.LLMGenerationConfig{
		Temperature:         float64Ptr(0.5),
		MaxCompletionTokens: 256,
	})
}

func newTestClientWithGeneration(t *testing.T, handler http.HandlerFunc, gen config.LLMGenerationConfig) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.LLMConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/v1/",
		Model:      "gpt-test",
		Generation: gen,
	})
}

func TestComplete_GenerationParams(t *testing.T) {
	cases := []struct {
		name        string
		gen         config.LLMGenerationConfig
		wantTemp    bool
		wantTempVal float64
	}{
		{"explicit zero temperature is sent", config.LLMGenerationConfig{Temperature: float64Ptr(0)}, true, 0},
		{"unset temperature is omitted", config.LLMGenerationConfig{}, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got map[string]interface{}
			client := newTestClientWithGeneration(t, func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				_ = json.NewEncoder(w).Encode(ChatResponse{
					Choices: []Choice{{Message: Message{Role: "assistant", Content: "ok"}}},
				})
			}, tc.gen)

			_, err := client.Complete(context.Background(), "hello")
			require.NoError(t, err)

			temp, ok := got["temperature"]
			assert.Equal(t, tc.wantTemp, ok)
			if tc.wantTemp {
				assert.InDelta(t, tc.wantTempVal, temp, 1e-9)
			}
			_, hasMax := got["max_completion_tokens"]
			assert.False(t, hasMax)
		})
	}
}

func TestComplete_ReturnsFirstChoiceAndSendsConfiguredRequest(t *testing.T) {
	var got map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(ChatResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Choices: []Choice{
				{Message: Message{Role: "assistant", Content: "first"}, Index: 0, FinishReason: "stop"},
				{Message: Message{Role: "assistant", Content: "second"}, Index: 1, FinishReason: "stop"},
			},
			Usage: Usage{PromptTokens: 3, CompletionTokens: 1, TotalTokens: 4},
		})
	})

	out, err := client.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	assert.Equal(t, "gpt-test", got["model"])
	assert.InDelta(t, 0.5, got["temperature"], 1e-9)
	assert.EqualValues(t, 256, got["max_completion_tokens"])
	messages := got["messages"].([]interface{})
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]interface{})
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "hello", msg["content"])
}

func TestComplete_ClassifiesHTTPFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
		kind   Kind
	}{
		{"bad request", http.StatusBadRequest, ErrClient, KindClient},
		{"unauthorized", http.StatusUnauthorized, ErrClient, KindClient},
		{"rate limited", http.StatusTooManyRequests, ErrClient, KindClient},
		{"internal", http.StatusInternalServerError, ErrServer, KindServer},
		{"unavailable", http.StatusServiceUnavailable, ErrServer, KindServer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":"boom"}`, tc.status)
			})

			_, err := client.Complete(context.Background(), "x")
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var gwErr *Error
			require.True(t, errors.As(err, &gwErr))
			assert.Equal(t, tc.kind, gwErr.Kind)
			assert.Equal(t, tc.status, gwErr.StatusCode)
		})
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	})

	_, err := client.Complete(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
	assert.ErrorIs(t, err, ErrServer)
}

func TestComplete_DeadlineExceededIsTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, "x")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrServer)
}

func TestError_IsMatchesOnlyItsKind(t *testing.T) {
	err := error(&Error{Kind: KindClient, Message: "nope"})
	assert.ErrorIs(t, err, ErrClient)
	assert.NotErrorIs(t, err, ErrServer)
	assert.NotErrorIs(t, err, ErrTimeout)
}
