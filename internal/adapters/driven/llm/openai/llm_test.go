package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc, rpm int) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(LLMConfig{
		APIKey:            "sk-test",
		BaseURL:           server.URL,
		Model:             "test-model",
		RequestsPerMinute: rpm,
	})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})
	require.Error(t, err)

	svc, err := NewLLMService(LLMConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.api.BaseURL)
	assert.Equal(t, "openai", svc.api.Provider)
	assert.Nil(t, svc.limiter)
	assert.NoError(t, svc.Close())
}

func TestGenerate_SendsZeroTemperature(t *testing.T) {
	var body map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"[]"}}]}`))
	}, 0)

	out, err := svc.Generate(context.Background(), "extract this", driven.GenerateOptions{Temperature: 0})
	require.NoError(t, err)
	assert.Equal(t, "[]", out)

	temp, ok := body["temperature"]
	require.True(t, ok, "temperature must always be sent")
	assert.InDelta(t, 0.0, temp, 0.0001)
	assert.Equal(t, "test-model", body["model"])

	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	msg, ok := messages[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "extract this", msg["content"])
	assert.NotContains(t, body, "max_tokens")
}

func TestGenerate_SystemMessage(t *testing.T) {
	var req chatRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"[]"}}]}`))
	}, 0)

	_, err := svc.Generate(context.Background(), "extract this", driven.GenerateOptions{System: "json only", MaxTokens: 64})
	require.NoError(t, err)

	require.Len(t, req.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "json only"}, req.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "extract this"}, req.Messages[1])
	assert.Equal(t, 64, req.MaxTokens)
}

func TestProviderName(t *testing.T) {
	assert.Equal(t, "openrouter", providerName(OpenRouterBaseURL))
	assert.Equal(t, "openai", providerName(DefaultBaseURL))
	assert.Equal(t, "openai", providerName("http://localhost:8000/v1"))
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		rateLimited bool
		want        string
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down"}}`, rateLimited: true},
		{name: "api error", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key"}}`, want: "bad key"},
		{name: "status error", status: http.StatusBadGateway, body: `{}`, want: "status 502"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, want: "no response choices"},
		{name: "invalid body", status: http.StatusOK, body: `not json`, want: "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, 0)

			_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
			require.Error(t, err)
			if tt.rateLimited {
				assert.ErrorIs(t, err, domain.ErrRateLimited)
				return
			}
			assert.NotErrorIs(t, err, domain.ErrRateLimited)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGenerate_RateLimiterHonoursContext(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}, 1)

	_, err := svc.Generate(context.Background(), "first", driven.GenerateOptions{})
	require.NoError(t, err)

	// The single token is spent; the next call must wait about a minute.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Generate(ctx, "second", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}, 0)
	assert.NoError(t, svc.Ping(context.Background()))

	failing := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid key"))
	}, 0)
	err := failing.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
