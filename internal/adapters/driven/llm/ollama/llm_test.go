package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewLLMService(LLMConfig{BaseURL: server.URL, Model: "llama-test"})
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(LLMConfig{})
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.api.BaseURL)
	assert.Equal(t, DefaultLLMTimeout, svc.api.HTTP.Timeout)
	assert.NoError(t, svc.Close())
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name      string
		opts      driven.GenerateOptions
		wantRoles []string
	}{
		{name: "with system", opts: driven.GenerateOptions{System: "be terse", MaxTokens: 50}, wantRoles: []string{"system", "user"}},
		{name: "user only", opts: driven.GenerateOptions{}, wantRoles: []string{"user"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req chatRequest
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/chat", r.URL.Path)
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"[]"},"done":true}`))
			})

			out, err := svc.Generate(context.Background(), "prompt", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, "[]", out)

			assert.Equal(t, "llama-test", req.Model)
			assert.False(t, req.Stream)
			assert.Equal(t, tt.opts.MaxTokens, req.Options.NumPredict)
			assert.InDelta(t, 0.0, req.Options.Temperature, 0.0001)

			roles := make([]string, 0, len(req.Messages))
			for _, m := range req.Messages {
				roles = append(roles, m.Role)
			}
			assert.Equal(t, tt.wantRoles, roles)
			assert.Equal(t, "prompt", req.Messages[len(req.Messages)-1].Content)
		})
	}
}

func TestGenerate_ModelNotFound(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"llama-test\" not found"}`))
	})
	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.Contains(t, err.Error(), "ollama pull llama-test")
}

func TestGenerate_ServerError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"out of memory"}`))
	})
	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama: status 500: out of memory")
	assert.NotContains(t, err.Error(), "ollama pull")
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	})
	assert.NoError(t, svc.Ping(context.Background()))

	svc = NewLLMService(LLMConfig{BaseURL: "http://127.0.0.1:1"})
	err := svc.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping")
}
