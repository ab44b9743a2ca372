package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/memwallet/memwallet/internal/profile"
)

func newStubProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewProvider(&Config{
		BaseURL:    srv.URL,
		APIKey:     "test-key",
		MaxRetries: 1,
	})
	require.NoError(t, err)
	return p
}

func writeEmbeddingResponse(t *testing.T, w http.ResponseWriter, vectors map[int][]float32) {
	t.Helper()
	data := make([]map[string]any, 0, len(vectors))
	for index, vector := range vectors {
		data = append(data, map[string]any{
			"object":    "embedding",
			"index":     index,
			"embedding": vector,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"model":  "text-embedding-3-small",
		"data":   data,
	}))
}

func writeChatResponse(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"object": "chat.completion",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	}))
}

func TestEmbedding(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/embeddings", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"prefers dark roast coffee"}, req.Input)
		require.Equal(t, "text-embedding-3-small", req.Model)

		writeEmbeddingResponse(t, w, map[int][]float32{0: {0.1, 0.25, 0.5}})
	})

	vector, err := p.Embedding(context.Background(), "prefers dark roast coffee")
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, 0.25, 0.5}, vector)
	require.Equal(t, "text-embedding-3-small", p.EmbeddingModel())
}

func TestEmbeddingBatchPreservesInputOrder(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeEmbeddingResponse(t, w, map[int][]float32{
			2: {0.3},
			0: {0.1},
			1: {0.2},
		})
	})

	vectors, err := p.EmbeddingBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{0.1}, {0.2}, {0.3}}, vectors)
}

func TestEmbeddingBatchEmptyInput(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	})

	vectors, err := p.EmbeddingBatch(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, vectors)
}

func TestCompleteJSONConstrainsResponseFormat(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			ResponseFormat struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 1)
		require.Equal(t, "user", req.Messages[0].Role)
		require.Equal(t, "json_object", req.ResponseFormat.Type)

		writeChatResponse(t, w, `{"domains":["eating"]}`)
	})

	out, err := p.CompleteJSON(context.Background(), "analyze this prompt")
	require.NoError(t, err)
	require.JSONEq(t, `{"domains":["eating"]}`, out)
}

func TestChatEmptyChoices(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"chat.completion","choices":[]}`))
	})

	_, err := p.Complete(context.Background(), "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty chat response")
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, `{"error":{"message":"upstream hiccup"}}`, http.StatusInternalServerError)
			return
		}
		writeEmbeddingResponse(t, w, map[int][]float32{0: {0.4}})
	}))
	t.Cleanup(srv.Close)

	p, err := NewProvider(&Config{
		BaseURL:    srv.URL,
		APIKey:     "test-key",
		MaxRetries: 2,
	})
	require.NoError(t, err)

	vector, err := p.Embedding(context.Background(), "anything")
	require.NoError(t, err)
	require.Equal(t, []float32{0.4}, vector)
	require.Equal(t, int32(2), calls.Load())
}

func TestValidateRequiresAPIKey(t *testing.T) {
	p, err := NewProvider(&Config{APIKey: ""})
	require.NoError(t, err)

	err = p.Validate(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "API key is required")
}

func TestConfigFromProfile(t *testing.T) {
	cfg := ConfigFromProfile(&profile.Profile{
		AIOpenAIAPIKey:   "sk-test",
		AIOpenAIBaseURL:  "http://localhost:11434/v1",
		AIChatModel:      "qwen2.5",
		AIEmbeddingModel: "nomic-embed-text",
	})
	require.Equal(t, "sk-test", cfg.APIKey)
	require.Equal(t, "http://localhost:11434/v1", cfg.BaseURL)
	require.Equal(t, "qwen2.5", cfg.ChatModel)
	require.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)

	defaults := ConfigFromProfile(&profile.Profile{AIOpenAIAPIKey: "sk-test"})
	require.Equal(t, "https://api.openai.com/v1", defaults.BaseURL)
	require.Equal(t, "gpt-4o-mini", defaults.ChatModel)
	require.Equal(t, "text-embedding-3-small", defaults.EmbeddingModel)
}
