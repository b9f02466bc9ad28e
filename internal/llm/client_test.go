package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func fastRetry() RetryPolicy {
	return RetryPolicy{
		MaxElapsedTime:  time.Second,
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     20 * time.Millisecond,
		Multiplier:      2,
	}
}

func testOpenAIClient(t *testing.T, provider Provider, url string) *OpenAIClient {
	t.Helper()
	cfg := DefaultConfig(provider)
	cfg.APIKey = "secret"
	cfg.BaseURL = url
	cfg.Timeout = 2 * time.Second
	cfg.Retry = fastRetry()
	client, err := NewOpenAIClient(cfg)
	require.NoError(t, err)
	return client
}

func TestOpenAIClient_Call(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("X-Title"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama-3.3-70b-versatile", req.Model)
		assert.Equal(t, 300, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "olá", req.Messages[0].Content)

		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"resposta"}}],"usage":{"total_tokens":42}}`)
	}))
	defer srv.Close()

	resp := testOpenAIClient(t, ProviderGroq, srv.URL+"/").Call(context.Background(), "olá", 0.2, 300)

	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "resposta", resp.Content)
	assert.Equal(t, "groq", resp.Provider)
	assert.Equal(t, 42, resp.TokensUsed)
	assert.Greater(t, resp.Latency, time.Duration(0))
}

func TestOpenAIClient_OpenRouterHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "Recruiter", r.Header.Get("X-Title"))
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer srv.Close()

	resp := testOpenAIClient(t, ProviderOpenRouter, srv.URL).Call(context.Background(), "p", 0.1, 0)
	assert.True(t, resp.Success)
	assert.Equal(t, "openrouter", resp.Provider)
}

func TestOpenAIClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"depois"}}]}`)
	}))
	defer srv.Close()

	resp := testOpenAIClient(t, ProviderGroq, srv.URL).Call(context.Background(), "p", 0.1, 10)
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "depois", resp.Content)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenAIClient_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid key"}`)
	}))
	defer srv.Close()

	resp := testOpenAIClient(t, ProviderGroq, srv.URL).Call(context.Background(), "p", 0.1, 10)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "status 401")
	assert.Contains(t, resp.Error, "invalid key")
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	resp := testOpenAIClient(t, ProviderGroq, srv.URL).Call(context.Background(), "p", 0.1, 10)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "no choices")
}

func TestNewOpenAIClient_Validation(t *testing.T) {
	_, err := NewOpenAIClient(Config{Provider: ProviderGroq, BaseURL: "http://x"})
	assert.Error(t, err)

	_, err = NewOpenAIClient(Config{Provider: ProviderGroq, APIKey: "k"})
	assert.Error(t, err)
}

func TestAPIError_Retryable(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: 429}).Retryable())
	assert.True(t, (&APIError{StatusCode: 503}).Retryable())
	assert.True(t, (&APIError{}).Retryable())
	assert.False(t, (&APIError{StatusCode: 400}).Retryable())
}

func TestGeminiError(t *testing.T) {
	wrapped := fmt.Errorf("generate: %w", &googleapi.Error{Code: 429, Message: "quota"})
	apiErr := geminiError(wrapped)
	assert.Equal(t, 429, apiErr.StatusCode)
	assert.True(t, apiErr.Retryable())
	assert.Contains(t, apiErr.Error(), "quota")

	apiErr = geminiError(context.Canceled)
	assert.False(t, apiErr.Retryable())
	assert.True(t, errors.Is(apiErr, context.Canceled))
}

func TestExtractTextFromResponse(t *testing.T) {
	_, err := extractTextFromResponse(nil)
	assert.Error(t, err)

	_, err = extractTextFromResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{}}},
	})
	assert.Error(t, err)

	text, err := extractTextFromResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("a"), genai.Text("b")}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ab", text)
}

func TestPurpose(t *testing.T) {
	assert.Equal(t, "general", PurposeFrom(context.Background()))
	assert.Equal(t, "explanation", PurposeFrom(WithPurpose(context.Background(), "explanation")))
}
