package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// OpenAIClient implements Client for providers that expose the OpenAI chat
// completions API (Groq, OpenRouter).
type OpenAIClient struct {
	httpClient *http.Client
	config     Config
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// NewOpenAIClient creates a client for an OpenAI-compatible provider
func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for provider %s", config.Provider)
	}
	return &OpenAIClient{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
	}, nil
}

// Call sends the prompt as a single user message
func (c *OpenAIClient) Call(ctx context.Context, prompt string, temperature float32, maxTokens int) Response {
	start := time.Now()

	body, err := json.Marshal(chatRequest{
		Model:       c.config.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return failure(c.Provider(), c.config.Model, start, fmt.Errorf("marshal chat request: %w", err))
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	var parsed chatResponse

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		req.Header.Set("Content-Type", "application/json")
		if c.config.Provider == ProviderOpenRouter {
			req.Header.Set("HTTP-Referer", "https://github.com/theduardomaciel/projeto-ia")
			req.Header.Set("X-Title", "Recruiter")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(&APIError{Provider: c.Provider(), Cause: err})
			}
			return &APIError{Provider: c.Provider(), Cause: err}
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return &APIError{Provider: c.Provider(), StatusCode: resp.StatusCode, Cause: err}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &APIError{Provider: c.Provider(), StatusCode: resp.StatusCode, Message: snippet(raw)}
			if !apiErr.Retryable() {
				slog.Warn("llm request rejected",
					slog.String("provider", c.Provider()),
					slog.Int("status", resp.StatusCode),
					slog.String("body", apiErr.Message))
				return backoff.Permanent(apiErr)
			}
			return apiErr
		}

		parsed = chatResponse{}
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return backoff.Permanent(&APIError{Provider: c.Provider(), StatusCode: resp.StatusCode, Message: "invalid JSON response", Cause: err})
		}
		return nil
	}

	if err := retry(ctx, c.config.Retry, op); err != nil {
		return failure(c.Provider(), c.config.Model, start, err)
	}
	if len(parsed.Choices) == 0 {
		return failure(c.Provider(), c.config.Model, start, fmt.Errorf("no choices in response"))
	}

	return Response{
		Content:    parsed.Choices[0].Message.Content,
		Provider:   c.Provider(),
		Model:      c.config.Model,
		TokensUsed: parsed.Usage.TotalTokens,
		Latency:    time.Since(start),
		Success:    true,
	}
}

// Provider returns the configured provider name
func (c *OpenAIClient) Provider() string { return string(c.config.Provider) }

// Model returns the configured model
func (c *OpenAIClient) Model() string { return c.config.Model }

// Close is a no-op; the HTTP client holds no resources that need releasing
func (c *OpenAIClient) Close() error { return nil }

func snippet(raw []byte) string {
	const max = 512
	s := strings.TrimSpace(string(raw))
	if len(s) > max {
		s = s[:max]
	}
	return s
}
