package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Response is the outcome of one LLM call. Failures are reported through
// Success and Error rather than a Go error so callers can degrade gracefully.
type Response struct {
	Content    string        `json:"content"`
	Provider   string        `json:"provider"`
	Model      string        `json:"model"`
	TokensUsed int           `json:"tokens_used,omitempty"`
	Latency    time.Duration `json:"latency,omitempty"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
}

// Client is an abstraction over LLM providers
type Client interface {
	// Call sends prompt to the provider. It never panics and never returns a
	// Go error: failures come back as Response{Success: false}.
	Call(ctx context.Context, prompt string, temperature float32, maxTokens int) Response
	// Provider returns the provider name
	Provider() string
	// Model returns the model the client calls
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// APIError represents a failed provider request
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s API error", e.Provider)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the request may succeed if repeated
func (e *APIError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type purposeKey struct{}

// WithPurpose tags the context with the reason for an LLM call, used in logs and metrics
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the purpose stored by WithPurpose, or "general"
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return "general"
}

// failure builds an unsuccessful Response
func failure(provider, model string, start time.Time, err error) Response {
	return Response{
		Provider: provider,
		Model:    model,
		Latency:  time.Since(start),
		Success:  false,
		Error:    err.Error(),
	}
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config Config) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Call generates text content for the prompt
func (c *GeminiClient) Call(ctx context.Context, prompt string, temperature float32, maxTokens int) Response {
	start := time.Now()

	model := c.client.GenerativeModel(c.config.Model)
	model.SetTemperature(temperature)
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	var resp *genai.GenerateContentResponse
	op := func() error {
		var err error
		resp, err = model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			apiErr := geminiError(err)
			if !apiErr.Retryable() {
				return backoff.Permanent(apiErr)
			}
			return apiErr
		}
		return nil
	}
	if err := retry(ctx, c.config.Retry, op); err != nil {
		return failure(c.Provider(), c.config.Model, start, err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return failure(c.Provider(), c.config.Model, start, err)
	}

	out := Response{
		Content:  text,
		Provider: c.Provider(),
		Model:    c.config.Model,
		Latency:  time.Since(start),
		Success:  true,
	}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out
}

// Provider returns "gemini"
func (c *GeminiClient) Provider() string { return string(ProviderGemini) }

// Model returns the configured Gemini model
func (c *GeminiClient) Model() string { return c.config.Model }

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// geminiError converts a Gemini SDK error into an APIError
func geminiError(err error) *APIError {
	apiErr := &APIError{Provider: string(ProviderGemini), Cause: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		apiErr.StatusCode = gerr.Code
		apiErr.Cause = nil
		apiErr.Message = gerr.Message
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// not worth retrying once the caller gave up
		apiErr.StatusCode = http.StatusRequestTimeout
	}
	return apiErr
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
