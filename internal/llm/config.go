// Package llm provides the LLM client abstraction used for fallback extraction
// and candidate explanations, with one implementation per provider.
package llm

import (
	"strings"
	"time"

	"github.com/theduardomaciel/projeto-ia/internal/config"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderGroq is Groq's OpenAI-compatible API
	ProviderGroq Provider = "groq"
	// ProviderOpenRouter is OpenRouter's OpenAI-compatible API
	ProviderOpenRouter Provider = "openrouter"
)

// Providers lists every supported provider in fallback order
var Providers = []Provider{ProviderGemini, ProviderGroq, ProviderOpenRouter}

// ParseProvider maps a provider name to a Provider, reporting whether it is known
func ParseProvider(name string) (Provider, bool) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Providers {
		if p == known {
			return p, true
		}
	}
	return "", false
}

// RetryPolicy controls exponential backoff around provider calls
type RetryPolicy struct {
	MaxElapsedTime  time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// DefaultRetryPolicy returns the policy used when none is configured
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxElapsedTime:  30 * time.Second,
		InitialInterval: time.Second,
		MaxInterval:     8 * time.Second,
		Multiplier:      2.0,
	}
}

// Config holds the settings for one provider client
type Config struct {
	Provider Provider
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	Retry    RetryPolicy
}

// DefaultConfig returns the default configuration for a provider
func DefaultConfig(p Provider) Config {
	cfg := Config{
		Provider: p,
		Timeout:  60 * time.Second,
		Retry:    DefaultRetryPolicy(),
	}
	switch p {
	case ProviderGemini:
		cfg.Model = "gemini-2.0-flash-lite"
	case ProviderGroq:
		cfg.Model = "llama-3.3-70b-versatile"
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	case ProviderOpenRouter:
		cfg.Model = "deepseek/deepseek-chat-v3-0324:free"
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	return cfg
}

// ConfigFromEnv builds the configuration of a provider from the process environment
func ConfigFromEnv(env config.Env, p Provider) Config {
	cfg := DefaultConfig(p)
	cfg.APIKey = env.APIKey(string(p))
	if env.LLMTimeout > 0 {
		cfg.Timeout = env.LLMTimeout
	}
	maxElapsed, initial, maxInterval, multiplier := env.BackoffSettings()
	cfg.Retry = RetryPolicy{
		MaxElapsedTime:  maxElapsed,
		InitialInterval: initial,
		MaxInterval:     maxInterval,
		Multiplier:      multiplier,
	}

	switch p {
	case ProviderGemini:
		if env.GeminiModel != "" {
			cfg.Model = env.GeminiModel
		}
	case ProviderGroq:
		if env.GroqModel != "" {
			cfg.Model = env.GroqModel
		}
		if env.GroqBaseURL != "" {
			cfg.BaseURL = env.GroqBaseURL
		}
	case ProviderOpenRouter:
		if env.OpenRouterModel != "" {
			cfg.Model = env.OpenRouterModel
		}
		if env.OpenRouterBaseURL != "" {
			cfg.BaseURL = env.OpenRouterBaseURL
		}
	}
	return cfg
}
