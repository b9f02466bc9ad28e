package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/theduardomaciel/projeto-ia/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	gemini := DefaultConfig(ProviderGemini)
	assert.Equal(t, "gemini-2.0-flash-lite", gemini.Model)
	assert.Empty(t, gemini.BaseURL)

	groq := DefaultConfig(ProviderGroq)
	assert.Equal(t, "llama-3.3-70b-versatile", groq.Model)
	assert.Equal(t, "https://api.groq.com/openai/v1", groq.BaseURL)

	openrouter := DefaultConfig(ProviderOpenRouter)
	assert.Equal(t, "deepseek/deepseek-chat-v3-0324:free", openrouter.Model)
	assert.Equal(t, "https://openrouter.ai/api/v1", openrouter.BaseURL)
}

func TestParseProvider(t *testing.T) {
	p, ok := ParseProvider(" Groq ")
	assert.True(t, ok)
	assert.Equal(t, ProviderGroq, p)

	_, ok = ParseProvider("anthropic")
	assert.False(t, ok)
}

func TestConfigFromEnv(t *testing.T) {
	env := config.Env{
		AppEnv:            "test",
		GroqAPIKey:        "gk",
		GroqModel:         "llama-custom",
		GroqBaseURL:       "http://localhost:9999/v1",
		LLMTimeout:        5 * time.Second,
		OpenRouterAPIKey:  "ok",
		OpenRouterBaseURL: "",
	}

	cfg := ConfigFromEnv(env, ProviderGroq)
	assert.Equal(t, "gk", cfg.APIKey)
	assert.Equal(t, "llama-custom", cfg.Model)
	assert.Equal(t, "http://localhost:9999/v1", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	// test env shortens the retry policy
	assert.Equal(t, 2*time.Second, cfg.Retry.MaxElapsedTime)

	or := ConfigFromEnv(env, ProviderOpenRouter)
	assert.Equal(t, "https://openrouter.ai/api/v1", or.BaseURL)
}

func TestProviderConstants(t *testing.T) {
	assert.Equal(t, Provider("gemini"), ProviderGemini)
	assert.Equal(t, Provider("groq"), ProviderGroq)
	assert.Equal(t, Provider("openrouter"), ProviderOpenRouter)
}
