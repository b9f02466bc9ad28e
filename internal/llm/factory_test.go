package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theduardomaciel/projeto-ia/internal/config"
)

func TestProviderOrder(t *testing.T) {
	assert.Equal(t, []Provider{ProviderGroq, ProviderGemini, ProviderOpenRouter}, providerOrder("groq"))
	assert.Equal(t, []Provider{ProviderGemini, ProviderGroq, ProviderOpenRouter}, providerOrder("gemini"))
	assert.Equal(t, Providers, providerOrder("unknown"))
	assert.Equal(t, Providers, providerOrder(""))
}

func TestNewFromEnv_NoKeys(t *testing.T) {
	_, err := NewFromEnv(context.Background(), config.Env{DefaultLLMProvider: "gemini"}, nil)
	assert.True(t, errors.Is(err, ErrNoProvider))
}

func TestNewFromEnv_Disabled(t *testing.T) {
	env := config.Env{GroqAPIKey: "k", LLMDisabled: true}
	_, err := NewFromEnv(context.Background(), env, nil)
	assert.True(t, errors.Is(err, ErrNoProvider))
}

func TestNewFromEnv_FallsBackToKeyedProvider(t *testing.T) {
	env := config.Env{
		DefaultLLMProvider: "gemini",
		OpenRouterAPIKey:   "or-key",
	}
	client, err := NewFromEnv(context.Background(), env, nil)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "openrouter", client.Provider())
	assert.Equal(t, "deepseek/deepseek-chat-v3-0324:free", client.Model())
}

func TestNewClient_Unsupported(t *testing.T) {
	_, err := NewClient(context.Background(), Config{Provider: "anthropic"})
	assert.Error(t, err)
}
