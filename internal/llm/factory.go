package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/theduardomaciel/projeto-ia/internal/config"
)

// ErrNoProvider is returned when no provider has an API key configured
var ErrNoProvider = errors.New("no LLM provider configured")

// NewClient creates the client for cfg.Provider
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	case ProviderGroq, ProviderOpenRouter:
		return NewOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}

// providerOrder returns preferred first, followed by the remaining providers
func providerOrder(preferred string) []Provider {
	order := make([]Provider, 0, len(Providers))
	if p, ok := ParseProvider(preferred); ok {
		order = append(order, p)
	} else if preferred != "" {
		slog.Warn("unknown default LLM provider, falling back", slog.String("provider", preferred))
	}
	for _, p := range Providers {
		if len(order) > 0 && order[0] == p {
			continue
		}
		order = append(order, p)
	}
	return order
}

// NewFromEnv creates a logging client for the first provider with an API key,
// trying DEFAULT_LLM_PROVIDER first. It returns ErrNoProvider when the LLM is
// disabled or no key is set; callers then run without LLM features.
func NewFromEnv(ctx context.Context, env config.Env, log *InteractionLogger) (*LoggingClient, error) {
	if env.LLMDisabled {
		return nil, ErrNoProvider
	}

	var errs []error
	for _, p := range providerOrder(env.DefaultLLMProvider) {
		cfg := ConfigFromEnv(env, p)
		if cfg.APIKey == "" {
			continue
		}
		client, err := NewClient(ctx, cfg)
		if err != nil {
			slog.Warn("failed to initialize LLM provider",
				slog.String("provider", string(p)),
				slog.Any("error", err))
			errs = append(errs, err)
			continue
		}
		slog.Info("LLM provider ready",
			slog.String("provider", string(p)),
			slog.String("model", cfg.Model))
		return NewLoggingClient(client, log), nil
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoProvider, errors.Join(errs...))
	}
	return nil, ErrNoProvider
}
