// Package config provides environment configuration and the loading of the
// skills dictionary and scoring weights.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Env holds the process configuration parsed from environment variables.
type Env struct {
	AppEnv   string `env:"APP_ENV" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Port     int    `env:"PORT" envDefault:"8080"`

	DataDir   string `env:"DATA_DIR" envDefault:"data"`
	ConfigDir string `env:"CONFIG_DIR"` // defaults to <DATA_DIR>/config
	LogDir    string `env:"LOG_DIR" envDefault:"logs"`

	DatabaseURL string `env:"DATABASE_URL"`

	DefaultLLMProvider string        `env:"DEFAULT_LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey       string        `env:"GEMINI_API_KEY"`
	GeminiModel        string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash-lite"`
	GroqAPIKey         string        `env:"GROQ_API_KEY"`
	GroqModel          string        `env:"GROQ_MODEL" envDefault:"llama-3.3-70b-versatile"`
	GroqBaseURL        string        `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	OpenRouterAPIKey   string        `env:"OPENROUTER_API_KEY"`
	OpenRouterModel    string        `env:"OPENROUTER_MODEL" envDefault:"deepseek/deepseek-chat-v3-0324:free"`
	OpenRouterBaseURL  string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	LLMTimeout         time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	LLMDisabled        bool          `env:"LLM_DISABLED" envDefault:"false"`

	// Retry policy for LLM provider calls
	LLMBackoffMaxElapsedTime  time.Duration `env:"LLM_BACKOFF_MAX_ELAPSED_TIME" envDefault:"30s"`
	LLMBackoffInitialInterval time.Duration `env:"LLM_BACKOFF_INITIAL_INTERVAL" envDefault:"1s"`
	LLMBackoffMaxInterval     time.Duration `env:"LLM_BACKOFF_MAX_INTERVAL" envDefault:"8s"`
	LLMBackoffMultiplier      float64       `env:"LLM_BACKOFF_MULTIPLIER" envDefault:"2.0"`

	CORSAllowOrigins    string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin     int           `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`
	MaxUploadMB         int64         `env:"MAX_UPLOAD_MB" envDefault:"10"`
	AnalysisConcurrency int           `env:"ANALYSIS_CONCURRENCY" envDefault:"1"`
	ShutdownTimeout     time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Load parses environment variables into an Env.
func Load() (Env, error) {
	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = filepath.Join(cfg.DataDir, "config")
	}
	if cfg.AnalysisConcurrency < 1 {
		cfg.AnalysisConcurrency = 1
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Env) IsDev() bool { return strings.EqualFold(c.AppEnv, "dev") }

// IsTest reports whether the app is running in test mode.
func (c Env) IsTest() bool { return strings.EqualFold(c.AppEnv, "test") }

// APIKey returns the configured API key for a provider name
func (c Env) APIKey(provider string) string {
	switch strings.ToLower(provider) {
	case "gemini":
		return c.GeminiAPIKey
	case "groq":
		return c.GroqAPIKey
	case "openrouter":
		return c.OpenRouterAPIKey
	default:
		return ""
	}
}

// BackoffSettings returns the retry policy for LLM calls. Test environments
// get short intervals.
func (c Env) BackoffSettings() (maxElapsed, initial, maxInterval time.Duration, multiplier float64) {
	if c.IsTest() {
		return 2 * time.Second, 50 * time.Millisecond, 200 * time.Millisecond, 2.0
	}
	return c.LLMBackoffMaxElapsedTime, c.LLMBackoffInitialInterval, c.LLMBackoffMaxInterval, c.LLMBackoffMultiplier
}

// SkillsPath returns the location of the skills dictionary
func (c Env) SkillsPath() string {
	return resolveVariant(filepath.Join(c.ConfigDir, "skills"))
}

// WeightsPath returns the location of the scoring weights
func (c Env) WeightsPath() string {
	return resolveVariant(filepath.Join(c.ConfigDir, "weights"))
}
