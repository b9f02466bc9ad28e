package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/theduardomaciel/projeto-ia/internal/config"
	"github.com/theduardomaciel/projeto-ia/internal/db"
	"github.com/theduardomaciel/projeto-ia/internal/llm"
	"github.com/theduardomaciel/projeto-ia/internal/observability"
	"github.com/theduardomaciel/projeto-ia/internal/pipeline"
)

// eventLogName is the loader and scoring event log under LOG_DIR
const eventLogName = "pipeline_events.log"

// app holds what every command needs: configuration, logging, the optional
// LLM client and the analyzer built on top of them
type app struct {
	env      config.Env
	logger   *slog.Logger
	domain   *config.Domain
	events   *observability.EventLog
	llm      *llm.LoggingClient
	llmLog   *llm.InteractionLogger
	analyzer *pipeline.Analyzer
}

type appOptions struct {
	withLLM bool
}

// newApp loads configuration and wires the analyzer. The caller must Close it.
func newApp(ctx context.Context, cmd *cobra.Command, opts appOptions) (*app, error) {
	env, err := loadEnv()
	if err != nil {
		return nil, err
	}

	a := &app{env: env}
	a.logger = observability.SetupLogger(env, cmd.ErrOrStderr())
	slog.SetDefault(a.logger)

	a.domain, err = config.LoadDomain(env.SkillsPath(), env.WeightsPath())
	if err != nil {
		return nil, err
	}

	if a.events, err = observability.OpenEventLog(filepath.Join(env.LogDir, eventLogName)); err != nil {
		a.logger.Warn("event log disabled", "error", err)
		a.events = nil
	}

	var client llm.Client
	if opts.withLLM && !env.LLMDisabled {
		if a.llmLog, err = llm.OpenSessionLog(env.LogDir, time.Now()); err != nil {
			a.logger.Warn("LLM session log disabled", "error", err)
		}
		a.llm, err = llm.NewFromEnv(ctx, env, a.llmLog)
		switch {
		case err == nil:
			client = a.llm
		case errors.Is(err, llm.ErrNoProvider):
			a.logger.Info("running without LLM", "reason", err)
		default:
			a.Close()
			return nil, fmt.Errorf("failed to initialize LLM: %w", err)
		}
	}

	a.analyzer, err = pipeline.NewAnalyzer(pipeline.Deps{
		Domain:      a.domain,
		LLM:         client,
		Events:      a.events,
		Logger:      a.logger,
		Concurrency: env.AnalysisConcurrency,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// loadEnv parses the environment and applies the root flag overrides
func loadEnv() (config.Env, error) {
	env, err := config.Load()
	if err != nil {
		return config.Env{}, err
	}
	if rootConfigDir != "" {
		env.ConfigDir = rootConfigDir
	}
	if rootLogLevel != "" {
		env.LogLevel = rootLogLevel
	}
	if rootNoLLM {
		env.LLMDisabled = true
	}
	return env, nil
}

// openDB connects to DATABASE_URL when set. It returns nil without error
// when persistence is not configured.
func (a *app) openDB(ctx context.Context, url string) (*db.DB, error) {
	if url == "" {
		url = a.env.DatabaseURL
	}
	if url == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	database, err := db.Connect(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// Close flushes the logs and releases the LLM client
func (a *app) Close() {
	if a.llm != nil {
		stats := a.llm.Stats()
		if stats.TotalCalls > 0 {
			a.logger.Info("LLM session",
				"calls", stats.TotalCalls,
				"failed", stats.FailedCalls,
				"tokens", stats.TotalTokens,
				"avg_latency", stats.AvgLatency,
				"log", a.llmLog.Path())
		}
		_ = a.llm.Close()
	} else if a.llmLog != nil {
		_ = a.llmLog.Close()
	}
	if a.events != nil {
		_ = a.events.Close()
	}
}
