package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theduardomaciel/projeto-ia/internal/server"
)

var (
	servePort        int
	serveDatabaseURL string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the analysis over REST:

  POST /api/analyze          multipart upload of resumes plus a job description
  POST /api/analyze/stream   same, reporting progress as Server-Sent Events
  GET  /api/skills           skills recognized by the dictionary
  GET  /api/analyses[/{id}]  stored analyses (requires DATABASE_URL)
  GET  /health, /metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cmd, appOptions{withLLM: true})
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := server.ConfigFromEnv(a.env)
	if servePort != 0 {
		cfg.Port = servePort
	}

	deps := server.Deps{
		Analyzer:    a.analyzer,
		Skills:      a.domain.Skills,
		LLMProvider: a.analyzer.Provider(),
		Logger:      a.logger,
	}

	database, err := a.openDB(ctx, serveDatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if database != nil {
		defer database.Close()
		deps.Store = database
	}

	srv, err := server.New(cfg, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}
