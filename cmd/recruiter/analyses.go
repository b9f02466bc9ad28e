package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/theduardomaciel/projeto-ia/internal/db"
)

var (
	analysesDatabaseURL string
	analysesLimit       int
)

var analysesCmd = &cobra.Command{
	Use:   "analyses [id]",
	Short: "List stored analyses, or show one by ID",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyses,
}

func init() {
	analysesCmd.Flags().StringVar(&analysesDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	analysesCmd.Flags().IntVar(&analysesLimit, "limit", db.DefaultListLimit, "Maximum number of analyses to list")
	rootCmd.AddCommand(analysesCmd)
}

func runAnalyses(cmd *cobra.Command, args []string) error {
	url := analysesDatabaseURL
	if url == "" {
		env, err := loadEnv()
		if err != nil {
			return err
		}
		url = env.DatabaseURL
	}
	if url == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Connect(ctx, url)
	if err != nil {
		return err
	}
	defer database.Close()

	if len(args) == 1 {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid analysis ID: %w", err)
		}
		stored, err := database.GetAnalysis(ctx, id)
		if err != nil {
			return err
		}
		if stored == nil {
			return fmt.Errorf("analysis not found: %s", id)
		}
		return printJSON(cmd, stored)
	}

	analyses, err := database.ListAnalyses(ctx, analysesLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, a := range analyses {
		fmt.Fprintf(out, "%s  %s  %-40s %3d candidates\n",
			a.ID, a.AnalyzedAt.Local().Format("2006-01-02 15:04"), a.JobTitle, a.CandidateCount)
	}
	if len(analyses) == 0 {
		fmt.Fprintln(out, "No analyses stored")
	}
	return nil
}
