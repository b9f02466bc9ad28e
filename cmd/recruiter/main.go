// Package main provides the entry point for the recruiter CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	rootConfigDir string
	rootLogLevel  string
	rootNoLLM     bool
)

var rootCmd = &cobra.Command{
	Use:   "recruiter",
	Short: "Resume screening and candidate ranking",
	Long: `recruiter extracts skills, experience and education from resumes (.txt, .pdf, .docx),
scores each candidate against a job description and ranks them, with an explanation per candidate.

Configuration is read from the environment (and a .env file when present).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigDir, "config-dir", "", "Directory holding skills and weights files (overrides CONFIG_DIR)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&rootNoLLM, "no-llm", false, "Run without any LLM provider")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
