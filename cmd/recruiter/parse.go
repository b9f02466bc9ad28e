package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theduardomaciel/projeto-ia/internal/observability"
)

var parseResumeCmd = &cobra.Command{
	Use:   "parse-resume <file>",
	Short: "Extract skills, experience and education from one resume",
	Long:  "Runs the extraction and quality checks of a single resume without scoring it. The LLM fallback is used only when a provider is configured.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParseResume,
}

var parseJobCmd = &cobra.Command{
	Use:   "parse-job <file>",
	Short: "Extract the requirements of a job description",
	Long:  "Parses a job description file into its title and requirements, with the importance of each skill.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParseJob,
}

var (
	parseResumeJSON bool
	parseJobJSON    bool
)

func init() {
	parseResumeCmd.Flags().BoolVar(&parseResumeJSON, "json", false, "Print the candidate as JSON")
	parseJobCmd.Flags().BoolVar(&parseJobJSON, "json", false, "Print the job profile as JSON")

	rootCmd.AddCommand(parseResumeCmd)
	rootCmd.AddCommand(parseJobCmd)
}

func runParseResume(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cmd, appOptions{withLLM: true})
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.analyzer.ParseResume(ctx, args[0])
	if err != nil {
		return err
	}

	if parseResumeJSON {
		return printJSON(cmd, c)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintCandidate(c)
	return nil
}

func runParseJob(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	job, err := a.analyzer.ParseJobFile(args[0])
	if err != nil {
		return err
	}

	if parseJobJSON {
		return printJSON(cmd, job)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintJobProfile(job)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
