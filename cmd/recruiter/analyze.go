package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/theduardomaciel/projeto-ia/internal/export"
	"github.com/theduardomaciel/projeto-ia/internal/observability"
	"github.com/theduardomaciel/projeto-ia/internal/pipeline"
	"github.com/theduardomaciel/projeto-ia/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume files...]",
	Short: "Rank resumes against a job description",
	Long: `Loads a job description and a set of resumes, extracts skills, experience and education,
scores every candidate and prints the ranking.

Resumes come from --resumes (a directory) and/or the file arguments. Files that cannot be read
are reported and skipped.`,
	RunE: runAnalyze,
}

var (
	analyzeJob         string
	analyzeResumeDir   string
	analyzeExport      string
	analyzeJSON        string
	analyzeTop         int
	analyzeNoExplain   bool
	analyzeVerbose     bool
	analyzeSave        bool
	analyzeDatabaseURL string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeJob, "job", "j", "", "Path to the job description file (required)")
	analyzeCmd.Flags().StringVarP(&analyzeResumeDir, "resumes", "r", "", "Directory of resumes (.txt, .pdf, .docx)")
	analyzeCmd.Flags().StringVarP(&analyzeExport, "export", "e", "", "Write an Excel report to this path")
	analyzeCmd.Flags().StringVar(&analyzeJSON, "json", "", "Write the ranked results as JSON to this path (- for stdout)")
	analyzeCmd.Flags().IntVar(&analyzeTop, "top", 0, "Only print the first N candidates (0 prints all)")
	analyzeCmd.Flags().BoolVar(&analyzeNoExplain, "no-explain", false, "Skip the per-candidate explanations")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print every candidate's extracted data")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Persist the analysis (requires DATABASE_URL or --db-url)")
	analyzeCmd.Flags().StringVar(&analyzeDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	_ = analyzeCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeResumeDir == "" && len(args) == 0 {
		return fmt.Errorf("provide --resumes or at least one resume file")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cmd, appOptions{withLLM: true})
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.analyzer.Analyze(ctx, pipeline.Input{
		JobPath:          analyzeJob,
		ResumeDir:        analyzeResumeDir,
		ResumePaths:      args,
		SkipExplanations: analyzeNoExplain,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeJSON != "-" {
		printAnalysis(out, result)
	}

	if analyzeExport != "" {
		path, err := export.ToExcel(result, analyzeExport)
		if err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
		fmt.Fprintf(out, "\nReport written to %s\n", path)
	}

	if analyzeJSON != "" {
		if err := writeResultsJSON(cmd, result, analyzeJSON); err != nil {
			return err
		}
	}

	if analyzeSave {
		database, err := a.openDB(ctx, analyzeDatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		if database == nil {
			return fmt.Errorf("--save requires DATABASE_URL or --db-url")
		}
		defer database.Close()
		if err := database.SaveAnalysis(ctx, result); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nAnalysis saved: %s\n", result.ID)
	}
	return nil
}

// printAnalysis renders the job, the ranking and the skipped inputs
func printAnalysis(out io.Writer, result *types.AnalysisResult) {
	printer := observability.NewPrinter(out)
	printer.PrintJobProfile(result.Job)

	shown := *result
	if analyzeTop > 0 {
		shown.Candidates = result.Top(analyzeTop)
	}
	printer.PrintRanking(&shown)
	if analyzeVerbose {
		for _, c := range shown.Candidates {
			printer.PrintCandidate(c)
		}
	} else if !analyzeNoExplain {
		for i, c := range shown.Candidates {
			fmt.Fprintf(out, "\n#%d %s\n%s\n", i+1, c.Name, c.Explanation)
		}
	}
	printer.PrintFailures(result.Failures)
}

// writeResultsJSON writes the API view of the ranking
func writeResultsJSON(cmd *cobra.Command, result *types.AnalysisResult, path string) error {
	data, err := json.MarshalIndent(map[string]any{
		"analysis_id": result.ID,
		"job_title":   result.Job.Title,
		"data":        result.Results(),
		"failures":    result.Failures,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if path == "-" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", path)
	return nil
}
