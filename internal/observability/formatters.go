// Package observability provides logging, metrics and formatted CLI output.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/theduardomaciel/projeto-ia/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintJobProfile outputs the job title and its requirements grouped by tier.
func (p *Printer) PrintJobProfile(profile *types.JobProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title: %s\n", profile.Title))
	sb.WriteString(fmt.Sprintf("Requirements: %d\n", len(profile.Requirements)))

	tiers := []struct {
		label      string
		importance types.Importance
	}{
		{"Required", types.ImportanceRequired},
		{"Preferred", types.ImportancePreferred},
		{"Nice-to-have", types.ImportanceNiceToHave},
	}
	for _, tier := range tiers {
		skills := profile.SkillsByImportance(tier.importance)
		if len(skills) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s:\n", tier.label))
		count := min(len(skills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", skills[i]))
		}
		if len(skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(skills)-maxItemsToShow))
		}
	}

	p.printBox("PARSED JOB PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRanking outputs the ranked candidates with their score breakdown.
func (p *Printer) PrintRanking(result *types.AnalysisResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates ranked: %d\n", len(result.Candidates)))
	if len(result.Failures) > 0 {
		sb.WriteString(fmt.Sprintf("Inputs skipped:    %d\n", len(result.Failures)))
	}

	for i, c := range result.Candidates {
		b := c.ScoreBreakdown
		sb.WriteString(fmt.Sprintf("\n#%d  %s  (%.2f)\n", i+1, c.Name, c.Score))
		sb.WriteString(fmt.Sprintf("    hard %.2f | soft %.2f | exp %.2f | edu %.2f\n",
			b.HardSkills, b.SoftSkills, b.Experience, b.Education))
		if names := c.SkillNames(types.CategoryHard); len(names) > 0 {
			sb.WriteString(fmt.Sprintf("    Skills: %s\n", strings.Join(names, ", ")))
		}
		if c.Seniority != "" {
			sb.WriteString(fmt.Sprintf("    %s, %.1f years\n", c.Seniority, c.ExperienceYears))
		}
	}

	p.printBox("CANDIDATE RANKING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidate outputs everything extracted from one resume.
func (p *Printer) PrintCandidate(c *types.Candidate) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:      %s\n", c.Name))
	sb.WriteString(fmt.Sprintf("Seniority: %s (%.1f years)\n", c.Seniority, c.ExperienceYears))

	if len(c.Experiences) > 0 {
		sb.WriteString("\nExperience:\n")
		for _, e := range c.Experiences {
			line := e.Role
			if e.Company != "" {
				line += " @ " + e.Company
			}
			if e.Duration != "" {
				line += " (" + e.Duration + ")"
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", line))
		}
	}

	if len(c.Education) > 0 {
		sb.WriteString("\nEducation:\n")
		for _, e := range c.Education {
			sb.WriteString(fmt.Sprintf("  • %s", e.Degree))
			if e.Institution != "" {
				sb.WriteString(" - " + e.Institution)
			}
			if e.CompletionYear != "" {
				sb.WriteString(" " + e.CompletionYear)
			}
			sb.WriteString(fmt.Sprintf(" [%s]\n", e.Status))
		}
	}

	if names := c.SkillNames(types.CategoryHard); len(names) > 0 {
		sb.WriteString(fmt.Sprintf("\nHard skills: %s\n", strings.Join(names, ", ")))
	}
	if names := c.SkillNames(types.CategorySoft); len(names) > 0 {
		sb.WriteString(fmt.Sprintf("Soft skills: %s\n", strings.Join(names, ", ")))
	}

	if c.Quality != nil {
		sb.WriteString(fmt.Sprintf("\nQuality: confidence %.2f, valid %t\n", c.Quality.Confidence, c.Quality.Valid))
		for _, e := range c.Quality.Errors {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", e))
		}
		if cov := c.Quality.RequirementCoverage; cov != nil {
			sb.WriteString(fmt.Sprintf("Requirement coverage: %.0f%%", *cov*100))
			if len(c.Quality.MissingRequirements) > 0 {
				sb.WriteString(" (missing: " + strings.Join(c.Quality.MissingRequirements, ", ") + ")")
			}
			sb.WriteString("\n")
		}
	}

	p.printBox("PARSED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFailures outputs the inputs that could not be processed.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFailures(failures []types.InputFailure) {
	if len(failures) == 0 {
		return
	}

	var sb strings.Builder
	for i, f := range failures {
		sb.WriteString(fmt.Sprintf("⚠ %s\n  %s", f.Path, f.Error))
		if i < len(failures)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("SKIPPED INPUTS", sb.String())
}
