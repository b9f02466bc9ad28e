package parsing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/theduardomaciel/projeto-ia/internal/llm"
	"github.com/theduardomaciel/projeto-ia/internal/observability"
	"github.com/theduardomaciel/projeto-ia/internal/prompts"
	"github.com/theduardomaciel/projeto-ia/internal/types"
)

const (
	fallbackInputLimit      = 3000
	fallbackTemperature     = 0.1
	experienceFallbackLimit = 800
	educationFallbackLimit  = 500
)

// Fallback asks an LLM for experience and education entries when the
// heuristics find none. Failures are logged and yield no entries.
type Fallback struct {
	Client  llm.Client
	Prompts *prompts.Store
	Events  *observability.EventLog
	Logger  *slog.Logger
}

func (f *Fallback) enabled() bool {
	return f != nil && f.Client != nil && f.Prompts != nil
}

func (f *Fallback) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

func (f *Fallback) experiences(ctx context.Context, c *types.Candidate) []types.Experience {
	if !f.enabled() {
		return nil
	}
	content, err := f.call(ctx, "experience", prompts.ExperienceFallback, c, experienceFallbackLimit)
	if err != nil {
		f.report(c, "experience", err)
		return nil
	}
	exps := ParseExperienceLines(content)
	if len(exps) == 0 && content != "" {
		f.report(c, "experience", &ParseError{Message: "response has no experience records"})
	}
	return exps
}

func (f *Fallback) education(ctx context.Context, c *types.Candidate, now time.Time) []types.Education {
	if !f.enabled() {
		return nil
	}
	content, err := f.call(ctx, "education", prompts.EducationFallback, c, educationFallbackLimit)
	if err != nil {
		f.report(c, "education", err)
		return nil
	}
	edus := ParseEducationLines(content, now)
	if len(edus) == 0 && content != "" {
		f.report(c, "education", &ParseError{Message: "response has no education records"})
	}
	return edus
}

func (f *Fallback) call(ctx context.Context, section, promptID string, c *types.Candidate, maxTokens int) (string, error) {
	text := c.RawText
	if text == "" {
		text = c.NormalizedText
	}
	prompt, err := f.Prompts.Render(promptID, map[string]string{
		"ResumeText": truncateRunes(text, fallbackInputLimit),
	})
	if err != nil {
		return "", &FallbackError{Section: section, Message: "render prompt", Cause: err}
	}

	ctx = llm.WithPurpose(ctx, section+"_fallback")
	resp := f.Client.Call(ctx, prompt, fallbackTemperature, maxTokens)
	if !resp.Success {
		return "", &FallbackError{Section: section, Message: resp.Error}
	}
	// providers sometimes answer 200 with an apology instead of records
	if strings.Contains(strings.ToLower(resp.Content), "error") {
		return "", &FallbackError{Section: section, Message: "response reports an error"}
	}
	return llm.StripCodeFence(resp.Content), nil
}

func (f *Fallback) report(c *types.Candidate, section string, err error) {
	f.logger().Warn("llm fallback failed",
		slog.String("candidate", c.Name),
		slog.String("section", section),
		slog.Any("error", err))
	f.Events.Record(section+"_fallback_error", fmt.Sprintf("candidate=%s error=%v", c.Name, err))
}

// fallbackLines yields the fields of each pipe-delimited record line,
// skipping blanks and # comments
func fallbackLines(content string, minFields int) [][]string {
	var out [][]string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raw := strings.Split(line, "|")
		if len(raw) < minFields {
			continue
		}
		fields := make([]string, len(raw))
		for i, p := range raw {
			p = strings.TrimSpace(p)
			if p == "-" {
				p = ""
			}
			fields[i] = p
		}
		out = append(out, fields)
	}
	return out
}

// ParseExperienceLines parses "CARGO | EMPRESA | PERÍODO | DESCRIÇÃO" lines
func ParseExperienceLines(content string) []types.Experience {
	var out []types.Experience
	for _, f := range fallbackLines(content, 3) {
		if f[0] == "" {
			continue
		}
		exp := types.Experience{Role: f[0], Company: f[1], Duration: f[2]}
		if len(f) > 3 {
			exp.Description = strings.Join(f[3:], " | ")
		}
		out = append(out, exp)
	}
	return out
}

// ParseEducationLines parses "GRAU | INSTITUIÇÃO | ANO | STATUS" lines.
// Years outside the plausible range are dropped.
func ParseEducationLines(content string, now time.Time) []types.Education {
	var out []types.Education
	for _, f := range fallbackLines(content, 2) {
		if f[0] == "" {
			continue
		}
		edu := types.Education{Degree: f[0], Institution: f[1], Status: types.StatusCompleted}
		if len(f) > 2 {
			edu.CompletionYear = sanitizeYear(f[2], now)
		}
		if len(f) > 3 && f[3] != "" {
			edu.Status = ParseStatus(f[3])
		}
		out = append(out, edu)
	}
	return out
}
