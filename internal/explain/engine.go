// Package explain writes natural-language justifications for candidate scores.
// An LLM writes the text when one is configured; otherwise, or when the
// call fails, a template built from the score breakdown is used.
package explain

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/theduardomaciel/projeto-ia/internal/llm"
	"github.com/theduardomaciel/projeto-ia/internal/prompts"
	"github.com/theduardomaciel/projeto-ia/internal/types"
)

const (
	temperature      = 0.7
	maxTokens        = 2500
	descriptionLimit = 300
	topSkillsLimit   = 5

	// DefaultConcurrency bounds the explanation calls in flight in ExplainAll
	DefaultConcurrency = 4
)

// Hard-skill thresholds of the template explanation
const (
	hardStrong   = 3.0
	hardAdequate = 2.0
)

// Recommendation labels, from best to worst
const (
	LabelStronglyRecommended = "Fortemente recomendado"
	LabelRecommended         = "Recomendado"
	LabelWithReservations    = "Recomendado com ressalvas"
	LabelNotRecommended      = "Não recomendado"
)

const (
	noHardSkills = "Nenhuma hard skill detectada"
	noSoftSkills = "Nenhuma soft skill detectada"
	noTopSkills  = "Nenhuma skill com peso alto detectada"
)

// RecommendationLabel maps a final score to its recommendation
func RecommendationLabel(score float64) string {
	switch {
	case score >= 7:
		return LabelStronglyRecommended
	case score >= 6.5:
		return LabelRecommended
	case score >= 4.5:
		return LabelWithReservations
	default:
		return LabelNotRecommended
	}
}

// Engine produces explanations. A nil client is valid: every explanation
// then comes from the template.
type Engine struct {
	client      llm.Client
	prompts     *prompts.Store
	logger      *slog.Logger
	Concurrency int
}

// NewEngine creates an explanation engine
func NewEngine(client llm.Client, store *prompts.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{client: client, prompts: store, logger: logger, Concurrency: DefaultConcurrency}
}

// Explain stores and returns a justification for the candidate's score.
// position is the 1-based ranking position, or 0 when unknown.
func (e *Engine) Explain(ctx context.Context, c *types.Candidate, job *types.JobProfile, position int) string {
	text, err := e.llmExplanation(ctx, c, job, position)
	if err != nil {
		e.logger.Warn("explanation fell back to template",
			slog.String("candidate", c.Name),
			slog.String("error", err.Error()))
	}
	if text == "" {
		text = Template(c, position)
	}
	c.Explanation = text
	return text
}

func (e *Engine) llmExplanation(ctx context.Context, c *types.Candidate, job *types.JobProfile, position int) (string, error) {
	if e.client == nil || e.prompts == nil {
		return "", nil
	}
	prompt, err := e.prompts.Render(prompts.CandidateExplanation, promptData(c, job, position))
	if err != nil {
		return "", fmt.Errorf("failed to render explanation prompt: %w", err)
	}

	resp := e.client.Call(llm.WithPurpose(ctx, "explanation_"+c.Name), prompt, temperature, maxTokens)
	if !resp.Success {
		return "", fmt.Errorf("llm call failed: %s", resp.Error)
	}
	return strings.TrimSpace(resp.Content), nil
}

// ExplainAll explains every ranked candidate of the result, using its
// position in the ranking. Calls run concurrently up to e.Concurrency.
func (e *Engine) ExplainAll(ctx context.Context, result *types.AnalysisResult) {
	limit := e.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, c := range result.Candidates {
		g.Go(func() error {
			// Explain always stores a text, so a cancelled run still
			// leaves template explanations behind
			e.Explain(gCtx, c, result.Job, i+1)
			return gCtx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		e.logger.Warn("explanations interrupted",
			slog.Int("candidates", len(result.Candidates)),
			slog.String("error", err.Error()))
	}
}

func promptData(c *types.Candidate, job *types.JobProfile, position int) map[string]string {
	title, description := "", ""
	if job != nil {
		title = job.Title
		description = truncate(job.Description, descriptionLimit)
	}
	positionText := "ranking"
	if position > 0 {
		positionText = fmt.Sprintf("%dª posição no ranking", position)
	}
	b := c.ScoreBreakdown

	return map[string]string{
		"JobTitle":        title,
		"JobDescription":  description,
		"CandidateName":   c.Name,
		"Position":        positionText,
		"Score":           fmt.Sprintf("%.1f", c.Score),
		"HardSkills":      skillList(c.HardSkills, noHardSkills),
		"SoftSkills":      skillList(c.SoftSkills, noSoftSkills),
		"HardScore":       fmt.Sprintf("%.1f", b.HardSkills),
		"SoftScore":       fmt.Sprintf("%.1f", b.SoftSkills),
		"ExperienceScore": fmt.Sprintf("%.1f", b.Experience),
		"EducationScore":  fmt.Sprintf("%.1f", b.Education),
		"TopSkills":       TopSkills(b.HardSkillsDetail, topSkillsLimit),
	}
}

// skillList returns the sorted distinct skill names joined by commas
func skillList(list []types.Skill, empty string) string {
	seen := make(map[string]bool, len(list))
	names := make([]string, 0, len(list))
	for _, s := range list {
		if !seen[s.Name] {
			seen[s.Name] = true
			names = append(names, s.Name)
		}
	}
	if len(names) == 0 {
		return empty
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// TopSkills lists the highest-weighted hard skills as "name (x.x pts)",
// ties broken by name
func TopSkills(detail map[string]float64, limit int) string {
	if len(detail) == 0 {
		return noTopSkills
	}
	names := make([]string, 0, len(detail))
	for name := range detail {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if detail[names[i]] != detail[names[j]] {
			return detail[names[i]] > detail[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > limit {
		names = names[:limit]
	}

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s (%.1f pts)", name, detail[name])
	}
	return strings.Join(parts, ", ")
}

// Template builds the explanation from the score breakdown alone
func Template(c *types.Candidate, position int) string {
	hard := c.ScoreBreakdown.HardSkills
	soft := c.ScoreBreakdown.SoftSkills
	hardCount := len(c.HardSkills)
	softCount := len(c.SoftSkills)

	var parts []string
	if position > 0 {
		parts = append(parts, fmt.Sprintf("%s está em %dª posição no ranking e obteve %.1f pontos na análise.", c.Name, position, c.Score))
	} else {
		parts = append(parts, fmt.Sprintf("%s obteve %.1f pontos na análise.", c.Name, c.Score))
	}

	switch {
	case hard > hardStrong:
		parts = append(parts, fmt.Sprintf("Demonstra forte perfil técnico com %d hard skills identificadas (%.1f pts).", hardCount, hard))
	case hard > hardAdequate:
		parts = append(parts, fmt.Sprintf("Perfil técnico adequado com %d hard skills (%.1f pts).", hardCount, hard))
	default:
		parts = append(parts, fmt.Sprintf("Perfil técnico limitado (%d skills, %.1f pts).", hardCount, hard))
	}

	if softCount > 0 {
		parts = append(parts, fmt.Sprintf("Identificadas %d soft skills (%.1f pts).", softCount, soft))
	} else {
		parts = append(parts, "Não foram identificadas soft skills explícitas no currículo.")
	}

	parts = append(parts, fmt.Sprintf("Recomendação: %s para a vaga.", RecommendationLabel(c.Score)))
	return strings.Join(parts, "\n\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
