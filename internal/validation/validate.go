package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/theduardomaciel/projeto-ia/internal/parsing"
	"github.com/theduardomaciel/projeto-ia/internal/types"
)

// Messages that callers match on
const (
	MsgTextTooShort = "Currículo muito curto"
	MsgNoSkills     = "Nenhuma skill identificada"
)

// criticalErrors force the LLM fallback whenever they are reported
var criticalErrors = []string{MsgNoSkills, MsgTextTooShort}

// Limits are the thresholds a resume is checked against
type Limits struct {
	MinTextLength int
	MaxTextLength int
	MinSkills     int
}

// DefaultLimits returns the standard thresholds
func DefaultLimits() Limits {
	return Limits{MinTextLength: 100, MaxTextLength: 50000, MinSkills: 2}
}

// Confidence below which a report is not valid, and below which the LLM
// fallback is recommended
const (
	validConfidence    = 0.3
	fallbackConfidence = 0.5
	fallbackSuggestion = 2
)

var (
	emailPattern = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.]+`)
	phonePattern = regexp.MustCompile(`\(?\d{2}\)?\s?9?\d{4}[-\s]?\d{4}`)
)

// Validator scores how much the extraction of a candidate can be trusted
type Validator struct {
	Limits Limits
}

// NewValidator creates a validator with the default limits
func NewValidator() *Validator {
	return &Validator{Limits: DefaultLimits()}
}

// ValidateCandidate checks text size, name, skills, experiences, education
// and contact information. Every finding multiplies the confidence by a
// factor below 1. The report is valid when there are no errors and the
// confidence stays above 0.3.
func (v *Validator) ValidateCandidate(c *types.Candidate) *types.QualityReport {
	r := &types.QualityReport{
		Confidence:     1.0,
		Errors:         []string{},
		Warnings:       []string{},
		LLMSuggestions: []string{},
	}

	length := utf8.RuneCountInString(c.RawText)
	switch {
	case length < v.Limits.MinTextLength:
		r.Errors = append(r.Errors, fmt.Sprintf("%s (%d chars)", MsgTextTooShort, length))
		r.Confidence *= 0.3
	case length > v.Limits.MaxTextLength:
		r.Warnings = append(r.Warnings, fmt.Sprintf("Currículo muito longo (%d chars)", length))
		r.Confidence *= 0.9
	}

	if c.Name == "" || strings.HasPrefix(c.Name, "Candidato") {
		r.Warnings = append(r.Warnings, "Nome do candidato não identificado (usando fallback)")
		r.Confidence *= 0.95
	}

	total := len(c.HardSkills) + len(c.SoftSkills)
	switch {
	case total == 0:
		r.Errors = append(r.Errors, MsgNoSkills)
		r.LLMSuggestions = append(r.LLMSuggestions, "Considerar usar LLM para extração de skills")
		r.Confidence *= 0.2
	case total < v.Limits.MinSkills:
		r.Errors = append(r.Errors, fmt.Sprintf("Poucas skills identificadas (%d)", total))
		r.LLMSuggestions = append(r.LLMSuggestions, "Considerar usar LLM para extração de skills")
		r.Confidence *= 0.5
	}

	r.Confidence *= checkExperiences(c.Experiences, r)
	r.Confidence *= checkEducation(c.Education, r)

	if !hasContact(c.RawText) {
		r.Warnings = append(r.Warnings, "Informações de contato não encontradas")
		r.Confidence *= 0.95
	}

	if err := Validate(c); err != nil {
		r.Warnings = append(r.Warnings, "Dados extraídos inconsistentes: "+err.Error())
	}

	r.Anomalies = DetectAnomalies(c)
	r.Confidence = types.Round(r.Confidence, 2)
	r.Valid = len(r.Errors) == 0 && r.Confidence > validConfidence
	return r
}

func checkExperiences(exps []types.Experience, r *types.QualityReport) float64 {
	if len(exps) == 0 {
		r.Warnings = append(r.Warnings, "Nenhuma experiência profissional identificada")
		r.LLMSuggestions = append(r.LLMSuggestions, "Verificar se seção de experiência está presente")
		return 0.8
	}

	factor := 1.0
	incomplete := 0
	roleRunes := 0
	for _, e := range exps {
		if e.Role == "" {
			incomplete++
		}
		if e.Company == "" && e.Duration == "" {
			incomplete++
		}
		roleRunes += utf8.RuneCountInString(e.Role)
	}

	if float64(incomplete) > float64(len(exps))/2 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%d experiências com dados incompletos", incomplete))
		factor = 0.9
	}
	if float64(roleRunes)/float64(len(exps)) < 10 {
		r.Warnings = append(r.Warnings, "Cargos identificados são muito curtos")
		r.LLMSuggestions = append(r.LLMSuggestions, "Considerar usar LLM para melhor extração")
		factor *= 0.9
	}
	return factor
}

func checkEducation(edus []types.Education, r *types.QualityReport) float64 {
	if len(edus) == 0 {
		r.Warnings = append(r.Warnings, "Nenhuma formação acadêmica identificada")
		r.LLMSuggestions = append(r.LLMSuggestions, "Verificar se seção de formação está presente")
		return 0.85
	}

	incomplete := 0
	for _, e := range edus {
		if e.Degree == "" {
			incomplete++
		}
		if utf8.RuneCountInString(e.Degree) < 5 {
			incomplete++
		}
	}
	if incomplete > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%d formações com dados incompletos", incomplete))
		return 0.92
	}
	return 1.0
}

func hasContact(text string) bool {
	return emailPattern.MatchString(text) || phonePattern.MatchString(text)
}

// Validate runs struct validation over every extracted entry
func Validate(c *types.Candidate) error {
	for _, s := range c.HardSkills {
		if err := s.Validate(); err != nil {
			return &Error{Message: fmt.Sprintf("hard skill %q", s.Name), Cause: err}
		}
	}
	for _, s := range c.SoftSkills {
		if err := s.Validate(); err != nil {
			return &Error{Message: fmt.Sprintf("soft skill %q", s.Name), Cause: err}
		}
	}
	for i, e := range c.Experiences {
		if err := e.Validate(); err != nil {
			return &Error{Message: fmt.Sprintf("experience %d", i+1), Cause: err}
		}
	}
	for i, e := range c.Education {
		if err := e.Validate(); err != nil {
			return &Error{Message: fmt.Sprintf("education %d", i+1), Cause: err}
		}
	}
	return nil
}

// ShouldUseLLMFallback reports whether the extraction is weak enough to be
// worth retrying with the LLM
func ShouldUseLLMFallback(r *types.QualityReport) bool {
	if r == nil {
		return false
	}
	if r.Confidence < fallbackConfidence {
		return true
	}
	for _, e := range r.Errors {
		for _, critical := range criticalErrors {
			if strings.HasPrefix(e, critical) {
				return true
			}
		}
	}

	llmHints := 0
	for _, s := range r.LLMSuggestions {
		if strings.Contains(strings.ToLower(s), "llm") {
			llmHints++
		}
	}
	return llmHints >= fallbackSuggestion
}

// DetectAnomalies flags combinations of extracted data that are unlikely
// to be right
func DetectAnomalies(c *types.Candidate) []string {
	var anomalies []string

	seen := make(map[string]bool)
	for _, s := range append(append([]types.Skill{}, c.HardSkills...), c.SoftSkills...) {
		if seen[s.Key()] {
			anomalies = append(anomalies, "Skills duplicadas detectadas")
			break
		}
		seen[s.Key()] = true
	}

	if len(c.Experiences) > 5 && len(c.HardSkills) < 3 {
		anomalies = append(anomalies, "Muita experiência mas poucas skills técnicas")
	}

	if len(c.Experiences) == 0 && parsing.HasAcademicPostgraduate(c.Education) {
		anomalies = append(anomalies, "Formação avançada mas sem experiência registrada")
	}
	return anomalies
}

// SkillRelevance is how well a candidate's skills cover a job's requirements
type SkillRelevance struct {
	Matched  []string `json:"matched"`
	Missing  []string `json:"missing"`
	Coverage float64  `json:"coverage"`
}

// neutralCoverage is reported when the job names no requirements
const neutralCoverage = 0.5

// CheckSkillRelevance matches the job's distinct requirement skills against
// the candidate's skills. A requirement counts as matched when some
// candidate skill name contains it.
func CheckSkillRelevance(c *types.Candidate, job *types.JobProfile) SkillRelevance {
	rel := SkillRelevance{Matched: []string{}, Missing: []string{}}
	if job == nil || len(job.Requirements) == 0 {
		rel.Coverage = neutralCoverage
		return rel
	}

	names := make([]string, 0, len(c.HardSkills)+len(c.SoftSkills))
	for _, s := range c.HardSkills {
		names = append(names, s.Key())
	}
	for _, s := range c.SoftSkills {
		names = append(names, s.Key())
	}

	seen := make(map[string]bool)
	for _, req := range job.Requirements {
		kw := strings.ToLower(req.Skill)
		if seen[kw] {
			continue
		}
		seen[kw] = true

		if containsAny(names, kw) {
			rel.Matched = append(rel.Matched, kw)
		} else {
			rel.Missing = append(rel.Missing, kw)
		}
	}
	rel.Coverage = types.Round(float64(len(rel.Matched))/float64(len(seen)), 2)
	return rel
}

func containsAny(names []string, kw string) bool {
	for _, n := range names {
		if strings.Contains(n, kw) {
			return true
		}
	}
	return false
}
