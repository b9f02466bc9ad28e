// Package types provides type definitions for structured data used throughout the recruitment pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// NoExplanation is reported for candidates that never received an explanation
const NoExplanation = "Análise não disponível."

// QualityReport is the data-quality assessment of one candidate's extraction
type QualityReport struct {
	Valid          bool     `json:"valid"`
	Confidence     float64  `json:"confidence"`
	Errors         []string `json:"errors"`
	Warnings       []string `json:"warnings"`
	LLMSuggestions []string `json:"llm_suggestions"`
	Anomalies      []string `json:"anomalies,omitempty"`

	// Filled only when the candidate was checked against a job
	RequirementCoverage *float64 `json:"requirement_coverage,omitempty"`
	MissingRequirements []string `json:"missing_requirements,omitempty"`
}

// InputFailure records an input file that could not be turned into a candidate
type InputFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// AnalysisResult is the outcome of one analysis run. Candidates are in
// ranked order (best first).
type AnalysisResult struct {
	ID                uuid.UUID           `json:"id"`
	Job               *JobProfile         `json:"job"`
	Candidates        []*Candidate        `json:"candidates"`
	Failures          []InputFailure      `json:"failures,omitempty"`
	Summary           RequirementsSummary `json:"requirements_summary"`
	LLMProvider       string              `json:"llm_provider,omitempty"`
	AnalyzedAt        time.Time           `json:"analyzed_at"`
	ProcessingSeconds float64             `json:"processing_seconds"`
}

// Top returns the first n ranked candidates
func (r *AnalysisResult) Top(n int) []*Candidate {
	if n > len(r.Candidates) {
		n = len(r.Candidates)
	}
	return r.Candidates[:n]
}

// CandidateResult is the per-candidate payload handed to API clients
type CandidateResult struct {
	CandidateName   string         `json:"candidate_name"`
	HardSkills      []string       `json:"hard_skills"`
	SoftSkills      []string       `json:"soft_skills"`
	MatchScore      float64        `json:"match_score"`
	Explanation     string         `json:"explanation"`
	RankingPosition int            `json:"ranking_position"`
	ScoreBreakdown  ScoreBreakdown `json:"score_breakdown"`
	ExperienceYears float64        `json:"experience_years"`
	Seniority       string         `json:"seniority,omitempty"`
	Quality         *QualityReport `json:"quality,omitempty"`
}

// Results converts the ranked candidates into API results with 1-based positions
func (r *AnalysisResult) Results() []CandidateResult {
	out := make([]CandidateResult, 0, len(r.Candidates))
	for i, c := range r.Candidates {
		explanation := c.Explanation
		if explanation == "" {
			explanation = NoExplanation
		}
		out = append(out, CandidateResult{
			CandidateName:   c.Name,
			HardSkills:      c.SkillNames(CategoryHard),
			SoftSkills:      c.SkillNames(CategorySoft),
			MatchScore:      Round(c.Score, 2),
			Explanation:     explanation,
			RankingPosition: i + 1,
			ScoreBreakdown:  c.ScoreBreakdown,
			ExperienceYears: c.ExperienceYears,
			Seniority:       c.Seniority,
			Quality:         c.Quality,
		})
	}
	return out
}
