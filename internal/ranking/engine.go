// Package ranking scores candidates against a job and orders them by score.
package ranking

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/theduardomaciel/projeto-ia/internal/config"
	"github.com/theduardomaciel/projeto-ia/internal/observability"
	"github.com/theduardomaciel/projeto-ia/internal/parsing"
	"github.com/theduardomaciel/projeto-ia/internal/skills"
	"github.com/theduardomaciel/projeto-ia/internal/types"
)

// Experience bonuses
const (
	seniorBonus    = 2.0
	midBonus       = 1.0
	relevanceBonus = 1.0
)

// Education adjustments
const (
	relevantAreaBonus = 2.0
	incompletePenalty = 2.0
)

// educationBase maps the highest degree level to its base score
var educationBase = map[int]float64{
	6: 10,
	5: 9,
	4: 8,
	3: 7,
	2: 5,
	1: 3,
	0: 1,
}

// developerTerms are role words that earn the relevance bonus when the job
// text mentions them too
var developerTerms = compileTerms(
	"desenvolvedor", "desenvolvedora", "developer",
	"engenheiro", "engenheira", "engineer",
	"programador", "programadora", "programmer",
	"analista", "analyst",
	"arquiteto", "arquiteta", "architect",
	"software", "backend", "back-end", "frontend", "front-end",
	"full stack", "fullstack", "devops", "dados", "data",
)

func compileTerms(words ...string) []*skills.Term {
	out := make([]*skills.Term, len(words))
	for i, w := range words {
		out[i] = skills.MustCompileTerm(w)
	}
	return out
}

// Engine computes candidate scores from the configured weights. It holds no
// per-analysis state and is safe for concurrent use.
type Engine struct {
	weights *config.WeightsConfig
	events  *observability.EventLog
	logger  *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithEventLog records one "candidate_scored" event per scored candidate
func WithEventLog(events *observability.EventLog) Option {
	return func(e *Engine) { e.events = events }
}

// WithLogger sets the logger used for debug output
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates a scoring engine. A nil weights config uses the defaults.
func NewEngine(weights *config.WeightsConfig, opts ...Option) *Engine {
	if weights == nil {
		weights = config.DefaultWeights()
	}
	e := &Engine{weights: weights, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// categoryWeights returns the job's weights when it carries any, otherwise
// the configured ones
func (e *Engine) categoryWeights(job *types.JobProfile) types.CategoryWeights {
	if job != nil && job.Weights != (types.CategoryWeights{}) {
		return job.Weights
	}
	return e.weights.CategoryWeights
}

// ScoreCategorySkills averages weight × confidence over the skills and
// scales the average by the category weight. Averaging keeps long skill
// lists from inflating the score. The detail map holds each skill's
// weighted value rounded to 2 decimals.
func (e *Engine) ScoreCategorySkills(list []types.Skill, categoryWeight float64) (float64, map[string]float64) {
	detail := make(map[string]float64, len(list))
	if len(list) == 0 {
		return 0, detail
	}

	var total float64
	for _, s := range list {
		v := e.weights.SkillWeight(s.Name) * s.Confidence
		detail[s.Key()] = types.Round(v, 2)
		total += v
	}
	return total / float64(len(list)) * categoryWeight, detail
}

// ExperienceCurve maps years of experience onto a 0–10 scale
func ExperienceCurve(years float64) float64 {
	switch {
	case years >= 5:
		return 10
	case years >= 3:
		return 6 + (years - 3)
	case years >= 1:
		return 4 + (years - 1)
	case years > 0:
		return 4 * years
	default:
		return 0
	}
}

// ScoreExperience scores years, seniority and role relevance, scaled by the
// experience weight
func (e *Engine) ScoreExperience(c *types.Candidate, job *types.JobProfile, weight float64) float64 {
	score := ExperienceCurve(c.ExperienceYears)

	switch c.Seniority {
	case types.SenioritySenior:
		score += seniorBonus
	case types.SeniorityMid:
		score += midBonus
	}

	if job != nil {
		jobText := job.RawText
		if jobText == "" {
			jobText = job.Description
		}
		for _, exp := range c.Experiences {
			if roleMatchesJob(exp.Role, jobText) {
				score += relevanceBonus
			}
		}
	}

	return score * weight
}

func roleMatchesJob(role, jobText string) bool {
	for _, t := range developerTerms {
		if t.Match(role) && t.Match(jobText) {
			return true
		}
	}
	return false
}

// ScoreEducation scores the highest degree, with a bonus for technology
// areas and a penalty when every entry is incomplete, scaled by the
// education weight. A candidate without education entries scores 0.
func (e *Engine) ScoreEducation(c *types.Candidate, weight float64) float64 {
	if len(c.Education) == 0 {
		return 0
	}

	score := educationBase[parsing.HighestDegreeLevel(c.Education)]
	if parsing.HasRelevantDegree(c.Education) {
		score += relevantAreaBonus
	}
	if allIncomplete(c.Education) {
		score -= incompletePenalty
		if score < 0 {
			score = 0
		}
	}
	return score * weight
}

func allIncomplete(edus []types.Education) bool {
	for _, e := range edus {
		if e.Status != types.StatusIncomplete {
			return false
		}
	}
	return len(edus) > 0
}

// ScoreCandidate fills the candidate's score and breakdown. job may be nil,
// in which case the configured weights apply and no relevance bonus is given.
func (e *Engine) ScoreCandidate(c *types.Candidate, job *types.JobProfile) {
	w := e.categoryWeights(job)

	hard, hardDetail := e.ScoreCategorySkills(c.HardSkills, w.HardSkills)
	soft, softDetail := e.ScoreCategorySkills(c.SoftSkills, w.SoftSkills)
	exp := e.ScoreExperience(c, job, w.Experience)
	edu := e.ScoreEducation(c, w.Education)

	// the total is summed from the rounded categories so it always equals
	// the breakdown a reader sees
	c.ScoreBreakdown = types.ScoreBreakdown{
		HardSkills:       types.Round(hard, 2),
		SoftSkills:       types.Round(soft, 2),
		Experience:       types.Round(exp, 2),
		Education:        types.Round(edu, 2),
		HardSkillsDetail: hardDetail,
		SoftSkillsDetail: softDetail,
	}
	c.Score = c.ScoreBreakdown.Total()

	file := "-"
	if c.FilePath != "" {
		file = filepath.Base(c.FilePath)
	}
	e.events.Record("candidate_scored", fmt.Sprintf("name=%s file=%s score=%.2f hard=%.2f soft=%.2f",
		c.Name, file, c.Score, c.ScoreBreakdown.HardSkills, c.ScoreBreakdown.SoftSkills))
	e.logger.Debug("candidate scored",
		slog.String("candidate", c.Name),
		slog.Float64("score", c.Score))
}

// RankCandidates scores every candidate and returns them best first. The
// sort is stable, so equal scores keep their input order. The input slice
// is not reordered.
func (e *Engine) RankCandidates(candidates []*types.Candidate, job *types.JobProfile) []*types.Candidate {
	for _, c := range candidates {
		e.ScoreCandidate(c, job)
	}
	return SortByScore(candidates)
}

// SortByScore returns a copy of candidates ordered by descending score,
// keeping the input order among ties
func SortByScore(candidates []*types.Candidate) []*types.Candidate {
	ranked := make([]*types.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
