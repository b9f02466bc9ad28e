package ranking

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theduardomaciel/projeto-ia/internal/config"
	"github.com/theduardomaciel/projeto-ia/internal/observability"
	"github.com/theduardomaciel/projeto-ia/internal/types"
)

func hardSkill(name string, confidence float64) types.Skill {
	return types.Skill{Name: name, Category: types.CategoryHard, Confidence: confidence, Source: types.SourceDictionary}
}

func TestScoreCategorySkills_SinglePython(t *testing.T) {
	e := NewEngine(config.DefaultWeights())

	score, detail := e.ScoreCategorySkills([]types.Skill{hardSkill("python", 1.0)}, 0.6)

	assert.InDelta(t, 3.0, score, 1e-9)
	assert.Equal(t, map[string]float64{"python": 5.0}, detail)
}

func TestScoreCategorySkills_AveragesBySkillCount(t *testing.T) {
	weights := config.DefaultWeights()
	weights.SkillWeights["python"] = 8.0
	e := NewEngine(weights)

	score, detail := e.ScoreCategorySkills([]types.Skill{
		hardSkill("Python", 0.9),
		hardSkill("cobol", 0.85),
	}, 0.6)

	// (8*0.9 + 5*0.85) / 2 * 0.6
	assert.InDelta(t, 3.435, score, 1e-9)
	assert.Equal(t, 7.2, detail["python"])
	assert.Equal(t, 4.25, detail["cobol"])
}

func TestScoreCategorySkills_Empty(t *testing.T) {
	score, detail := NewEngine(nil).ScoreCategorySkills(nil, 0.6)
	assert.Equal(t, 0.0, score)
	assert.Empty(t, detail)
}

func TestExperienceCurve(t *testing.T) {
	tests := []struct {
		years float64
		want  float64
	}{
		{0, 0},
		{0.5, 2},
		{1, 4},
		{2, 5},
		{3, 6},
		{4.5, 7.5},
		{5, 10},
		{12, 10},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ExperienceCurve(tt.years), 1e-9, "years=%v", tt.years)
	}
}

func TestScoreExperience(t *testing.T) {
	e := NewEngine(nil)
	job := types.NewJobProfile("Dev", "Procuramos Desenvolvedor Backend", "Procuramos Desenvolvedor Backend")

	c := types.NewCandidate("A", "", "")
	c.ExperienceYears = 4
	c.Seniority = types.SeniorityMid
	c.Experiences = []types.Experience{
		{Role: "Desenvolvedora Backend"},
		{Role: "Analista de Suporte"},
		{Role: "Desenvolvedor Java"},
	}

	// curve 7 + mid 1 + two relevant roles ("backend", "desenvolvedor")
	assert.InDelta(t, 10*0.15, e.ScoreExperience(c, job, 0.15), 1e-9)
	// no job: no relevance bonus
	assert.InDelta(t, 8*0.15, e.ScoreExperience(c, nil, 0.15), 1e-9)
}

func TestScoreEducation(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		name string
		edus []types.Education
		want float64
	}{
		{"none", nil, 0},
		{"relevant bachelor", []types.Education{{Degree: "Bacharelado em Ciência da Computação", Status: types.StatusCompleted}}, 9},
		{"masters other area", []types.Education{{Degree: "Mestrado em Administração", Status: types.StatusCompleted}}, 9},
		{"all incomplete", []types.Education{{Degree: "Bacharelado em Direito", Status: types.StatusIncomplete}}, 5},
		{"one complete", []types.Education{
			{Degree: "Bacharelado em Direito", Status: types.StatusIncomplete},
			{Degree: "Técnico em Eletrônica", Status: types.StatusCompleted},
		}, 7},
		{"floor at zero", []types.Education{{Degree: "Curso livre", Status: types.StatusIncomplete}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := types.NewCandidate("A", "", "")
			c.Education = tt.edus
			assert.InDelta(t, tt.want, e.ScoreEducation(c, 1.0), 1e-9)
		})
	}
}

func TestScoreCandidate(t *testing.T) {
	var events bytes.Buffer
	e := NewEngine(config.DefaultWeights(), WithEventLog(observability.NewEventLog(&events)))

	c := types.NewCandidate("Maria", "", "cv/maria.txt")
	c.HardSkills = []types.Skill{hardSkill("python", 1.0)}
	c.ExperienceYears = 5
	c.Seniority = types.SenioritySenior

	e.ScoreCandidate(c, nil)

	assert.Equal(t, 3.0, c.ScoreBreakdown.HardSkills)
	assert.Equal(t, 0.0, c.ScoreBreakdown.SoftSkills)
	assert.Equal(t, 1.8, c.ScoreBreakdown.Experience)
	assert.Equal(t, 0.0, c.ScoreBreakdown.Education)
	assert.Equal(t, 4.8, c.Score)
	assert.Equal(t, c.Score, c.ScoreBreakdown.Total())
	assert.Contains(t, events.String(), "candidate_scored\tname=Maria file=maria.txt score=4.80")
}

func softSkill(name string, confidence float64) types.Skill {
	return types.Skill{Name: name, Category: types.CategorySoft, Confidence: confidence, Source: types.SourceDictionary}
}

func TestScoreCandidate_TotalMatchesRoundedBreakdown(t *testing.T) {
	tests := []struct {
		name  string
		hard  []types.Skill
		soft  []types.Skill
		years float64
	}{
		{
			name: "synonym confidence on both categories",
			hard: []types.Skill{hardSkill("python", 0.9), hardSkill("javascript", 0.85)},
			soft: []types.Skill{softSkill("comunicação", 0.9), softSkill("liderança", 0.85)},
		},
		{
			name:  "fractional years",
			hard:  []types.Skill{hardSkill("go", 0.85)},
			soft:  []types.Skill{softSkill("empatia", 0.85)},
			years: 1.37,
		},
		{
			name: "three skills",
			hard: []types.Skill{hardSkill("python", 0.9), hardSkill("java", 0.85), hardSkill("sql", 0.85)},
		},
	}

	e := NewEngine(config.DefaultWeights())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := types.NewCandidate("Ana", "", "")
			c.HardSkills = tt.hard
			c.SoftSkills = tt.soft
			c.ExperienceYears = tt.years

			e.ScoreCandidate(c, nil)

			b := c.ScoreBreakdown
			assert.Equal(t, types.Round(b.HardSkills+b.SoftSkills+b.Experience+b.Education, 2), c.Score)
			assert.Equal(t, b.Total(), c.Score)
		})
	}
}

func TestScoreCandidate_UsesJobWeights(t *testing.T) {
	e := NewEngine(nil)
	job := types.NewJobProfile("Dev", "", "")
	job.Weights = types.CategoryWeights{HardSkills: 1.0}

	c := types.NewCandidate("A", "", "")
	c.HardSkills = []types.Skill{hardSkill("python", 1.0)}
	c.ExperienceYears = 10
	c.Seniority = types.SenioritySenior

	e.ScoreCandidate(c, job)
	assert.Equal(t, 5.0, c.Score)
	assert.Equal(t, 0.0, c.ScoreBreakdown.Experience)
}

func TestScoreCandidate_EmptyResume(t *testing.T) {
	c := types.NewCandidate("Vazio", "", "")
	c.Seniority = types.SeniorityJunior

	NewEngine(nil).ScoreCandidate(c, types.NewJobProfile("Dev", "Python", "Python"))

	assert.Equal(t, 0.0, c.Score)
}

func TestRankCandidates_StableDescending(t *testing.T) {
	names := []string{"A", "B", "C", "D"}
	scores := []float64{3.0, 5.0, 5.0, 1.0}

	candidates := make([]*types.Candidate, len(names))
	for i, n := range names {
		candidates[i] = &types.Candidate{Name: n, Score: scores[i]}
	}

	ranked := SortByScore(candidates)

	got := make([]string, len(ranked))
	for i, c := range ranked {
		got[i] = c.Name
	}
	assert.Equal(t, []string{"B", "C", "A", "D"}, got)
	assert.Equal(t, "A", candidates[0].Name, "input order must be preserved")
}

func TestRankCandidates_ScoresEveryCandidate(t *testing.T) {
	e := NewEngine(nil)

	weak := types.NewCandidate("Weak", "", "")
	strong := types.NewCandidate("Strong", "", "")
	strong.HardSkills = []types.Skill{hardSkill("go", 0.9)}
	strong.ExperienceYears = 6
	strong.Seniority = types.SenioritySenior

	ranked := e.RankCandidates([]*types.Candidate{weak, strong}, nil)

	require.Len(t, ranked, 2)
	assert.Equal(t, "Strong", ranked[0].Name)
	assert.Greater(t, ranked[0].Score, 0.0)
	assert.Equal(t, "Weak", ranked[1].Name)
	assert.Equal(t, 0.0, ranked[1].Score)
}
