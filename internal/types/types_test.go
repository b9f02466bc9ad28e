package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkill_EqualIgnoresCaseAndMetadata(t *testing.T) {
	a := Skill{Name: "Python", Category: CategoryHard, Confidence: 0.9, Source: SourceDictionary}
	b := Skill{Name: "python", Category: CategorySoft, Confidence: 0.1, Source: SourceLLM}
	c := Skill{Name: "go", Category: CategoryHard, Confidence: 0.9, Source: SourceDictionary}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "python", a.Key())
}

func TestCandidate_AddSkillDeduplicates(t *testing.T) {
	c := NewCandidate("Ana Souza", "", "")

	assert.True(t, c.AddSkill(Skill{Name: "python", Category: CategoryHard, Confidence: 0.9, Source: SourceDictionary}))
	assert.False(t, c.AddSkill(Skill{Name: "Python", Category: CategoryHard, Confidence: 0.85, Source: SourceSynonym}))
	assert.True(t, c.AddSkill(Skill{Name: "liderança", Category: CategorySoft, Confidence: 0.9, Source: SourceDictionary}))

	assert.Equal(t, []string{"python"}, c.SkillNames(CategoryHard))
	assert.Equal(t, []string{"liderança"}, c.SkillNames(CategorySoft))
	assert.True(t, c.HasSkill("PYTHON"))
	assert.False(t, c.HasSkill("java"))
}

func TestScoreBreakdown_Total(t *testing.T) {
	b := ScoreBreakdown{HardSkills: 3.0, SoftSkills: 0.333, Experience: 1.5, Education: 0.45}
	assert.Equal(t, 5.28, b.Total())
	assert.Len(t, b.Categories(), 4)
}

func TestRound(t *testing.T) {
	tests := []struct {
		in     float64
		places int
		want   float64
	}{
		{1.005, 1, 1.0},
		{2.345, 1, 2.3},
		{3.14159, 2, 3.14},
		{0, 2, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Round(tt.in, tt.places), 1e-9)
	}
}

func TestEducation_Validate(t *testing.T) {
	valid := Education{Degree: "Bacharelado", CompletionYear: "2019", Status: StatusCompleted}
	require.NoError(t, valid.Validate())

	noDegree := Education{Status: StatusCompleted}
	assert.Error(t, noDegree.Validate())

	badYear := Education{Degree: "MBA", CompletionYear: "19", Status: StatusCompleted}
	assert.Error(t, badYear.Validate())

	badStatus := Education{Degree: "MBA", Status: "unknown"}
	assert.Error(t, badStatus.Validate())
}

func TestExperience_Validate(t *testing.T) {
	assert.NoError(t, Experience{Role: "Desenvolvedor"}.Validate())
	assert.Error(t, Experience{Company: "ACME"}.Validate())
}

func TestStructuredJob_Render(t *testing.T) {
	job := StructuredJob{
		Position:       "Desenvolvedor Backend",
		Area:           "Tecnologia",
		Seniority:      "Pleno",
		HardSkills:     []string{"Python", "Docker"},
		SoftSkills:     []string{"Comunicação"},
		AdditionalInfo: "Kubernetes é um plus",
	}
	require.NoError(t, job.Validate())

	text := job.Render()
	assert.True(t, strings.HasPrefix(text, "Vaga: Desenvolvedor Backend\n"))
	assert.Contains(t, text, "Requisitos Obrigatórios:\n- Python\n- Docker")
	assert.Contains(t, text, "Requisitos Desejáveis:\n- Comunicação")
	assert.Contains(t, text, "Diferenciais:\nKubernetes é um plus")
}

func TestStructuredJob_ValidateRequiresHardSkills(t *testing.T) {
	job := StructuredJob{Position: "Dev"}
	assert.Error(t, job.Validate())
}

func TestAnalysisResult_Results(t *testing.T) {
	a := NewCandidate("Ana", "", "")
	a.Score = 7.456
	a.Explanation = "Boa candidata"
	a.AddSkill(Skill{Name: "python", Category: CategoryHard, Confidence: 0.9, Source: SourceDictionary})
	b := NewCandidate("Bruno", "", "")

	r := &AnalysisResult{Candidates: []*Candidate{a, b}}
	results := r.Results()

	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].RankingPosition)
	assert.Equal(t, 7.46, results[0].MatchScore)
	assert.Equal(t, []string{"python"}, results[0].HardSkills)
	assert.Equal(t, 2, results[1].RankingPosition)
	assert.Equal(t, NoExplanation, results[1].Explanation)
	assert.Len(t, r.Top(5), 2)
	assert.Len(t, r.Top(1), 1)
}
