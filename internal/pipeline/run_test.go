package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theduardomaciel/projeto-ia/internal/config"
	"github.com/theduardomaciel/projeto-ia/internal/llm"
	"github.com/theduardomaciel/projeto-ia/internal/observability"
	"github.com/theduardomaciel/projeto-ia/internal/pipeline/steps"
	"github.com/theduardomaciel/projeto-ia/internal/types"
)

const pythonJob = `Desenvolvedor Python

Requisitos Obrigatórios:
- Python
`

func newTestAnalyzer(t *testing.T, client llm.Client) *Analyzer {
	t.Helper()
	domain := &config.Domain{
		Skills: config.NewSkillsConfig(
			map[string][]string{
				"linguagens": {"python", "go"},
				"devops":     {"docker"},
			},
			map[string][]string{
				"interpessoais": {"comunicação"},
			},
			map[string][]string{},
		),
		Weights: config.DefaultWeights(),
	}
	a, err := NewAnalyzer(Deps{Domain: domain, LLM: client, Logger: observability.DiscardLogger()})
	require.NoError(t, err)
	return a
}

func TestAnalyze_EndToEnd(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	result, err := a.Analyze(context.Background(), Input{
		JobText: pythonJob,
		Resumes: []Document{{Name: "curriculo_01.txt", Data: []byte("Tenho 5 anos de experiência com Python")}},
	})
	require.NoError(t, err)

	require.Len(t, result.Candidates, 1)
	c := result.Candidates[0]
	assert.Equal(t, "Candidato 01", c.Name)
	assert.Equal(t, []string{"python"}, c.SkillNames(types.CategoryHard))
	assert.Greater(t, c.ScoreBreakdown.HardSkills, 0.0)
	assert.Greater(t, c.ScoreBreakdown.Experience, 0.0)
	assert.Equal(t, types.SenioritySenior, c.Seniority)
	require.NotNil(t, c.Quality)
	require.NotNil(t, c.Quality.RequirementCoverage)
	assert.Equal(t, 1.0, *c.Quality.RequirementCoverage)
	assert.Empty(t, c.Quality.MissingRequirements)
	assert.NotEmpty(t, c.Explanation)

	assert.Equal(t, []string{"python"}, result.Job.SkillsByImportance(types.ImportanceRequired))
	assert.Equal(t, 1, result.Summary.Total)
	assert.Empty(t, result.LLMProvider)
	assert.NotEqual(t, uuid.Nil, result.ID)
}

func TestAnalyze_EmptyResumeIsRankedWithZero(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	result, err := a.Analyze(context.Background(), Input{
		JobText: pythonJob,
		Resumes: []Document{
			{Name: "vazio.txt", Data: []byte{}},
			{Name: "forte.txt", Data: []byte("Maria Souza\nTenho 6 anos de experiência com Python e Docker")},
		},
		SkipExplanations: true,
	})
	require.NoError(t, err)

	require.Len(t, result.Candidates, 2)
	assert.Equal(t, "Maria Souza", result.Candidates[0].Name)
	assert.Equal(t, "Candidato 01", result.Candidates[1].Name)
	assert.Equal(t, 0.0, result.Candidates[1].Score)
	assert.Empty(t, result.Candidates[1].Explanation)

	results := result.Results()
	assert.Equal(t, 2, results[1].RankingPosition)
	assert.Equal(t, types.NoExplanation, results[1].Explanation)
}

func TestAnalyze_PartialFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "curriculo_03.txt"), []byte("Ana Paula Souza\nPython e Go"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notas.md"), []byte("ignored"), 0644))

	a := newTestAnalyzer(t, nil)
	missing := filepath.Join(dir, "sumiu.txt")

	result, err := a.Analyze(context.Background(), Input{
		JobText:          pythonJob,
		ResumeDir:        dir,
		ResumePaths:      []string{missing},
		Resumes:          []Document{{Name: "foto.png", Data: []byte{0x89, 'P', 'N', 'G'}}},
		SkipExplanations: true,
	})
	require.NoError(t, err)

	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "Ana Paula Souza", result.Candidates[0].Name)

	require.Len(t, result.Failures, 2)
	assert.Equal(t, missing, result.Failures[0].Path)
	assert.Equal(t, "foto.png", result.Failures[1].Path)
}

func TestAnalyze_NoCandidates(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	_, err := a.Analyze(context.Background(), Input{
		JobText: pythonJob,
		Resumes: []Document{{Name: "foto.png", Data: []byte("x")}},
	})
	assert.True(t, errors.Is(err, ErrNoCandidates))

	_, err = a.Analyze(context.Background(), Input{JobText: pythonJob})
	assert.True(t, errors.Is(err, ErrNoCandidates))
}

func TestAnalyze_NoJob(t *testing.T) {
	_, err := newTestAnalyzer(t, nil).Analyze(context.Background(), Input{
		Resumes: []Document{{Name: "a.txt", Data: []byte("Python")}},
	})
	assert.True(t, errors.Is(err, ErrNoJob))
}

func TestAnalyze_MissingJobFile(t *testing.T) {
	_, err := newTestAnalyzer(t, nil).Analyze(context.Background(), Input{
		JobPath: filepath.Join(t.TempDir(), "vaga.txt"),
		Resumes: []Document{{Name: "a.txt", Data: []byte("Python")}},
	})

	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Contains(t, inputErr.Path, "vaga.txt")
}

func TestAnalyze_StructuredJob(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	result, err := a.Analyze(context.Background(), Input{
		StructuredJob: &types.StructuredJob{
			Position:   "Engenheiro de Software",
			HardSkills: []string{"Python", "Docker"},
			SoftSkills: []string{"Comunicação"},
		},
		Resumes:          []Document{{Name: "a.txt", Data: []byte("Python")}},
		SkipExplanations: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Engenheiro de Software", result.Job.Title)
	assert.Equal(t, []string{"docker", "python"}, result.Job.SkillsByImportance(types.ImportanceRequired))
	assert.Equal(t, []string{"comunicação"}, result.Job.SkillsByImportance(types.ImportancePreferred))

	_, err = a.Analyze(context.Background(), Input{
		StructuredJob: &types.StructuredJob{Position: "Sem skills"},
		Resumes:       []Document{{Name: "a.txt", Data: []byte("Python")}},
	})
	var inputErr *InputError
	assert.True(t, errors.As(err, &inputErr))
}

func TestAnalyze_ProgressFollowsStageOrder(t *testing.T) {
	var events []ProgressEvent
	_, err := newTestAnalyzer(t, nil).Analyze(context.Background(), Input{
		JobText:    pythonJob,
		Resumes:    []Document{{Name: "a.txt", Data: []byte("Python")}},
		OnProgress: func(e ProgressEvent) { events = append(events, e) },
	})
	require.NoError(t, err)

	got := make([]string, len(events))
	for i, e := range events {
		got[i] = e.Step
		assert.Equal(t, steps.StepRegistry[e.Step].Category, e.Category)
		assert.Equal(t, events[0].RunID, e.RunID)
	}
	assert.Equal(t, []string{
		steps.LoadJob, steps.ExtractRequirements, steps.LoadCandidates,
		steps.ExtractCandidates, steps.ValidateQuality, steps.ScoreCandidates,
		steps.ExplainRanking,
	}, got)
}

func TestAnalyze_WithLLM(t *testing.T) {
	client := llm.NewFakeClient()
	client.Fallback = llm.Response{Success: true, Content: "Boa candidata."}

	result, err := newTestAnalyzer(t, client).Analyze(context.Background(), Input{
		JobText: pythonJob,
		Resumes: []Document{{Name: "a.txt", Data: []byte("Python")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "fake", result.LLMProvider)
	assert.Equal(t, "Boa candidata.", result.Candidates[0].Explanation)
	// experience fallback, education fallback, explanation
	assert.Len(t, client.Prompts(), 3)
}

func TestAnalyze_Concurrent(t *testing.T) {
	a := newTestAnalyzer(t, nil)
	a.concurrency = 4

	docs := make([]Document, 8)
	for i := range docs {
		docs[i] = Document{Name: filepath.Join("cv", string(rune('a'+i))+".txt"), Data: []byte("Python e Docker")}
	}
	result, err := a.Analyze(context.Background(), Input{JobText: pythonJob, Resumes: docs, SkipExplanations: true})
	require.NoError(t, err)

	require.Len(t, result.Candidates, 8)
	for _, c := range result.Candidates {
		assert.Equal(t, []string{"docker", "python"}, c.SkillNames(types.CategoryHard))
	}
}

func TestNewAnalyzer_RequiresSkills(t *testing.T) {
	_, err := NewAnalyzer(Deps{})
	var cfgErr *config.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestRenderStructuredJob(t *testing.T) {
	text, err := RenderStructuredJob(types.StructuredJob{Position: "Dev", HardSkills: []string{"Go"}})
	require.NoError(t, err)
	assert.Contains(t, text, "Requisitos Obrigatórios:\n- Go")

	_, err = RenderStructuredJob(types.StructuredJob{HardSkills: []string{"Go"}})
	assert.Error(t, err)
}

func TestParseResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curriculo_07.txt")
	require.NoError(t, os.WriteFile(path, []byte("Tenho 5 anos de experiência com Python e Docker"), 0644))

	c, err := newTestAnalyzer(t, nil).ParseResume(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "Candidato 07", c.Name)
	assert.Equal(t, []string{"docker", "python"}, c.SkillNames(types.CategoryHard))
	require.NotNil(t, c.Quality)
	assert.Nil(t, c.Quality.RequirementCoverage)
	assert.Zero(t, c.Score)

	_, err = newTestAnalyzer(t, nil).ParseResume(context.Background(), filepath.Join(t.TempDir(), "nada.txt"))
	var inputErr *InputError
	assert.True(t, errors.As(err, &inputErr))
}

func TestParseJobFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaga.txt")
	require.NoError(t, os.WriteFile(path, []byte(pythonJob), 0644))

	job, err := newTestAnalyzer(t, nil).ParseJobFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Desenvolvedor Python", job.Title)
	assert.Equal(t, []string{"python"}, job.SkillsByImportance(types.ImportanceRequired))

	_, err = newTestAnalyzer(t, nil).ParseJobFile(filepath.Join(t.TempDir(), "nada.txt"))
	assert.Error(t, err)
}
