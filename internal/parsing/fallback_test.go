package parsing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theduardomaciel/projeto-ia/internal/llm"
	"github.com/theduardomaciel/projeto-ia/internal/observability"
	"github.com/theduardomaciel/projeto-ia/internal/prompts"
	"github.com/theduardomaciel/projeto-ia/internal/types"
)

func newTestFallback(client llm.Client, events *bytes.Buffer) *Fallback {
	return &Fallback{
		Client:  client,
		Prompts: prompts.MustNew(),
		Events:  observability.NewEventLog(events),
		Logger:  observability.DiscardLogger(),
	}
}

func TestParseExperienceLines(t *testing.T) {
	content := `# experiências
Desenvolvedor Go | Acme | 2020 - 2022 | APIs | gRPC

Analista | - | 2018 - 2020
 | Sem Cargo | 2017
Linha sem campos suficientes | x`

	exps := ParseExperienceLines(content)
	require.Len(t, exps, 2)
	assert.Equal(t, types.Experience{Role: "Desenvolvedor Go", Company: "Acme", Duration: "2020 - 2022", Description: "APIs | gRPC"}, exps[0])
	assert.Equal(t, types.Experience{Role: "Analista", Duration: "2018 - 2020"}, exps[1])
}

func TestParseEducationLines(t *testing.T) {
	content := `Bacharelado em SI | UFAL | 2019 | completo
MBA | FGV | 2035 | cursando
Técnico | - | - | trancado
Só grau`

	edus := ParseEducationLines(content, fixedNow)
	require.Len(t, edus, 3)
	assert.Equal(t, types.Education{Degree: "Bacharelado em SI", Institution: "UFAL", CompletionYear: "2019", Status: types.StatusCompleted}, edus[0])
	assert.Equal(t, types.Education{Degree: "MBA", Institution: "FGV", Status: types.StatusInProgress}, edus[1])
	assert.Equal(t, types.Education{Degree: "Técnico", Status: types.StatusIncomplete}, edus[2])
}

func TestFallback_ExperienceUsedWhenHeuristicsFindNothing(t *testing.T) {
	client := llm.NewFakeClient(llm.Response{
		Success: true,
		Content: "Desenvolvedor Go | Acme | 2 anos | APIs",
	})
	var events bytes.Buffer
	c := types.NewCandidate("Ana", "Ana Lima\nGo, Docker, Kubernetes", "")

	exps := newTestExperienceExtractor(newTestFallback(client, &events)).ExtractFromCandidate(context.Background(), c)

	require.Len(t, exps, 1)
	assert.Equal(t, "Desenvolvedor Go", exps[0].Role)
	assert.Equal(t, 2.0, c.ExperienceYears)
	require.Len(t, client.Prompts(), 1)
	assert.Contains(t, client.Prompts()[0], "Go, Docker, Kubernetes")
	assert.Empty(t, events.String())
}

func TestFallback_EducationInsideCodeFence(t *testing.T) {
	client := llm.NewFakeClient(llm.Response{
		Success: true,
		Content: "```\nBacharelado em SI | UFAL | 2019 | completo\n```",
	})
	c := types.NewCandidate("Ana", "Ana Lima\nGo, Docker", "")

	edus := newTestEducationExtractor(newTestFallback(client, &bytes.Buffer{})).ExtractFromCandidate(context.Background(), c)

	require.Len(t, edus, 1)
	assert.Equal(t, "Bacharelado em SI", edus[0].Degree)
	assert.Equal(t, "2019", edus[0].CompletionYear)
}

func TestFallback_NotCalledWhenHeuristicsSucceed(t *testing.T) {
	client := llm.NewFakeClient()
	c := types.NewCandidate("João", sampleResume, "")

	newTestExperienceExtractor(newTestFallback(client, &bytes.Buffer{})).ExtractFromCandidate(context.Background(), c)
	newTestEducationExtractor(newTestFallback(client, &bytes.Buffer{})).ExtractFromCandidate(context.Background(), c)

	assert.Empty(t, client.Prompts())
}

func TestFallback_FailuresAreSwallowed(t *testing.T) {
	tests := []struct {
		name string
		resp llm.Response
	}{
		{"unsuccessful call", llm.Response{Success: false, Error: "timeout"}},
		{"error in content", llm.Response{Success: true, Content: "Error: quota exceeded"}},
		{"no records in content", llm.Response{Success: true, Content: "Nenhuma formação encontrada."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var events bytes.Buffer
			fb := newTestFallback(llm.NewFakeClient(tt.resp), &events)
			c := types.NewCandidate("Ana", "Ana Lima\nGo", "")

			edus := newTestEducationExtractor(fb).ExtractFromCandidate(context.Background(), c)

			assert.Empty(t, edus)
			assert.NotNil(t, c.Education)
			assert.Contains(t, events.String(), "education_fallback_error")
			assert.Contains(t, events.String(), "candidate=Ana")
		})
	}
}

func TestFallback_UnparseableResponseIsReported(t *testing.T) {
	var events bytes.Buffer
	client := llm.NewFakeClient(llm.Response{Success: true, Content: "Não encontrei experiências."})
	c := types.NewCandidate("Ana", "Ana Lima\nGo", "")

	exps := newTestExperienceExtractor(newTestFallback(client, &events)).ExtractFromCandidate(context.Background(), c)

	assert.Empty(t, exps)
	assert.Contains(t, events.String(), "experience_fallback_error")
	assert.Contains(t, events.String(), "parse error: response has no experience records")
}

func TestFallback_TruncatesInput(t *testing.T) {
	client := llm.NewFakeClient(llm.Response{Success: true, Content: ""})
	long := "Ana Lima\n" + string(bytes.Repeat([]byte("x"), 5000))
	c := types.NewCandidate("Ana", long, "")

	newTestExperienceExtractor(newTestFallback(client, &bytes.Buffer{})).ExtractFromCandidate(context.Background(), c)

	require.Len(t, client.Prompts(), 1)
	assert.Contains(t, client.Prompts()[0], long[:fallbackInputLimit])
	assert.NotContains(t, client.Prompts()[0], long[:fallbackInputLimit+1])
}
