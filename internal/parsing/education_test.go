package parsing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theduardomaciel/projeto-ia/internal/types"
)

func newTestEducationExtractor(fb *Fallback) *EducationExtractor {
	e := NewEducationExtractor(fb)
	e.now = func() time.Time { return fixedNow }
	return e
}

func TestEducationExtractor_Structured(t *testing.T) {
	edus := newTestEducationExtractor(nil).Extract(sampleResume)
	require.Len(t, edus, 1)

	assert.Equal(t, types.Education{
		Degree:         "Bacharelado em Ciência da Computação",
		Institution:    "UFAL",
		CompletionYear: "2016",
		Status:         types.StatusCompleted,
	}, edus[0])
	assert.Equal(t, 3, HighestDegreeLevel(edus))
	assert.True(t, HasRelevantDegree(edus))
}

func TestEducationExtractor_MultiLine(t *testing.T) {
	text := `Carlos Pereira

Formação
Mestrado em Engenharia de Software
Universidade Federal de Pernambuco
Previsto: 2027

Técnico em Informática
IFAL - 2012

Habilidades
Python`

	edus := newTestEducationExtractor(nil).Extract(text)
	require.Len(t, edus, 2)

	assert.Equal(t, "Mestrado em Engenharia de Software", edus[0].Degree)
	assert.Equal(t, "Universidade Federal de Pernambuco", edus[0].Institution)
	assert.Equal(t, "2027", edus[0].CompletionYear)
	assert.Equal(t, types.StatusInProgress, edus[0].Status)

	assert.Equal(t, "Técnico em Informática", edus[1].Degree)
	assert.Equal(t, "IFAL", edus[1].Institution)
	assert.Equal(t, "2012", edus[1].CompletionYear)
	assert.Equal(t, types.StatusCompleted, edus[1].Status)

	assert.Equal(t, 5, HighestDegreeLevel(edus))
	assert.True(t, HasRelevantDegree(edus))
}

func TestEducationExtractor_ExtractFromCandidate(t *testing.T) {
	c := types.NewCandidate("Sem Formação", "Nome Sobrenome\nPython", "")
	edus := newTestEducationExtractor(nil).ExtractFromCandidate(context.Background(), c)
	assert.Empty(t, edus)
	assert.NotNil(t, c.Education)
}

func TestClassifyDegree(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"PhD em Computação, após Mestrado", DegreeDoctorate},
		{"Mestrado em Engenharia de Software", DegreeMasters},
		{"MSc in Computer Science", DegreeMasters},
		{"MBA em Gestão de Projetos", DegreeMBA},
		{"Master of Business Administration", DegreeMBA},
		{"Pós-Graduação em Ciência de Dados", DegreeSpecialization},
		{"Bacharelado em Sistemas de Informação", DegreeBachelor},
		{"Licenciatura em Matemática", DegreeLicentiate},
		{"Tecnólogo em Análise e Desenvolvimento de Sistemas", DegreeTechnologist},
		{"Técnico em Informática", DegreeTechnical},
		{"Ensino Médio", DegreeHighSchool},
		{"tecnologo em redes", DegreeTechnologist},
		{"Information Systems", ""},
		{"Python, Docker", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDegree(tt.text))
		})
	}
}

func TestHasAcademicPostgraduate(t *testing.T) {
	tests := []struct {
		degree string
		want   bool
	}{
		{"Mestrado em Computação", true},
		{"PhD in Physics", true},
		{"MBA em Gestão de Projetos", false},
		{"Master of Business Administration", false},
		{"Bacharelado em Sistemas de Informação", false},
	}
	for _, tt := range tests {
		t.Run(tt.degree, func(t *testing.T) {
			assert.Equal(t, tt.want, HasAcademicPostgraduate([]types.Education{{Degree: tt.degree}}))
		})
	}
	assert.False(t, HasAcademicPostgraduate(nil))
}

func TestHighestDegreeLevel(t *testing.T) {
	assert.Equal(t, 0, HighestDegreeLevel(nil))
	assert.Equal(t, 6, HighestDegreeLevel([]types.Education{
		{Degree: "Ensino Médio"},
		{Degree: "Doutorado em Física"},
		{Degree: "MBA"},
	}))
	assert.Equal(t, 4, HighestDegreeLevel([]types.Education{{Degree: "Especialização em Redes"}}))
}

func TestHasRelevantDegree(t *testing.T) {
	assert.True(t, HasRelevantDegree([]types.Education{{Degree: "Bacharelado em Ciencia da Computacao"}}))
	assert.True(t, HasRelevantDegree([]types.Education{{Degree: "BSc Data Science"}}))
	assert.False(t, HasRelevantDegree([]types.Education{{Degree: "Bacharelado em Direito"}}))
	assert.False(t, HasRelevantDegree(nil))
}

func TestEducationStatus(t *testing.T) {
	tests := []struct {
		name string
		text string
		year string
		want types.EducationStatus
	}{
		{"incomplete is not completed", "Bacharelado incompleto", "", types.StatusIncomplete},
		{"completed keyword", "Bacharelado - Concluído", "", types.StatusCompleted},
		{"in progress keyword", "Cursando Bacharelado", "", types.StatusInProgress},
		{"past year", "Bacharelado", "2015", types.StatusCompleted},
		{"future year", "Bacharelado", "2028", types.StatusInProgress},
		{"no year", "Bacharelado", "", types.StatusCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, educationStatus(tt.text, tt.year, fixedNow))
		})
	}
}

func TestEducationExtractYear(t *testing.T) {
	e := newTestEducationExtractor(nil)
	tests := []struct {
		text string
		want string
	}{
		{"2014 - 2018", "2018"},
		{"2020 - atual", "2020"},
		{"Expected graduation 2027", "2027"},
		{"Turma de 2010, revalidado em 2012", "2012"},
		{"Formado em 1950", ""},
		{"Previsão 2040", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, e.extractYear(tt.text, fixedNow))
		})
	}
}

func TestSplitEducationBlocks(t *testing.T) {
	section := `Bacharelado em Sistemas de Informação
UFAL

2014 - 2018
MBA em Gestão
FGV`
	blocks := SplitEducationBlocks(section)
	require.Len(t, blocks, 2)
	assert.Equal(t, "Bacharelado em Sistemas de Informação\nUFAL\n2014 - 2018", blocks[0])
	assert.Equal(t, "MBA em Gestão\nFGV", blocks[1])
}

func TestEducationParseBlock_Noise(t *testing.T) {
	_, ok := newTestEducationExtractor(nil).parseBlock("Conhecimento em Tecnologia da Informação")
	assert.False(t, ok)
}
