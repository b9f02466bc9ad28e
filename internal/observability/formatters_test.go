package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theduardomaciel/projeto-ia/internal/config"
	"github.com/theduardomaciel/projeto-ia/internal/types"
)

func TestPrintJobProfile(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	profile := types.NewJobProfile("Desenvolvedor Python", "", "")
	profile.AddRequirement("python", types.ImportanceRequired, 1.0, types.CategoryHard)
	profile.AddRequirement("docker", types.ImportancePreferred, 1.0, types.CategoryHard)

	p.PrintJobProfile(profile)
	output := buf.String()

	assert.Contains(t, output, "PARSED JOB PROFILE")
	assert.Contains(t, output, "Desenvolvedor Python")
	assert.Contains(t, output, "Required:")
	assert.Contains(t, output, "• python")
	assert.Contains(t, output, "Preferred:")
	assert.NotContains(t, output, "Nice-to-have:")
}

func TestPrintJobProfile_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintJobProfile(nil)
	assert.Empty(t, buf.String())
}

func TestPrintRanking(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	ana := types.NewCandidate("Ana Souza", "", "")
	ana.Score = 4.5
	ana.Seniority = types.SenioritySenior
	ana.ExperienceYears = 6
	ana.AddSkill(types.Skill{Name: "python", Category: types.CategoryHard, Confidence: 0.9, Source: types.SourceDictionary})

	result := &types.AnalysisResult{
		Candidates: []*types.Candidate{ana, types.NewCandidate("Candidato 02", "", "")},
		Failures:   []types.InputFailure{{Path: "x.odt", Error: "unsupported"}},
	}
	p.PrintRanking(result)
	output := buf.String()

	assert.Contains(t, output, "CANDIDATE RANKING")
	assert.Contains(t, output, "#1  Ana Souza  (4.50)")
	assert.Contains(t, output, "#2  Candidato 02")
	assert.Contains(t, output, "Skills: python")
	assert.Contains(t, output, "Inputs skipped:    1")
}

func TestPrintCandidate(t *testing.T) {
	var buf bytes.Buffer
	c := types.NewCandidate("Ana Souza", "", "")
	c.Experiences = []types.Experience{{Role: "Desenvolvedor", Company: "ACME", Duration: "2019 - 2023"}}
	c.Education = []types.Education{{Degree: "Bacharelado", Institution: "UFAL", CompletionYear: "2019", Status: types.StatusCompleted}}
	c.Quality = &types.QualityReport{Valid: false, Confidence: 0.3, Errors: []string{"texto muito curto"}}

	NewPrinter(&buf).PrintCandidate(c)
	output := buf.String()

	assert.Contains(t, output, "Desenvolvedor @ ACME (2019 - 2023)")
	assert.Contains(t, output, "Bacharelado - UFAL 2019 [completed]")
	assert.Contains(t, output, "texto muito curto")
}

func TestPrintBox_TruncatesByRune(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.printBox("T", strings.Repeat("ç", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)))
	}
}

func TestPrintFailures(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintFailures([]types.InputFailure{{Path: "a.odt", Error: "unsupported format"}})
	assert.Contains(t, buf.String(), "SKIPPED INPUTS")
	assert.Contains(t, buf.String(), "a.odt")

	buf.Reset()
	NewPrinter(&buf).PrintFailures(nil)
	assert.Empty(t, buf.String())
}

func TestEventLog_RecordFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewEventLog(&buf)
	log.now = func() time.Time { return time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC) }

	log.Record("file_read", "path=a.txt\tbytes=10\nchars=10")

	assert.Equal(t, "2024-03-01T10:30:00\tfile_read\tpath=a.txt bytes=10 chars=10\n", buf.String())
}

func TestEventLog_NilIsNoop(t *testing.T) {
	var log *EventLog
	assert.NotPanics(t, func() { log.Record("x", "y") })
	assert.NoError(t, log.Close())
}

func TestOpenEventLog_Appends(t *testing.T) {
	path := t.TempDir() + "/logs/parsing_events.log"

	first, err := OpenEventLog(path)
	require.NoError(t, err)
	first.Record("a", "1")
	require.NoError(t, first.Close())

	second, err := OpenEventLog(path)
	require.NoError(t, err)
	second.Record("b", "2")
	require.NoError(t, second.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "\ta\t1")
	assert.Contains(t, lines[1], "\tb\t2")
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(config.Env{AppEnv: "prod", LogLevel: "warn"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	output := buf.String()
	assert.NotContains(t, output, "hidden")
	assert.Contains(t, output, `"msg":"shown"`)
	assert.Contains(t, output, `"service":"recruiter"`)
}

func TestHTTPMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HTTPMetricsMiddleware)
	r.Get("/api/analyses/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/api/analyses/{id}", "GET", "404"))
	req := httptest.NewRequest(http.MethodGet, "/api/analyses/abc", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/api/analyses/{id}", "GET", "404"))

	assert.Equal(t, before+1, after)
}
