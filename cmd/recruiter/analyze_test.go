package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCommand_FlagsValidation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{
			name:        "Missing --job flag",
			args:        []string{"analyze", "--resumes", t.TempDir()},
			errorString: "required",
		},
		{
			name:        "No resumes",
			args:        []string{"analyze", "--job", "vaga.txt"},
			errorString: "--resumes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestAnalyzeCommand_Ranking(t *testing.T) {
	jobPath, resumeDir := writeFixtures(t)

	out, err := runCommand(t, "analyze", "--job", jobPath, "--resumes", resumeDir)
	require.NoError(t, err)

	assert.Contains(t, out, "PARSED JOB PROFILE")
	assert.Contains(t, out, "Desenvolvedor Python")
	assert.Contains(t, out, "CANDIDATE RANKING")

	maria := strings.Index(out, "#1  Maria Souza")
	ana := strings.Index(out, "#2  Ana Lima")
	assert.GreaterOrEqual(t, maria, 0)
	assert.Greater(t, ana, maria)
}

func TestAnalyzeCommand_JSONToStdout(t *testing.T) {
	jobPath, resumeDir := writeFixtures(t)

	out, err := runCommand(t, "analyze", "-j", jobPath, "-r", resumeDir, "--json", "-", "--no-explain")
	require.NoError(t, err)
	assert.NotContains(t, out, "CANDIDATE RANKING")

	var payload struct {
		JobTitle string `json:"job_title"`
		Data     []struct {
			CandidateName   string  `json:"candidate_name"`
			RankingPosition int     `json:"ranking_position"`
			MatchScore      float64 `json:"match_score"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "Desenvolvedor Python", payload.JobTitle)
	require.Len(t, payload.Data, 2)
	assert.Equal(t, "Maria Souza", payload.Data[0].CandidateName)
	assert.Equal(t, 1, payload.Data[0].RankingPosition)
	assert.GreaterOrEqual(t, payload.Data[0].MatchScore, payload.Data[1].MatchScore)
}

func TestAnalyzeCommand_ExportAndFiles(t *testing.T) {
	jobPath, resumeDir := writeFixtures(t)
	outDir := t.TempDir()
	report := filepath.Join(outDir, "ranking")
	jsonPath := filepath.Join(outDir, "ranking.json")

	out, err := runCommand(t, "analyze", "--job", jobPath,
		filepath.Join(resumeDir, "curriculo_02.txt"),
		"--export", report, "--json", jsonPath, "--top", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "Report written to")
	assert.FileExists(t, report+".xlsx")
	assert.FileExists(t, jsonPath)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Ana Lima")
}

func TestAnalyzeCommand_SaveRequiresDatabase(t *testing.T) {
	jobPath, resumeDir := writeFixtures(t)

	_, err := runCommand(t, "analyze", "--job", jobPath, "--resumes", resumeDir, "--save", "--no-explain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
