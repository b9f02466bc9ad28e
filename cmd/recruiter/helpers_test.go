package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const testJob = `Desenvolvedor Python

Requisitos Obrigatórios:
- Python
- Docker

Diferenciais:
- Comunicação
`

// runCommand executes the root command in-process with a clean flag state
// and returns what it wrote to stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_DIR", filepath.Join("..", "..", "data", "config"))
	t.Setenv("LOG_DIR", t.TempDir())
	t.Setenv("LLM_DISABLED", "true")
	t.Setenv("DATABASE_URL", "")

	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// writeFixtures writes a job file and two resumes into a temp directory
func writeFixtures(t *testing.T) (jobPath, resumeDir string) {
	t.Helper()
	dir := t.TempDir()
	jobPath = filepath.Join(dir, "vaga.txt")
	resumeDir = filepath.Join(dir, "curriculos")
	mustWrite(t, jobPath, testJob)
	mustWrite(t, filepath.Join(resumeDir, "curriculo_01.txt"),
		"Maria Souza\nTenho 6 anos de experiência com Python e Docker.\nBoa comunicação.")
	mustWrite(t, filepath.Join(resumeDir, "curriculo_02.txt"),
		"Ana Lima\nExperiência com Python.")
	return jobPath, resumeDir
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
