package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/theduardomaciel/projeto-ia/internal/types"
)

// AnalysisSummary is a lightweight view of a stored analysis for listing
type AnalysisSummary struct {
	ID                uuid.UUID `json:"id"`
	JobTitle          string    `json:"job_title"`
	CandidateCount    int       `json:"candidate_count"`
	LLMProvider       string    `json:"llm_provider,omitempty"`
	ProcessingSeconds float64   `json:"processing_seconds"`
	AnalyzedAt        time.Time `json:"analyzed_at"`
}

// StoredAnalysis is an analysis as read back from the database. Results are
// ordered by ranking position.
type StoredAnalysis struct {
	AnalysisSummary
	Job      *types.JobProfile         `json:"job"`
	Summary  types.RequirementsSummary `json:"requirements_summary"`
	Failures []types.InputFailure      `json:"failures,omitempty"`
	Results  []types.CandidateResult   `json:"results"`
}

// analysisRow holds the encoded columns of the analyses table
type analysisRow struct {
	jobTitle     string
	job          []byte
	requirements []byte
	failures     []byte
}

// candidateRow holds the encoded columns of the analysis_candidates table
type candidateRow struct {
	position int
	name     string
	score    float64
	filePath string
	result   []byte
}

func encodeAnalysis(result *types.AnalysisResult) (analysisRow, []candidateRow, error) {
	if result == nil {
		return analysisRow{}, nil, errors.New("analysis result is nil")
	}
	if result.ID == uuid.Nil {
		return analysisRow{}, nil, errors.New("analysis result has no id")
	}

	var row analysisRow
	var err error
	job := result.Job
	if job == nil {
		job = &types.JobProfile{}
	}
	row.jobTitle = job.Title
	if row.job, err = json.Marshal(job); err != nil {
		return analysisRow{}, nil, fmt.Errorf("failed to marshal job: %w", err)
	}
	if row.requirements, err = json.Marshal(result.Summary); err != nil {
		return analysisRow{}, nil, fmt.Errorf("failed to marshal requirements summary: %w", err)
	}
	failures := result.Failures
	if failures == nil {
		failures = []types.InputFailure{}
	}
	if row.failures, err = json.Marshal(failures); err != nil {
		return analysisRow{}, nil, fmt.Errorf("failed to marshal failures: %w", err)
	}

	results := result.Results()
	candidates := make([]candidateRow, len(results))
	for i, r := range results {
		data, err := json.Marshal(r)
		if err != nil {
			return analysisRow{}, nil, fmt.Errorf("failed to marshal candidate %q: %w", r.CandidateName, err)
		}
		candidates[i] = candidateRow{
			position: r.RankingPosition,
			name:     r.CandidateName,
			score:    r.MatchScore,
			filePath: result.Candidates[i].FilePath,
			result:   data,
		}
	}
	return row, candidates, nil
}

// SaveAnalysis stores an analysis and its ranked candidates in one
// transaction. Saving the same ID again replaces the previous rows.
func (db *DB) SaveAnalysis(ctx context.Context, result *types.AnalysisResult) error {
	row, candidates, err := encodeAnalysis(result)
	if err != nil {
		return err
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO analyses (id, job_title, job, requirements, failures, llm_provider,
		                       candidate_count, processing_seconds, analyzed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		     job_title = EXCLUDED.job_title,
		     job = EXCLUDED.job,
		     requirements = EXCLUDED.requirements,
		     failures = EXCLUDED.failures,
		     llm_provider = EXCLUDED.llm_provider,
		     candidate_count = EXCLUDED.candidate_count,
		     processing_seconds = EXCLUDED.processing_seconds,
		     analyzed_at = EXCLUDED.analyzed_at`,
		result.ID, row.jobTitle, row.job, row.requirements, row.failures, result.LLMProvider,
		len(candidates), result.ProcessingSeconds, result.AnalyzedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM analysis_candidates WHERE analysis_id = $1`, result.ID); err != nil {
		return fmt.Errorf("failed to clear analysis candidates: %w", err)
	}

	batch := &pgx.Batch{}
	for _, c := range candidates {
		batch.Queue(
			`INSERT INTO analysis_candidates (analysis_id, ranking_position, candidate_name, match_score, file_path, result)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			result.ID, c.position, c.name, c.score, c.filePath, c.result,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save analysis candidates: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit analysis: %w", err)
	}
	return nil
}

// GetAnalysis retrieves a stored analysis by ID. It returns nil when the
// analysis does not exist.
func (db *DB) GetAnalysis(ctx context.Context, id uuid.UUID) (*StoredAnalysis, error) {
	var stored StoredAnalysis
	var job, requirements, failures []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, job_title, candidate_count, llm_provider, processing_seconds, analyzed_at,
		        job, requirements, failures
		 FROM analyses WHERE id = $1`,
		id,
	).Scan(&stored.ID, &stored.JobTitle, &stored.CandidateCount, &stored.LLMProvider,
		&stored.ProcessingSeconds, &stored.AnalyzedAt, &job, &requirements, &failures)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	if err := decodeAnalysis(&stored, job, requirements, failures); err != nil {
		return nil, err
	}

	rows, err := db.pool.Query(ctx,
		`SELECT result FROM analysis_candidates WHERE analysis_id = $1 ORDER BY ranking_position`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis candidates: %w", err)
	}
	defer rows.Close()

	stored.Results = []types.CandidateResult{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan analysis candidate: %w", err)
		}
		var r types.CandidateResult
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis candidate: %w", err)
		}
		stored.Results = append(stored.Results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read analysis candidates: %w", err)
	}
	return &stored, nil
}

func decodeAnalysis(stored *StoredAnalysis, job, requirements, failures []byte) error {
	stored.Job = &types.JobProfile{}
	if err := json.Unmarshal(job, stored.Job); err != nil {
		return fmt.Errorf("failed to unmarshal job: %w", err)
	}
	if err := json.Unmarshal(requirements, &stored.Summary); err != nil {
		return fmt.Errorf("failed to unmarshal requirements summary: %w", err)
	}
	if len(failures) > 0 {
		if err := json.Unmarshal(failures, &stored.Failures); err != nil {
			return fmt.Errorf("failed to unmarshal failures: %w", err)
		}
	}
	return nil
}

// ListAnalyses retrieves the most recent analyses
func (db *DB) ListAnalyses(ctx context.Context, limit int) ([]AnalysisSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, job_title, candidate_count, llm_provider, processing_seconds, analyzed_at
		 FROM analyses ORDER BY analyzed_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []AnalysisSummary
	for rows.Next() {
		var a AnalysisSummary
		if err := rows.Scan(&a.ID, &a.JobTitle, &a.CandidateCount, &a.LLMProvider, &a.ProcessingSeconds, &a.AnalyzedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}

// DeleteAnalysis deletes an analysis and its candidates (via cascade)
func (db *DB) DeleteAnalysis(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("analysis not found: %s", id)
	}
	return nil
}
