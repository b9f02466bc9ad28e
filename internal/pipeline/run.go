// Package pipeline provides the high-level orchestration of an analysis:
// loading, extraction, scoring and explanation of every candidate against
// one job.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/theduardomaciel/projeto-ia/internal/config"
	"github.com/theduardomaciel/projeto-ia/internal/explain"
	"github.com/theduardomaciel/projeto-ia/internal/ingestion"
	"github.com/theduardomaciel/projeto-ia/internal/llm"
	"github.com/theduardomaciel/projeto-ia/internal/observability"
	"github.com/theduardomaciel/projeto-ia/internal/parsing"
	"github.com/theduardomaciel/projeto-ia/internal/pipeline/steps"
	"github.com/theduardomaciel/projeto-ia/internal/prompts"
	"github.com/theduardomaciel/projeto-ia/internal/ranking"
	"github.com/theduardomaciel/projeto-ia/internal/skills"
	"github.com/theduardomaciel/projeto-ia/internal/types"
	"github.com/theduardomaciel/projeto-ia/internal/validation"
)

var (
	// ErrNoJob is returned when the input names no job description
	ErrNoJob = errors.New("no job description provided")
	// ErrNoCandidates is returned when no resume could be loaded
	ErrNoCandidates = errors.New("no candidate could be loaded")
)

// InputError reports one input file that could not be used
type InputError struct {
	Path  string
	Cause error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input %s: %v", e.Path, e.Cause)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// ProgressEvent represents a progress update during an analysis
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
}

// ProgressCallback is called when a stage completes
type ProgressCallback func(event ProgressEvent)

// Document is an in-memory resume, such as an upload
type Document struct {
	Name string
	Data []byte
}

// Input names the job and the resumes of one analysis. Exactly one job
// source is used, in the order StructuredJob, JobText, JobPath. Resumes
// from every source are combined: ResumeDir, then ResumePaths, then Resumes.
type Input struct {
	StructuredJob *types.StructuredJob
	JobText       string
	JobPath       string

	ResumeDir   string
	ResumePaths []string
	Resumes     []Document

	// SkipExplanations leaves explanations empty
	SkipExplanations bool
	OnProgress       ProgressCallback
}

// Deps are the shared, read-only collaborators of an Analyzer
type Deps struct {
	Domain  *config.Domain
	LLM     llm.Client // optional
	Prompts *prompts.Store
	Events  *observability.EventLog
	Logger  *slog.Logger
	// Concurrency bounds the candidates extracted in parallel; 1 runs
	// them sequentially
	Concurrency int
}

// Analyzer runs analyses. The configuration it holds is immutable, so one
// Analyzer can serve concurrent requests; every Analyze call works on its
// own candidates.
type Analyzer struct {
	weights      *config.WeightsConfig
	loader       *ingestion.Loader
	skills       *skills.Extractor
	requirements *parsing.RequirementsExtractor
	experience   *parsing.ExperienceExtractor
	education    *parsing.EducationExtractor
	validator    *validation.Validator
	ranking      *ranking.Engine
	explainer    *explain.Engine
	provider     string
	logger       *slog.Logger
	concurrency  int
	now          func() time.Time
}

// NewAnalyzer wires the extractors, scoring engine and explainer
func NewAnalyzer(deps Deps) (*Analyzer, error) {
	if deps.Domain == nil || deps.Domain.Skills == nil {
		return nil, &config.ConfigError{Path: "skills", Message: "skills dictionary is required"}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := deps.Prompts
	if store == nil {
		var err error
		if store, err = prompts.New(); err != nil {
			return nil, fmt.Errorf("failed to load prompts: %w", err)
		}
	}

	extractor, err := skills.NewExtractor(deps.Domain.Skills)
	if err != nil {
		return nil, fmt.Errorf("failed to build skill extractor: %w", err)
	}

	var fallback *parsing.Fallback
	provider := ""
	if deps.LLM != nil {
		fallback = &parsing.Fallback{Client: deps.LLM, Prompts: store, Events: deps.Events, Logger: logger}
		provider = deps.LLM.Provider()
	}

	weights := deps.Domain.Weights
	if weights == nil {
		weights = config.DefaultWeights()
	}
	concurrency := deps.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Analyzer{
		weights:      weights,
		loader:       ingestion.NewLoader(deps.Events),
		skills:       extractor,
		requirements: parsing.NewRequirementsExtractor(extractor),
		experience:   parsing.NewExperienceExtractor(fallback),
		education:    parsing.NewEducationExtractor(fallback),
		validator:    validation.NewValidator(),
		ranking:      ranking.NewEngine(weights, ranking.WithEventLog(deps.Events), ranking.WithLogger(logger)),
		explainer:    explain.NewEngine(deps.LLM, store, logger),
		provider:     provider,
		logger:       logger,
		concurrency:  concurrency,
		now:          time.Now,
	}, nil
}

// Provider names the LLM provider in use, empty when running without one
func (a *Analyzer) Provider() string {
	return a.provider
}

// Skills returns the skill extractor, whose dictionary also serves listings
func (a *Analyzer) Skills() *skills.Extractor {
	return a.skills
}

// run tracks the stages of one Analyze call
type run struct {
	id         uuid.UUID
	tracker    *steps.Tracker
	onProgress ProgressCallback
}

func (r *run) complete(step, message string) {
	r.tracker.Complete(step)
	if r.onProgress != nil {
		r.onProgress(ProgressEvent{
			Step:     step,
			Category: steps.StepRegistry[step].Category,
			Message:  message,
			RunID:    r.id.String(),
		})
	}
}

func (r *run) start(step string) error {
	return r.tracker.ValidateDependencies(step)
}

// Analyze loads the job and resumes of in, extracts and scores every
// candidate and returns them ranked. Resumes that cannot be read are
// reported in the result's Failures; ErrNoCandidates is returned only when
// none could be read.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*types.AnalysisResult, error) {
	started := a.now()
	r := &run{id: uuid.New(), tracker: steps.NewTracker(), onProgress: in.OnProgress}

	job, err := a.loadJob(in)
	if err != nil {
		return nil, err
	}
	r.complete(steps.LoadJob, "Loaded job "+job.Title)

	if err := r.start(steps.ExtractRequirements); err != nil {
		return nil, err
	}
	a.ParseJob(job)
	r.complete(steps.ExtractRequirements, fmt.Sprintf("Extracted %d requirements", len(job.Requirements)))

	candidates, failures := a.loadCandidates(in)
	for range failures {
		observability.CandidatesProcessedTotal.WithLabelValues("failed").Inc()
	}
	if len(candidates) == 0 {
		if len(failures) > 0 {
			return nil, fmt.Errorf("%w: %d inputs failed", ErrNoCandidates, len(failures))
		}
		return nil, ErrNoCandidates
	}
	r.complete(steps.LoadCandidates, fmt.Sprintf("Loaded %d candidates", len(candidates)))

	if err := r.start(steps.ExtractCandidates); err != nil {
		return nil, err
	}
	if err := a.extractAll(ctx, candidates); err != nil {
		return nil, err
	}
	r.complete(steps.ExtractCandidates, "Extracted skills, experience and education")

	if err := r.start(steps.ValidateQuality); err != nil {
		return nil, err
	}
	for _, c := range candidates {
		a.assessQuality(c, job)
	}
	r.complete(steps.ValidateQuality, "Assessed extraction quality")

	if err := r.start(steps.ScoreCandidates); err != nil {
		return nil, err
	}
	ranked := a.ranking.RankCandidates(candidates, job)
	r.complete(steps.ScoreCandidates, fmt.Sprintf("Ranked %d candidates", len(ranked)))

	result := &types.AnalysisResult{
		ID:          r.id,
		Job:         job,
		Candidates:  ranked,
		Failures:    failures,
		Summary:     parsing.Summarize(job.Requirements),
		LLMProvider: a.provider,
		AnalyzedAt:  started.UTC(),
	}

	if !in.SkipExplanations {
		if err := r.start(steps.ExplainRanking); err != nil {
			return nil, err
		}
		a.explainer.ExplainAll(ctx, result)
		r.complete(steps.ExplainRanking, "Generated explanations")
	}

	elapsed := a.now().Sub(started)
	result.ProcessingSeconds = types.Round(elapsed.Seconds(), 3)
	observability.AnalysisDuration.Observe(elapsed.Seconds())
	observability.CandidatesProcessedTotal.WithLabelValues("ok").Add(float64(len(ranked)))

	a.logger.Info("analysis completed",
		slog.String("analysis_id", r.id.String()),
		slog.String("job", job.Title),
		slog.Int("candidates", len(ranked)),
		slog.Int("failures", len(failures)),
		slog.Float64("seconds", result.ProcessingSeconds))
	return result, nil
}

func (a *Analyzer) loadJob(in Input) (*types.JobProfile, error) {
	switch {
	case in.StructuredJob != nil:
		text, err := RenderStructuredJob(*in.StructuredJob)
		if err != nil {
			return nil, &InputError{Path: "job", Cause: err}
		}
		job := a.loader.JobFromText(text)
		job.Title = in.StructuredJob.Position
		return job, nil
	case strings.TrimSpace(in.JobText) != "":
		return a.loader.JobFromText(in.JobText), nil
	case in.JobPath != "":
		job, err := a.loader.LoadJob(in.JobPath)
		if err != nil {
			return nil, &InputError{Path: in.JobPath, Cause: err}
		}
		return job, nil
	default:
		return nil, ErrNoJob
	}
}

// ParseJob fills the job's requirements and applies the configured
// category weights
func (a *Analyzer) ParseJob(job *types.JobProfile) {
	a.requirements.ExtractInto(job)
	job.Weights = a.weights.CategoryWeights
}

func (a *Analyzer) loadCandidates(in Input) ([]*types.Candidate, []types.InputFailure) {
	var candidates []*types.Candidate
	var failures []types.InputFailure

	if in.ResumeDir != "" {
		loaded, failed, err := a.loader.LoadCandidates(in.ResumeDir)
		if err != nil {
			failures = append(failures, types.InputFailure{Path: in.ResumeDir, Error: err.Error()})
		}
		candidates = append(candidates, loaded...)
		failures = append(failures, failed...)
	}

	position := len(candidates) + len(failures)
	for _, path := range in.ResumePaths {
		position++
		c, err := a.loader.LoadCandidate(path, position)
		if err != nil {
			failures = append(failures, failure(path, err))
			continue
		}
		candidates = append(candidates, c)
	}

	for _, doc := range in.Resumes {
		position++
		text, err := ingestion.ExtractBytes(doc.Name, doc.Data)
		if err != nil {
			failures = append(failures, failure(doc.Name, err))
			continue
		}
		candidates = append(candidates, a.loader.CandidateFromText(text, doc.Name, position))
	}
	return candidates, failures
}

func failure(path string, err error) types.InputFailure {
	ie := &InputError{Path: path, Cause: err}
	return types.InputFailure{Path: path, Error: ie.Error()}
}

// extractAll runs the per-candidate extraction with bounded parallelism.
// Each goroutine touches only its own candidate.
func (a *Analyzer) extractAll(ctx context.Context, candidates []*types.Candidate) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for _, c := range candidates {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			a.ProcessCandidate(gCtx, c)
			return nil
		})
	}
	return g.Wait()
}

// ProcessCandidate extracts skills, experiences and education into c
func (a *Analyzer) ProcessCandidate(ctx context.Context, c *types.Candidate) {
	if c.NormalizedText == "" && c.RawText != "" {
		c.NormalizedText = ingestion.Normalize(c.RawText, ingestion.DefaultNormalizeOptions)
	}
	a.skills.ExtractFromCandidate(c)
	a.experience.ExtractFromCandidate(ctx, c)
	a.education.ExtractFromCandidate(ctx, c)

	a.logger.Debug("candidate extracted",
		slog.String("candidate", c.Name),
		slog.Int("hard_skills", len(c.HardSkills)),
		slog.Int("soft_skills", len(c.SoftSkills)),
		slog.Int("experiences", len(c.Experiences)),
		slog.Int("education", len(c.Education)))
}

// ParseResume loads, extracts and quality-checks a single resume file
// without scoring it
func (a *Analyzer) ParseResume(ctx context.Context, path string) (*types.Candidate, error) {
	c, err := a.loader.LoadCandidate(path, 1)
	if err != nil {
		return nil, &InputError{Path: path, Cause: err}
	}
	a.ProcessCandidate(ctx, c)
	a.assessQuality(c, nil)
	return c, nil
}

// ParseJobFile loads a job description file and extracts its requirements
func (a *Analyzer) ParseJobFile(path string) (*types.JobProfile, error) {
	job, err := a.loader.LoadJob(path)
	if err != nil {
		return nil, &InputError{Path: path, Cause: err}
	}
	a.ParseJob(job)
	return job, nil
}

// assessQuality attaches the validator report and, when job is set, the
// requirement coverage of the candidate's skills
func (a *Analyzer) assessQuality(c *types.Candidate, job *types.JobProfile) {
	c.Quality = a.validator.ValidateCandidate(c)
	if job != nil {
		rel := validation.CheckSkillRelevance(c, job)
		c.Quality.RequirementCoverage = &rel.Coverage
		c.Quality.MissingRequirements = rel.Missing
	}
	if validation.ShouldUseLLMFallback(c.Quality) {
		a.logger.Debug("low extraction confidence",
			slog.String("candidate", c.Name),
			slog.Float64("confidence", c.Quality.Confidence),
			slog.Any("errors", c.Quality.Errors))
	}
}

// RenderStructuredJob validates a structured job and renders it to the job
// text the requirements extractor understands
func RenderStructuredJob(job types.StructuredJob) (string, error) {
	if err := job.Validate(); err != nil {
		return "", fmt.Errorf("invalid structured job: %w", err)
	}
	return job.Render(), nil
}
