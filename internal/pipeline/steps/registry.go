// Package steps defines the stages of an analysis run and the order they
// depend on.
package steps

import (
	"fmt"
	"sort"
)

// Stage categories
const (
	CategoryIngestion   = "ingestion"
	CategoryExtraction  = "extraction"
	CategoryScoring     = "scoring"
	CategoryExplanation = "explanation"
)

// Stage names
const (
	LoadJob             = "load_job"
	ExtractRequirements = "extract_requirements"
	LoadCandidates      = "load_candidates"
	ExtractCandidates   = "extract_candidates"
	ValidateQuality     = "validate_quality"
	ScoreCandidates     = "score_candidates"
	ExplainRanking      = "explain_ranking"
)

// StepDefinition defines metadata for a pipeline stage
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
	// Optional stages may be skipped without blocking their dependents
	Optional bool
}

// StepRegistry holds all stage definitions
var StepRegistry = map[string]StepDefinition{
	LoadJob: {
		Name:     LoadJob,
		Category: CategoryIngestion,
	},
	ExtractRequirements: {
		Name:         ExtractRequirements,
		Category:     CategoryExtraction,
		Dependencies: []string{LoadJob},
	},
	LoadCandidates: {
		Name:     LoadCandidates,
		Category: CategoryIngestion,
	},
	ExtractCandidates: {
		Name:         ExtractCandidates,
		Category:     CategoryExtraction,
		Dependencies: []string{LoadCandidates},
	},
	ValidateQuality: {
		Name:         ValidateQuality,
		Category:     CategoryExtraction,
		Dependencies: []string{ExtractCandidates},
	},
	ScoreCandidates: {
		Name:         ScoreCandidates,
		Category:     CategoryScoring,
		Dependencies: []string{ExtractRequirements, ExtractCandidates},
	},
	ExplainRanking: {
		Name:         ExplainRanking,
		Category:     CategoryExplanation,
		Dependencies: []string{ScoreCandidates},
		Optional:     true,
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s: missing dependencies: %v", e.Step, e.MissingDependencies)
}

// Order returns every stage with its dependencies listed before it. Stages
// with no ordering constraint between them are sorted by name.
func Order() []string {
	names := make([]string, 0, len(StepRegistry))
	for name := range StepRegistry {
		names = append(names, name)
	}
	sort.Strings(names)

	var order []string
	visited := make(map[string]bool, len(names))
	var visit func(string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		for _, dep := range StepRegistry[name].Dependencies {
			visit(dep)
		}
		order = append(order, name)
	}
	for _, name := range names {
		visit(name)
	}
	return order
}

// Tracker records the stages completed during one run. It is not safe for
// concurrent use; each run owns its tracker.
type Tracker struct {
	completed map[string]bool
	done      []string
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{completed: make(map[string]bool)}
}

// ValidateDependencies checks that every dependency of a stage completed
func (t *Tracker) ValidateDependencies(step string) error {
	def, ok := StepRegistry[step]
	if !ok {
		return fmt.Errorf("unknown step: %s", step)
	}
	var missing []string
	for _, dep := range def.Dependencies {
		if !t.completed[dep] {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return &DependencyError{Step: step, MissingDependencies: missing}
	}
	return nil
}

// Complete marks a stage as done
func (t *Tracker) Complete(step string) {
	if !t.completed[step] {
		t.completed[step] = true
		t.done = append(t.done, step)
	}
}

// Completed returns the completed stages in completion order
func (t *Tracker) Completed() []string {
	return append([]string(nil), t.done...)
}
