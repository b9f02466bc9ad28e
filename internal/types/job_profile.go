// Package types provides type definitions for structured data used throughout the recruitment pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Importance is the tier a job requirement was listed under
type Importance string

const (
	ImportanceRequired   Importance = "required"
	ImportancePreferred  Importance = "preferred"
	ImportanceNiceToHave Importance = "nice_to_have"
)

// JobRequirement is a skill the job asks for
type JobRequirement struct {
	Skill      string        `json:"skill" validate:"required"`
	Importance Importance    `json:"importance" validate:"oneof=required preferred nice_to_have"`
	Weight     float64       `json:"weight" validate:"gte=0"`
	Category   SkillCategory `json:"category" validate:"oneof=hard soft"`
}

// CategoryWeights is the relative importance of each scoring category
type CategoryWeights struct {
	HardSkills float64 `json:"hard_skills" yaml:"hard_skills" validate:"gte=0"`
	SoftSkills float64 `json:"soft_skills" yaml:"soft_skills" validate:"gte=0"`
	Experience float64 `json:"experience" yaml:"experience" validate:"gte=0"`
	Education  float64 `json:"education" yaml:"education" validate:"gte=0"`
}

// DefaultCategoryWeights returns the weights used when none are configured
func DefaultCategoryWeights() CategoryWeights {
	return CategoryWeights{
		HardSkills: 0.6,
		SoftSkills: 0.2,
		Experience: 0.15,
		Education:  0.05,
	}
}

// JobProfile is a parsed job description
type JobProfile struct {
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	RawText      string           `json:"-"`
	FilePath     string           `json:"file_path,omitempty"`
	Requirements []JobRequirement `json:"requirements"`
	Weights      CategoryWeights  `json:"weights"`
	ParsedAt     time.Time        `json:"parsed_at"`
}

// NewJobProfile creates a job profile with default category weights
func NewJobProfile(title, description, rawText string) *JobProfile {
	return &JobProfile{
		Title:        title,
		Description:  description,
		RawText:      rawText,
		Requirements: []JobRequirement{},
		Weights:      DefaultCategoryWeights(),
		ParsedAt:     time.Now(),
	}
}

// AddRequirement appends a requirement to the job
func (j *JobProfile) AddRequirement(skill string, importance Importance, weight float64, category SkillCategory) {
	j.Requirements = append(j.Requirements, JobRequirement{
		Skill:      skill,
		Importance: importance,
		Weight:     weight,
		Category:   category,
	})
}

// SkillsByImportance returns the requirement skills listed under one tier
func (j *JobProfile) SkillsByImportance(importance Importance) []string {
	var out []string
	for _, req := range j.Requirements {
		if req.Importance == importance {
			out = append(out, req.Skill)
		}
	}
	return out
}

// RequirementsSummary counts job requirements per tier and category
type RequirementsSummary struct {
	Total           int                   `json:"total"`
	ByImportance    map[Importance]int    `json:"by_importance"`
	ByCategory      map[SkillCategory]int `json:"by_category"`
	RequiredSkills  []string              `json:"required_skills"`
	PreferredSkills []string              `json:"preferred_skills"`
}

// StructuredJob is the advanced job input: a position described by fields
// instead of free text.
type StructuredJob struct {
	Position       string   `json:"position" validate:"required"`
	Area           string   `json:"area"`
	Seniority      string   `json:"seniority"`
	HardSkills     []string `json:"hard_skills" validate:"required,min=1,dive,required"`
	SoftSkills     []string `json:"soft_skills" validate:"dive,required"`
	AdditionalInfo string   `json:"additional_info"`
}

// Validate validates the StructuredJob using the validator.
func (s StructuredJob) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

// Render turns the structured job into a job text whose section headers are
// understood by the requirements extractor.
func (s StructuredJob) Render() string {
	lines := []string{
		fmt.Sprintf("Vaga: %s", s.Position),
		fmt.Sprintf("Área: %s", s.Area),
		fmt.Sprintf("Senioridade: %s", s.Seniority),
		"",
		"Requisitos Obrigatórios:",
	}
	for _, skill := range s.HardSkills {
		lines = append(lines, "- "+skill)
	}
	if len(s.SoftSkills) > 0 {
		lines = append(lines, "", "Requisitos Desejáveis:")
		for _, skill := range s.SoftSkills {
			lines = append(lines, "- "+skill)
		}
	}
	if strings.TrimSpace(s.AdditionalInfo) != "" {
		lines = append(lines, "", "Diferenciais:", s.AdditionalInfo)
	}
	return strings.Join(lines, "\n") + "\n"
}
