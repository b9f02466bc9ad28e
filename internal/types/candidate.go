// Package types provides type definitions for structured data used throughout the recruitment pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SkillCategory separates technical from behavioral competencies
type SkillCategory string

const (
	// CategoryHard is a technical competency (language, framework, tool)
	CategoryHard SkillCategory = "hard"
	// CategorySoft is a behavioral or interpersonal competency
	CategorySoft SkillCategory = "soft"
)

// SkillSource records how a skill was matched
type SkillSource string

const (
	SourceDictionary SkillSource = "dictionary"
	SourceSynonym    SkillSource = "synonym"
	SourceLLM        SkillSource = "llm"
)

// EducationStatus is the completion state of a degree
type EducationStatus string

const (
	StatusCompleted  EducationStatus = "completed"
	StatusInProgress EducationStatus = "in_progress"
	StatusIncomplete EducationStatus = "incomplete"
)

// Seniority levels inferred from experience
const (
	SeniorityJunior = "junior"
	SeniorityMid    = "mid"
	SenioritySenior = "senior"
)

// Skill is a matched competency. Two skills are the same skill when their
// names match case-insensitively; category, confidence and source do not
// take part in identity.
type Skill struct {
	Name       string        `json:"name" validate:"required"`
	Category   SkillCategory `json:"category" validate:"oneof=hard soft"`
	Confidence float64       `json:"confidence" validate:"gte=0,lte=1"`
	Source     SkillSource   `json:"source" validate:"oneof=dictionary synonym llm"`
}

// Key returns the identity key of the skill
func (s Skill) Key() string {
	return strings.ToLower(s.Name)
}

// Equal reports whether two skills share the same case-insensitive name
func (s Skill) Equal(other Skill) bool {
	return strings.EqualFold(s.Name, other.Name)
}

// Validate validates the Skill using the validator.
func (s Skill) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

// Experience is one professional experience entry
type Experience struct {
	Role        string `json:"role" validate:"required"`
	Company     string `json:"company,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// Validate validates the Experience using the validator.
func (e Experience) Validate() error {
	validate := validator.New()
	return validate.Struct(e)
}

// Education is one academic entry
type Education struct {
	Degree         string          `json:"degree" validate:"required"`
	Institution    string          `json:"institution,omitempty"`
	CompletionYear string          `json:"completion_year,omitempty" validate:"omitempty,len=4,numeric"`
	Status         EducationStatus `json:"status" validate:"oneof=completed in_progress incomplete"`
}

// Validate validates the Education using the validator.
func (e Education) Validate() error {
	validate := validator.New()
	return validate.Struct(e)
}

// Candidate is a resume being analyzed. The loader fills Name and RawText;
// every later stage mutates the same value in place.
type Candidate struct {
	Name           string `json:"name"`
	FilePath       string `json:"file_path,omitempty"`
	RawText        string `json:"-"`
	NormalizedText string `json:"-"`

	HardSkills  []Skill      `json:"hard_skills"`
	SoftSkills  []Skill      `json:"soft_skills"`
	Experiences []Experience `json:"experiences"`
	Education   []Education  `json:"education"`

	ExperienceYears float64 `json:"experience_years"`
	Seniority       string  `json:"seniority,omitempty"`

	Score          float64        `json:"score"`
	ScoreBreakdown ScoreBreakdown `json:"score_breakdown"`
	Explanation    string         `json:"explanation,omitempty"`

	Quality *QualityReport `json:"quality,omitempty"`
}

// NewCandidate creates a candidate with only identity and raw text populated
func NewCandidate(name, rawText, filePath string) *Candidate {
	return &Candidate{
		Name:        name,
		RawText:     rawText,
		FilePath:    filePath,
		HardSkills:  []Skill{},
		SoftSkills:  []Skill{},
		Experiences: []Experience{},
		Education:   []Education{},
	}
}

// AddSkill appends the skill to the collection of its category unless a skill
// with the same case-insensitive name is already there. Returns false on duplicates.
func (c *Candidate) AddSkill(s Skill) bool {
	target := &c.HardSkills
	if s.Category == CategorySoft {
		target = &c.SoftSkills
	}
	for _, existing := range *target {
		if existing.Equal(s) {
			return false
		}
	}
	*target = append(*target, s)
	return true
}

// HasSkill reports whether the candidate has a hard or soft skill with the given name
func (c *Candidate) HasSkill(name string) bool {
	for _, s := range c.HardSkills {
		if strings.EqualFold(s.Name, name) {
			return true
		}
	}
	for _, s := range c.SoftSkills {
		if strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

// SkillNames returns the names of the skills in a category, in match order
func (c *Candidate) SkillNames(category SkillCategory) []string {
	src := c.HardSkills
	if category == CategorySoft {
		src = c.SoftSkills
	}
	names := make([]string, 0, len(src))
	for _, s := range src {
		names = append(names, s.Name)
	}
	return names
}

// ScoreBreakdown holds the per-category contributions of a candidate's score
type ScoreBreakdown struct {
	HardSkills       float64            `json:"hard_skills"`
	SoftSkills       float64            `json:"soft_skills"`
	Experience       float64            `json:"experience"`
	Education        float64            `json:"education"`
	HardSkillsDetail map[string]float64 `json:"hard_skills_detail,omitempty"`
	SoftSkillsDetail map[string]float64 `json:"soft_skills_detail,omitempty"`
}

// Total returns the sum of the four categories rounded to 2 decimals
func (b ScoreBreakdown) Total() float64 {
	return Round(b.HardSkills+b.SoftSkills+b.Experience+b.Education, 2)
}

// Categories returns the category scores keyed by category name
func (b ScoreBreakdown) Categories() map[string]float64 {
	return map[string]float64{
		"hard_skills": b.HardSkills,
		"soft_skills": b.SoftSkills,
		"experience":  b.Experience,
		"education":   b.Education,
	}
}

// Round rounds v to the given number of decimal places, half away from zero
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
