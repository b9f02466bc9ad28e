package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/theduardomaciel/projeto-ia/internal/schemas"
	"github.com/theduardomaciel/projeto-ia/internal/types"
	"gopkg.in/yaml.v3"
)

// DefaultSkillWeight is the per-skill weight used when a skill has no override
const DefaultSkillWeight = 5.0

// ConfigError is a fatal configuration problem: the pipeline cannot run
// without its vocabulary and weights.
type ConfigError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error in %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("config error in %s: %s", e.Path, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// SkillsConfig is the skills dictionary: grouped hard and soft terms plus
// synonym aliases keyed by canonical name. All terms are lowercase.
type SkillsConfig struct {
	HardSkills map[string][]string `json:"hard_skills" yaml:"hard_skills" validate:"required,min=1"`
	SoftSkills map[string][]string `json:"soft_skills" yaml:"soft_skills" validate:"required,min=1"`
	Synonyms   map[string][]string `json:"synonyms" yaml:"synonyms"`
}

// NewSkillsConfig builds a normalized dictionary from in-memory groups
func NewSkillsConfig(hard, soft, synonyms map[string][]string) *SkillsConfig {
	cfg := &SkillsConfig{HardSkills: hard, SoftSkills: soft, Synonyms: synonyms}
	cfg.normalize()
	return cfg
}

func (s *SkillsConfig) normalize() {
	s.HardSkills = lowerGroups(s.HardSkills)
	s.SoftSkills = lowerGroups(s.SoftSkills)
	s.Synonyms = lowerGroups(s.Synonyms)
}

func lowerGroups(groups map[string][]string) map[string][]string {
	out := make(map[string][]string, len(groups))
	for key, terms := range groups {
		lowered := make([]string, 0, len(terms))
		for _, term := range terms {
			term = strings.ToLower(strings.TrimSpace(term))
			if term != "" {
				lowered = append(lowered, term)
			}
		}
		out[strings.ToLower(strings.TrimSpace(key))] = lowered
	}
	return out
}

// HardTerms returns the distinct canonical hard skills, sorted
func (s *SkillsConfig) HardTerms() []string {
	return flatten(s.HardSkills)
}

// SoftTerms returns the distinct canonical soft skills, sorted
func (s *SkillsConfig) SoftTerms() []string {
	return flatten(s.SoftSkills)
}

func flatten(groups map[string][]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, terms := range groups {
		for _, term := range terms {
			if !seen[term] {
				seen[term] = true
				out = append(out, term)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Category resolves the category of a canonical term. Hard membership wins
// when a term is listed in both.
func (s *SkillsConfig) Category(canonical string) (types.SkillCategory, bool) {
	for _, term := range s.HardTerms() {
		if term == canonical {
			return types.CategoryHard, true
		}
	}
	for _, term := range s.SoftTerms() {
		if term == canonical {
			return types.CategorySoft, true
		}
	}
	return "", false
}

// AliasMap maps every alias to its canonical name. Every canonical hard and
// soft term maps to itself.
func (s *SkillsConfig) AliasMap() map[string]string {
	aliases := make(map[string]string)
	for canonical, list := range s.Synonyms {
		for _, alias := range list {
			aliases[alias] = canonical
		}
	}
	for _, term := range s.HardTerms() {
		aliases[term] = term
	}
	for _, term := range s.SoftTerms() {
		aliases[term] = term
	}
	return aliases
}

// WeightsConfig holds the scoring weights
type WeightsConfig struct {
	CategoryWeights    types.CategoryWeights `json:"category_weights" yaml:"category_weights"`
	SkillWeights       map[string]float64    `json:"skill_weights" yaml:"skill_weights" validate:"dive,gte=0"`
	DefaultSkillWeight float64               `json:"default_skill_weight" yaml:"default_skill_weight" validate:"gte=0"`
}

// DefaultWeights returns the weights used when no file overrides them
func DefaultWeights() *WeightsConfig {
	return &WeightsConfig{
		CategoryWeights:    types.DefaultCategoryWeights(),
		SkillWeights:       map[string]float64{},
		DefaultSkillWeight: DefaultSkillWeight,
	}
}

// SkillWeight returns the configured weight for a skill or the default
func (w *WeightsConfig) SkillWeight(name string) float64 {
	if weight, ok := w.SkillWeights[strings.ToLower(name)]; ok {
		return weight
	}
	if w.DefaultSkillWeight > 0 {
		return w.DefaultSkillWeight
	}
	return DefaultSkillWeight
}

// Domain bundles the read-only configuration shared by every analysis
type Domain struct {
	Skills  *SkillsConfig
	Weights *WeightsConfig
}

// LoadDomain loads and validates the skills dictionary and weights files
func LoadDomain(skillsPath, weightsPath string) (*Domain, error) {
	skills, err := LoadSkills(skillsPath)
	if err != nil {
		return nil, err
	}
	weights, err := LoadWeights(weightsPath)
	if err != nil {
		return nil, err
	}
	return &Domain{Skills: skills, Weights: weights}, nil
}

// LoadSkills loads the skills dictionary from a JSON or YAML file
func LoadSkills(path string) (*SkillsConfig, error) {
	doc, err := readDocument(path, schemas.SkillsSchema)
	if err != nil {
		return nil, err
	}

	var cfg SkillsConfig
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return nil, &ConfigError{Path: path, Message: "failed to decode skills dictionary", Cause: err}
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, &ConfigError{Path: path, Message: "invalid skills dictionary", Cause: err}
	}
	cfg.normalize()
	return &cfg, nil
}

// LoadWeights loads the scoring weights from a JSON or YAML file
func LoadWeights(path string) (*WeightsConfig, error) {
	doc, err := readDocument(path, schemas.WeightsSchema)
	if err != nil {
		return nil, err
	}

	cfg := DefaultWeights()
	if err := json.Unmarshal(doc, cfg); err != nil {
		return nil, &ConfigError{Path: path, Message: "failed to decode weights", Cause: err}
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, &ConfigError{Path: path, Message: "invalid weights", Cause: err}
	}
	if cfg.DefaultSkillWeight == 0 {
		cfg.DefaultSkillWeight = DefaultSkillWeight
	}
	normalized := make(map[string]float64, len(cfg.SkillWeights))
	for name, weight := range cfg.SkillWeights {
		normalized[strings.ToLower(name)] = weight
	}
	cfg.SkillWeights = normalized
	return cfg, nil
}

// readDocument reads a config file, converts YAML to JSON and validates the
// result against the embedded schema.
func readDocument(path, schemaName string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Path: path, Message: "file not found", Cause: err}
		}
		return nil, &ConfigError{Path: path, Message: "failed to read file", Cause: err}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var parsed any
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, &ConfigError{Path: path, Message: "failed to parse YAML", Cause: err}
		}
		data, err = json.Marshal(parsed)
		if err != nil {
			return nil, &ConfigError{Path: path, Message: "failed to convert YAML", Cause: err}
		}
	}

	if err := schemas.Validate(schemaName, data); err != nil {
		return nil, &ConfigError{Path: path, Message: "schema validation failed", Cause: err}
	}
	return data, nil
}

// resolveVariant picks the first existing file among base.json, base.yaml
// and base.yml, defaulting to base.json.
func resolveVariant(base string) string {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext
		}
	}
	return base + ".json"
}
