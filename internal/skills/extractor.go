// Package skills matches the configured skills dictionary against resume and
// job text.
package skills

import (
	"fmt"
	"sort"

	"github.com/theduardomaciel/projeto-ia/internal/config"
	"github.com/theduardomaciel/projeto-ia/internal/ingestion"
	"github.com/theduardomaciel/projeto-ia/internal/types"
)

// Confidence assigned by match source
const (
	DictionaryConfidence = 0.9
	SynonymConfidence    = 0.85
)

type alias struct {
	term      *Term
	canonical string
	category  types.SkillCategory
}

// Extractor finds dictionary skills in text. It is immutable after
// construction and safe for concurrent use.
type Extractor struct {
	aliases   []alias
	hardTerms []*Term
	softTerms []*Term
}

// Match is one canonical skill found in a text
type Match struct {
	Canonical string
	Category  types.SkillCategory
	Source    types.SkillSource
	Count     int
}

// NewExtractor compiles a matcher for every alias in the dictionary
func NewExtractor(cfg *config.SkillsConfig) (*Extractor, error) {
	aliasMap := cfg.AliasMap()
	names := make([]string, 0, len(aliasMap))
	for name := range aliasMap {
		names = append(names, name)
	}
	sort.Strings(names)

	e := &Extractor{}
	for _, name := range names {
		canonical := aliasMap[name]
		category, ok := cfg.Category(canonical)
		if !ok {
			// synonym of a term missing from both skill lists
			continue
		}
		term, err := CompileTerm(name)
		if err != nil {
			return nil, fmt.Errorf("failed to compile skill %q: %w", name, err)
		}
		e.aliases = append(e.aliases, alias{term: term, canonical: canonical, category: category})
	}

	for _, name := range cfg.HardTerms() {
		term, err := CompileTerm(name)
		if err != nil {
			return nil, fmt.Errorf("failed to compile skill %q: %w", name, err)
		}
		e.hardTerms = append(e.hardTerms, term)
	}
	for _, name := range cfg.SoftTerms() {
		term, err := CompileTerm(name)
		if err != nil {
			return nil, fmt.Errorf("failed to compile skill %q: %w", name, err)
		}
		e.softTerms = append(e.softTerms, term)
	}
	return e, nil
}

// Matches returns every canonical skill present in text with its merged hit
// count. A direct hit on the canonical term makes the source "dictionary"
// even when synonyms also matched.
func (e *Extractor) Matches(text string) []Match {
	folded := ingestion.Fold(text)
	byCanonical := make(map[string]*Match)
	var order []string

	for _, a := range e.aliases {
		hits := a.term.count(folded, -1)
		if hits == 0 {
			continue
		}
		source := types.SourceSynonym
		if a.term.Text == a.canonical {
			source = types.SourceDictionary
		}
		m, ok := byCanonical[a.canonical]
		if !ok {
			m = &Match{Canonical: a.canonical, Category: a.category, Source: source}
			byCanonical[a.canonical] = m
			order = append(order, a.canonical)
		}
		m.Count += hits
		if source == types.SourceDictionary {
			m.Source = types.SourceDictionary
		}
	}

	sort.Strings(order)
	out := make([]Match, 0, len(order))
	for _, name := range order {
		out = append(out, *byCanonical[name])
	}
	return out
}

// ExtractFromText returns one skill per canonical name found in text,
// sorted by name
func (e *Extractor) ExtractFromText(text string) []types.Skill {
	matches := e.Matches(text)
	skills := make([]types.Skill, 0, len(matches))
	for _, m := range matches {
		confidence := SynonymConfidence
		if m.Source == types.SourceDictionary {
			confidence = DictionaryConfidence
		}
		skills = append(skills, types.Skill{
			Name:       m.Canonical,
			Category:   m.Category,
			Confidence: confidence,
			Source:     m.Source,
		})
	}
	return skills
}

// ExtractFromCandidate adds the skills found in the candidate's normalized
// text to its hard and soft collections
func (e *Extractor) ExtractFromCandidate(c *types.Candidate) []types.Skill {
	text := c.NormalizedText
	if text == "" {
		text = ingestion.Normalize(c.RawText, ingestion.DefaultNormalizeOptions)
	}
	extracted := e.ExtractFromText(text)
	for _, s := range extracted {
		c.AddSkill(s)
	}
	return extracted
}

// HardTerms returns the matchers of every canonical hard skill, sorted by term
func (e *Extractor) HardTerms() []*Term { return e.hardTerms }

// SoftTerms returns the matchers of every canonical soft skill, sorted by term
func (e *Extractor) SoftTerms() []*Term { return e.softTerms }
