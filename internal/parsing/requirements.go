package parsing

import (
	"regexp"
	"strings"

	"github.com/theduardomaciel/projeto-ia/internal/skills"
	"github.com/theduardomaciel/projeto-ia/internal/types"
)

// RequirementWeight is the weight given to every extracted requirement
const RequirementWeight = 1.0

type tierHeader struct {
	importance types.Importance
	pattern    *regexp.Regexp
}

var tierHeaders = []tierHeader{
	{types.ImportanceRequired, regexp.MustCompile(`(?i)requisitos?\s+(?:obrigat[oó]rios?|essenciais?|necess[aá]rios?)|required\s+(?:skills|qualifications)|requirements|must\s+have`)},
	{types.ImportancePreferred, regexp.MustCompile(`(?i)requisitos?\s+(?:desej[aá]veis?|preferenciais?)|preferred\s+(?:skills|qualifications|requirements)`)},
	{types.ImportanceNiceToHave, regexp.MustCompile(`(?i)diferenciais?|nice\s+to\s+have|seria\s+um\s+plus|bonus\s+points?`)},
}

// sections that close a requirements tier without opening another
var tierTerminator = regexp.MustCompile(`(?i)^[^\pL]*(?:benef[ií]cios|sobre\s+(?:a\s+)?(?:empresa|n[oó]s)|responsabilidades|atividades|benefits|responsibilities|about\s+(?:us|the\s+company))`)

var tierOrder = []types.Importance{
	types.ImportanceRequired,
	types.ImportancePreferred,
	types.ImportanceNiceToHave,
}

// TermSource supplies the canonical skill matchers
type TermSource interface {
	HardTerms() []*skills.Term
	SoftTerms() []*skills.Term
}

// RequirementsExtractor turns the tiered sections of a job description into
// job requirements
type RequirementsExtractor struct {
	terms TermSource
}

// NewRequirementsExtractor creates an extractor matching the given terms
func NewRequirementsExtractor(terms TermSource) *RequirementsExtractor {
	return &RequirementsExtractor{terms: terms}
}

// Extract returns the requirements of jobText, ordered by tier (required,
// preferred, nice to have) and within a tier hard skills before soft, each
// sorted by name. A skill listed under two tiers yields two requirements.
func (r *RequirementsExtractor) Extract(jobText string) []types.JobRequirement {
	sections := SplitTiers(jobText)

	reqs := []types.JobRequirement{}
	for _, tier := range tierOrder {
		text, ok := sections[tier]
		if !ok {
			continue
		}
		reqs = appendMatches(reqs, text, tier, r.terms.HardTerms(), types.CategoryHard)
		reqs = appendMatches(reqs, text, tier, r.terms.SoftTerms(), types.CategorySoft)
	}
	return reqs
}

// ExtractInto fills the job's requirements from its raw text
func (r *RequirementsExtractor) ExtractInto(job *types.JobProfile) {
	text := job.RawText
	if text == "" {
		text = job.Description
	}
	job.Requirements = r.Extract(text)
}

func appendMatches(reqs []types.JobRequirement, text string, tier types.Importance, terms []*skills.Term, category types.SkillCategory) []types.JobRequirement {
	for _, t := range terms {
		if t.Match(text) {
			reqs = append(reqs, types.JobRequirement{
				Skill:      t.Text,
				Importance: tier,
				Weight:     RequirementWeight,
				Category:   category,
			})
		}
	}
	return reqs
}

// SplitTiers collects the text under each requirements header. The rest of
// a header line after the header belongs to its section ("Diferenciais:
// Kafka"). A tier that appears twice accumulates both sections.
func SplitTiers(text string) map[types.Importance]string {
	collected := make(map[types.Importance][]string)
	var current types.Importance

	for _, line := range strings.Split(text, "\n") {
		if tier, rest, ok := matchTierHeader(line); ok {
			current = tier
			if rest = strings.TrimSpace(rest); rest != "" {
				collected[current] = append(collected[current], rest)
			}
			continue
		}
		if current == "" {
			continue
		}
		if tierTerminator.MatchString(strings.TrimSpace(line)) {
			current = ""
			continue
		}
		collected[current] = append(collected[current], line)
	}

	out := make(map[types.Importance]string, len(collected))
	for tier, lines := range collected {
		out[tier] = strings.Join(lines, "\n")
	}
	return out
}

// matchTierHeader picks the header that starts earliest on the line, the
// longer one on a tie, so "Preferred requirements" is not read as the bare
// "requirements" header
func matchTierHeader(line string) (types.Importance, string, bool) {
	var best []int
	var tier types.Importance
	for _, h := range tierHeaders {
		loc := h.pattern.FindStringIndex(line)
		if loc == nil {
			continue
		}
		if best == nil || loc[0] < best[0] || (loc[0] == best[0] && loc[1] > best[1]) {
			best, tier = loc, h.importance
		}
	}
	if best == nil {
		return "", "", false
	}
	return tier, strings.TrimLeft(line[best[1]:], ":- \t"), true
}

// Summary counts requirements per tier and per category
func (r *RequirementsExtractor) Summary(reqs []types.JobRequirement) types.RequirementsSummary {
	return Summarize(reqs)
}

// Summarize counts requirements per tier and per category and lists the
// required and preferred skill names in requirement order
func Summarize(reqs []types.JobRequirement) types.RequirementsSummary {
	s := types.RequirementsSummary{
		Total:           len(reqs),
		ByImportance:    make(map[types.Importance]int),
		ByCategory:      make(map[types.SkillCategory]int),
		RequiredSkills:  []string{},
		PreferredSkills: []string{},
	}
	for _, req := range reqs {
		s.ByImportance[req.Importance]++
		s.ByCategory[req.Category]++
		switch req.Importance {
		case types.ImportanceRequired:
			s.RequiredSkills = append(s.RequiredSkills, req.Skill)
		case types.ImportancePreferred:
			s.PreferredSkills = append(s.PreferredSkills, req.Skill)
		}
	}
	return s
}
