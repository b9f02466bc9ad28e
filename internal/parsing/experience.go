package parsing

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/theduardomaciel/projeto-ia/internal/types"
)

var (
	experienceStart = compileAll(
		`(?i)experi[eê]ncia\s+profissional`,
		`(?i)experi[eê]ncias?\s+profissionais?`,
		`(?i)hist[oó]rico\s+profissional`,
		`(?i)trajet[oó]ria\s+profissional`,
		`(?i)experi[eê]ncia`,
		`(?i)professional\s+experience`,
		`(?i)experience`,
		`(?i)work\s+experience`,
		`(?i)employment\s+history`,
		`(?i)career\s+history`,
		`(?i)professional\s+background`,
	)
	experienceEnd = compileAll(
		`(?i)forma[cç][aã]o|education|academics?`,
		`(?i)habilidades|skills`,
		`(?i)compet[eê]ncias`,
		`(?i)certifica[cç][oõ]es|certifications`,
		`(?i)projetos|projects`,
		`(?i)idiomas|languages`,
		`(?i)resumo|summary`,
	)

	// role | company | period at the start of a line
	jobLinePattern = regexp.MustCompile(`(?i)^(?P<role>[\p{L}\p{N}_\s]+?)\s*[|\-–—]\s*(?P<company>[\p{L}\p{N}_\s]+?)\s*[|\-–—]\s*(?P<period>[\d/\p{L}\p{N}_\s\-–—]+)`)

	monthPattern = `(?:jan(?:eiro)?|feb|fev(?:ereiro)?|mar(?:[cç]o|ch)?|apr|abr(?:il)?|may|mai(?:o)?|jun(?:ho|e)?|jul(?:ho|y)?|aug|ago(?:sto)?|sep|set(?:embro)?|oct|out(?:ubro)?|nov(?:embro)?|dec|dez(?:embro)?)`

	// Jan/2020 - Dez/2022, 2019-2021, 2020 - atual
	datePattern = regexp.MustCompile(`(?i)(?P<start>(?:` + monthPattern + `[\s/.-]*)?\d{4}|\d{4})\s*(?:[-–—]|at[eé]|a|to)\s*(?P<end>(?:` + monthPattern + `[\s/.-]*)?\d{4}|\d{4}|atual|present|current|ongoing)`)

	// 2 anos, 3.5 years
	durationPattern = regexp.MustCompile(`(?i)(?P<years>\d+(?:[.,]\d+)?)\s*(?:anos?|years?)`)

	companySeparator = regexp.MustCompile(`(?i)(?:@|\sem\s|\sat\s)`)
	pipeSeparator    = regexp.MustCompile(`\s*\|\s*`)
	dashSeparator    = regexp.MustCompile(`\s+[-–—]\s+`)
	companySplit     = regexp.MustCompile(`[|,]`)
	fourDigits       = regexp.MustCompile(`\d{4}`)
	bareYear         = regexp.MustCompile(`(?:19|20)\d{2}`)
	currentMarker    = regexp.MustCompile(`(?i)\d{4}|atual|present|current`)
	oddChar          = regexp.MustCompile(`[^\p{L}\p{N}_\s/\-]`)
	anyLetter        = regexp.MustCompile(`\pL`)

	roleKeywords = newKeywordSet(
		"desenvolvedor", "desenvolvedora", "developer",
		"engenheiro", "engenheira", "engineer",
		"analista", "analyst",
		"programador", "programadora", "programmer",
		"arquiteto", "arquiteta", "architect",
		"tech lead", "líder técnico", "líder técnica",
		"gerente", "manager",
		"coordenador", "coordenadora", "coordinator",
		"consultor", "consultora", "consultant",
		"especialista", "specialist",
		"estagiário", "estagiária", "intern", "trainee",
		"junior", "pleno", "sênior", "senior", "staff",
	)
	companyHints = newKeywordSet(
		"empresa", "company", "corp", "inc", "ltda", "s.a", "startup",
		"solutions", "group", "consulting", "labs", "studio",
	)
)

var bulletPrefixes = []string{"-", "•", "*", "·", "–"}

const bulletCutset = "-•*· "

// RolePlausibility bounds the heuristic that decides whether a line can be a
// job title when it has no role keyword
type RolePlausibility struct {
	MinLength   int
	MaxLength   int
	MaxOddChars int
}

// DefaultRolePlausibility is tuned for Portuguese and English resumes
var DefaultRolePlausibility = RolePlausibility{MinLength: 5, MaxLength: 100, MaxOddChars: 5}

// ExperienceExtractor finds professional experience entries in resume text
type ExperienceExtractor struct {
	Plausibility RolePlausibility

	fallback *Fallback
	now      func() time.Time
}

// NewExperienceExtractor creates an extractor. fallback may be nil, in which
// case no LLM is consulted when the heuristics find nothing.
func NewExperienceExtractor(fallback *Fallback) *ExperienceExtractor {
	return &ExperienceExtractor{
		Plausibility: DefaultRolePlausibility,
		fallback:     fallback,
		now:          time.Now,
	}
}

// Extract returns the experiences found in the experience section of text,
// in document order. It never calls the LLM.
func (e *ExperienceExtractor) Extract(text string) []types.Experience {
	section, ok := FindSection(text, experienceStart, experienceEnd)
	if !ok || strings.TrimSpace(section) == "" {
		return nil
	}

	var out []types.Experience
	for _, block := range SplitExperienceBlocks(section, e.Plausibility) {
		if exp, ok := e.parseBlock(block); ok {
			out = append(out, exp)
		}
	}
	return out
}

// ExtractFromCandidate fills the candidate's experiences, total years and
// seniority. The raw text is tried first, then the normalized text, then the
// LLM fallback. When no dated experience is found, years stated in prose
// ("5 anos de experiência") are used for the total.
func (e *ExperienceExtractor) ExtractFromCandidate(ctx context.Context, c *types.Candidate) []types.Experience {
	var exps []types.Experience
	for _, variant := range textVariants(c) {
		if exps = e.Extract(variant); len(exps) > 0 {
			break
		}
	}
	if len(exps) == 0 {
		exps = e.fallback.experiences(ctx, c)
	}
	if exps == nil {
		exps = []types.Experience{}
	}

	now := e.now()
	years := CalculateTotalYears(exps, now)
	if years == 0 {
		years = StatedYears(c.RawText)
	}

	role := ""
	if len(exps) > 0 {
		role = exps[0].Role
	}

	c.Experiences = exps
	c.ExperienceYears = years
	c.Seniority = InferSeniority(years, role)
	return exps
}

// textVariants lists the raw and normalized texts of a candidate, without
// duplicates
func textVariants(c *types.Candidate) []string {
	var out []string
	if c.RawText != "" {
		out = append(out, c.RawText)
	}
	if c.NormalizedText != "" && c.NormalizedText != c.RawText {
		out = append(out, c.NormalizedText)
	}
	return out
}

// SplitExperienceBlocks groups section lines into one block per job. p
// decides whether an otherwise unmarked dated line can open a new entry.
func SplitExperienceBlocks(section string, p RolePlausibility) []string {
	var blocks []string
	var current []string

	flush := func() {
		var kept []string
		for _, l := range current {
			if l != "" {
				kept = append(kept, l)
			}
		}
		if len(kept) > 0 {
			blocks = append(blocks, strings.Join(kept, "\n"))
		}
	}

	for _, line := range strings.Split(section, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			if len(current) > 0 {
				current = append(current, "")
			}
			continue
		}
		if len(current) > 0 && startsExperienceBlock(stripped, p) {
			flush()
			current = []string{stripped}
			continue
		}
		current = append(current, stripped)
	}
	flush()
	return blocks
}

func hasBulletPrefix(line string) bool {
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// startsExperienceBlock decides whether a line opens a new job entry
func startsExperienceBlock(line string, p RolePlausibility) bool {
	normalized := strings.TrimSpace(strings.TrimLeft(line, bulletCutset))

	if jobLinePattern.MatchString(line) {
		return true
	}

	// all-caps lines are usually job titles
	if isUpperText(normalized) && utf8.RuneCountInString(normalized) > 4 {
		return true
	}

	hasRole := roleKeywords.contains(normalized)

	if hasBulletPrefix(line) {
		return hasRole && (datePattern.MatchString(line) || strings.Contains(line, "|") || fourDigits.MatchString(line))
	}

	if hasRole {
		if currentMarker.MatchString(line) {
			return true
		}
		if strings.Contains(line, "|") || strings.Contains(line, "@") || strings.Contains(line, " - ") {
			return true
		}
		if len(strings.Fields(normalized)) <= 6 {
			return true
		}
	}

	return p.accepts(normalized) && fourDigits.MatchString(line)
}

// accepts reports whether text looks like a job title. A title needs at
// least one letter, so bare date lines never qualify.
func (p RolePlausibility) accepts(text string) bool {
	if roleKeywords.contains(text) {
		return true
	}
	if !anyLetter.MatchString(text) {
		return false
	}
	n := utf8.RuneCountInString(text)
	if n < p.MinLength || n > p.MaxLength {
		return false
	}
	return len(oddChar.FindAllString(text, -1)) <= p.MaxOddChars
}

// parseBlock turns one block into an experience; ok is false when the block
// does not look like a job entry
func (e *ExperienceExtractor) parseBlock(block string) (types.Experience, bool) {
	lines := nonEmptyLines(block)
	if len(lines) == 0 {
		return types.Experience{}, false
	}

	first := lines[0]
	firstClean := strings.TrimSpace(strings.TrimLeft(first, bulletCutset))
	if matchesAnyAtStart(first, experienceStart) || firstClean == "" {
		return types.Experience{}, false
	}
	if hasBulletPrefix(first) && !roleKeywords.contains(firstClean) {
		return types.Experience{}, false
	}

	var role, company, period string
	if m := jobLinePattern.FindStringSubmatch(first); m != nil {
		role = strings.TrimSpace(m[jobLinePattern.SubexpIndex("role")])
		company = strings.TrimSpace(m[jobLinePattern.SubexpIndex("company")])
		period = strings.TrimSpace(m[jobLinePattern.SubexpIndex("period")])
	} else {
		role, company, period = splitJobLine(first)
	}
	if role == "" {
		role = first
	}

	if !e.Plausibility.accepts(role) {
		return types.Experience{}, false
	}
	if company == "" {
		company = companyFromLines(lines)
	}
	if period == "" {
		period = periodFromLines(lines)
	}

	return types.Experience{
		Role:        role,
		Company:     company,
		Duration:    period,
		Description: strings.Join(lines[1:], "\n"),
	}, true
}

// splitJobLine assigns the separator-delimited parts of an unstructured
// title line to role, company and period by position. Pipes take priority
// over spaced dashes so that "Dev | 2019 - 2021" keeps its date range.
func splitJobLine(line string) (role, company, period string) {
	sep := dashSeparator
	if strings.Contains(line, "|") {
		sep = pipeSeparator
	}
	var parts []string
	for _, p := range sep.Split(line, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	switch {
	case len(parts) >= 3:
		return parts[0], parts[1], parts[2]
	case len(parts) == 2:
		if datePattern.MatchString(parts[1]) {
			return parts[0], "", parts[1]
		}
		return parts[0], parts[1], ""
	case len(parts) == 1:
		return parts[0], "", ""
	}
	return line, "", ""
}

// companyFromLines looks for "@ X", "em X", "at X" or a company-like token
// in the lines after the title
func companyFromLines(lines []string) string {
	for _, line := range lines[1:] {
		if loc := companySeparator.FindStringIndex(line); loc != nil {
			if name := strings.Trim(line[loc[1]:], " -|,."); name != "" {
				return truncateRunes(name, 120)
			}
		}
		for _, part := range companySplit.Split(line, -1) {
			part = strings.TrimSpace(part)
			if part != "" && companyHints.contains(part) {
				return truncateRunes(part, 120)
			}
		}
	}
	return ""
}

// periodFromLines looks for a date range or a duration phrase, falling back
// to the first two bare years of the block
func periodFromLines(lines []string) string {
	for _, line := range lines {
		if m := datePattern.FindString(line); m != "" {
			return strings.TrimSpace(m)
		}
		if durationPattern.MatchString(line) {
			return strings.TrimSpace(line)
		}
	}
	if years := bareYear.FindAllString(strings.Join(lines, " "), 2); len(years) == 2 {
		return years[0] + "-" + years[1]
	}
	return ""
}
