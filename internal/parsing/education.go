package parsing

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/theduardomaciel/projeto-ia/internal/types"
)

// Degree types, from highest to lowest precedence
const (
	DegreeDoctorate      = "doutorado"
	DegreeMasters        = "mestrado"
	DegreeMBA            = "mba"
	DegreeSpecialization = "especialização"
	DegreeBachelor       = "bacharelado"
	DegreeLicentiate     = "licenciatura"
	DegreeTechnologist   = "tecnólogo"
	DegreeTechnical      = "técnico"
	DegreeHighSchool     = "ensino médio"
)

type degreeRule struct {
	kind     string
	display  string
	level    int
	keywords *keywordSet
}

// rules are tried in order, so MBA precedes the broader "master" keywords
var degreeRules = []degreeRule{
	{DegreeDoctorate, "Doutorado", 6, newKeywordSet("doutorado", "doctorado", "phd", "ph.d", "doctorate", "doctor of philosophy")},
	{DegreeMBA, "MBA", 5, newKeywordSet("mba", "master of business", "executive mba")},
	{DegreeMasters, "Mestrado", 5, newKeywordSet("mestrado", "master", "msc", "m.sc", "m.s", "ms", "master of science", "master of engineering")},
	{DegreeSpecialization, "Especialização", 4, newKeywordSet("especialização", "pós-graduação", "postgraduate", "especialista", "lato sensu", "certificate program")},
	{DegreeBachelor, "Bacharelado", 3, newKeywordSet("bacharelado", "bachelor", "b.sc", "b.s", "b.a", "b.s.", "b.a.", "graduação", "undergraduate", "superior completo")},
	{DegreeLicentiate, "Licenciatura", 3, newKeywordSet("licenciatura", "licentiate", "teaching degree", "b.ed")},
	{DegreeTechnologist, "Tecnólogo", 2, newKeywordSet("tecnólogo", "technology degree", "tecnologia", "cst", "curso superior de tecnologia", "associate of applied science", "aas")},
	{DegreeTechnical, "Técnico", 1, newKeywordSet("técnico", "technical course", "ensino técnico", "vocational", "trade school")},
	{DegreeHighSchool, "Ensino Médio", 0, newKeywordSet("ensino médio", "high school", "secondary", "secundário", "highschool")},
}

var (
	educationStart = compileAll(
		`(?i)forma[cç][aã]o\s+acad[eê]mica`,
		`(?i)forma[cç][aã]o`,
		`(?i)educa[cç][aã]o`,
		`(?i)education`,
		`(?i)academic\s+background`,
		`(?i)academic\s+history`,
		`(?i)escolaridade`,
		`(?i)academic\s+profile`,
		`(?i)studies`,
	)
	educationEnd = compileAll(
		`(?i)experi[eê]ncia|experience`,
		`(?i)habilidades|skills`,
		`(?i)compet[eê]ncias`,
		`(?i)certifica[cç][oõ]es|certifications`,
		`(?i)projetos|projects`,
		`(?i)idiomas|languages`,
		`(?i)resumo|summary`,
	)

	educationRange = regexp.MustCompile(`(?i)(?P<start>(?:` + monthPattern + `[\s/.-]*)?\d{4}|\d{4})\s*(?:[-–—]|at[eé]|a|to|until)\s*(?P<end>(?:` + monthPattern + `[\s/.-]*)?\d{4}|\d{4}|atual|present|current|ongoing)`)
	expectedYear   = regexp.MustCompile(`(?i)(?:expected|previsto|prevista|graduation|class of)\D*((?:19|20)\d{2})`)

	structuredSplit = regexp.MustCompile(`\s*[|•]\s*`)
	pipeYear        = regexp.MustCompile(`\|\s*\d{4}`)
	yearSpan        = regexp.MustCompile(`\d{4}\s*[-–—]\s*\d{4}`)
	trailingSep     = regexp.MustCompile(`[|\-–—]\s*$`)
	nonASCIILetter  = regexp.MustCompile(`[^A-Za-z]`)
	hasLetter       = regexp.MustCompile(`\pL`)

	completedStatus  = newKeywordSet("completo", "concluído", "concluded", "completed", "formado", "graduated", "finished")
	inProgressStatus = newKeywordSet("cursando", "em andamento", "in progress", "current", "presente", "ongoing", "currently enrolled", "studying", "expected", "previsto")
	incompleteStatus = newKeywordSet("incompleto", "trancado", "incomplete", "discontinued", "dropped", "paused")

	institutionHints = prefixes(
		"universidade", "university", "faculdade", "college", "instituto", "institute",
		"school", "academy", "polytechnic", "centro universitário", "ifal", "uf", "puc", "federal",
	)
	educationNoise = newKeywordSet("conhecimento", "habilidade", "skill", "competência", "competencia")

	relevantAreas = prefixes(
		"ciência da computação", "computer science", "computação",
		"engenharia de software", "software engineering",
		"sistemas de informação", "information systems",
		"análise e desenvolvimento", "systems analysis",
		"engenharia da computação", "computer engineering",
		"tecnologia da informação", "information technology",
		"ciência de dados", "data science",
		"inteligência artificial", "artificial intelligence",
	)
)

// ClassifyDegree returns the degree type named in text, or "" when none is
func ClassifyDegree(text string) string {
	if r, ok := classify(text); ok {
		return r.kind
	}
	return ""
}

func classify(text string) (degreeRule, bool) {
	for _, r := range degreeRules {
		if r.keywords.contains(text) {
			return r, true
		}
	}
	return degreeRule{}, false
}

func containsDegree(text string) bool {
	_, ok := classify(text)
	return ok
}

// DegreeLevel maps a degree text to its level, from 0 (high school or
// unknown) to 6 (doctorate)
func DegreeLevel(degree string) int {
	if r, ok := classify(degree); ok {
		return r.level
	}
	return 0
}

// HighestDegreeLevel returns the highest level among the entries, 0 when
// there are none
func HighestDegreeLevel(educations []types.Education) int {
	best := 0
	for _, e := range educations {
		if l := DegreeLevel(e.Degree); l > best {
			best = l
		}
	}
	return best
}

// HasAcademicPostgraduate reports whether any entry is a masters or
// doctorate. MBAs share the masters level but do not count.
func HasAcademicPostgraduate(educations []types.Education) bool {
	for _, e := range educations {
		switch ClassifyDegree(e.Degree) {
		case DegreeMasters, DegreeDoctorate:
			return true
		}
	}
	return false
}

// HasRelevantDegree reports whether any degree is in a technology area
func HasRelevantDegree(educations []types.Education) bool {
	for _, e := range educations {
		if relevantAreas.contains(e.Degree) {
			return true
		}
	}
	return false
}

// EducationExtractor finds academic entries in resume text
type EducationExtractor struct {
	fallback *Fallback
	now      func() time.Time
}

// NewEducationExtractor creates an extractor. fallback may be nil.
func NewEducationExtractor(fallback *Fallback) *EducationExtractor {
	return &EducationExtractor{fallback: fallback, now: time.Now}
}

// Extract returns the education entries of the education section of text.
// It never calls the LLM.
func (e *EducationExtractor) Extract(text string) []types.Education {
	section, ok := FindSection(text, educationStart, educationEnd)
	if !ok || strings.TrimSpace(section) == "" {
		return nil
	}

	var out []types.Education
	for _, block := range SplitEducationBlocks(section) {
		if edu, ok := e.parseBlock(block); ok {
			out = append(out, edu)
		}
	}
	return out
}

// ExtractFromCandidate fills the candidate's education entries, trying the
// raw text, then the normalized text, then the LLM fallback
func (e *EducationExtractor) ExtractFromCandidate(ctx context.Context, c *types.Candidate) []types.Education {
	var edus []types.Education
	for _, variant := range textVariants(c) {
		if edus = e.Extract(variant); len(edus) > 0 {
			break
		}
	}
	if len(edus) == 0 {
		edus = e.fallback.education(ctx, c, e.now())
	}
	if edus == nil {
		edus = []types.Education{}
	}
	c.Education = edus
	return edus
}

// SplitEducationBlocks groups section lines into one block per degree. Any
// line naming a degree opens a new block.
func SplitEducationBlocks(section string) []string {
	var blocks []string
	var current []string
	for _, line := range strings.Split(section, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if len(current) > 0 && containsDegree(stripped) {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = []string{stripped}
			continue
		}
		current = append(current, stripped)
	}
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}
	return blocks
}

func structuredParts(line string) []string {
	var parts []string
	for _, p := range structuredSplit.Split(line, -1) {
		if p = strings.Trim(strings.TrimSpace(p), "-• "); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func (e *EducationExtractor) parseBlock(block string) (types.Education, bool) {
	lines := nonEmptyLines(block)
	if len(lines) == 0 {
		return types.Education{}, false
	}

	parts := structuredParts(lines[0])
	structured := len(parts) >= 2

	var degree string
	if structured && ClassifyDegree(parts[0]) != "" {
		degree = parts[0]
	} else {
		degree = extractDegree(lines[0])
	}
	if degree == "" && structured {
		degree = parts[0]
	}
	if degree == "" {
		return types.Education{}, false
	}

	now := e.now()
	year := e.extractYear(block, now)
	if year == "" && len(parts) >= 3 {
		year = e.extractYear(strings.Join(parts[2:], " "), now)
	}

	var institution string
	if structured && hasLetter.MatchString(parts[1]) {
		institution = parts[1]
	}
	if institution == "" {
		rest := lines
		if len(lines) > 1 {
			rest = lines[1:]
		}
		institution = extractInstitution(rest)
	}

	if institution == "" && year == "" && educationNoise.contains(block) {
		return types.Education{}, false
	}

	return types.Education{
		Degree:         degree,
		Institution:    institution,
		CompletionYear: year,
		Status:         educationStatus(block, year, now),
	}, true
}

// extractDegree returns the cleaned line naming the degree, or the degree
// type when no single line does
func extractDegree(text string) string {
	r, ok := classify(text)
	if !ok {
		return ""
	}
	for _, line := range strings.Split(text, "\n") {
		if !containsDegree(line) {
			continue
		}
		cleaned := pipeYear.ReplaceAllString(strings.TrimSpace(line), "")
		cleaned = yearSpan.ReplaceAllString(cleaned, "")
		if cleaned = strings.TrimSpace(cleaned); cleaned != "" {
			return truncateRunes(cleaned, 150)
		}
	}
	return r.display
}

// extractInstitution returns the first line naming a school, or a short
// all-caps acronym line (USP, MIT)
func extractInstitution(lines []string) string {
	for _, line := range lines {
		if institutionHints.contains(line) {
			cleaned := fourDigits.ReplaceAllString(line, "")
			cleaned = trailingSep.ReplaceAllString(cleaned, "")
			return truncateRunes(strings.TrimSpace(cleaned), 120)
		}
		token := nonASCIILetter.ReplaceAllString(line, "")
		if n := len(token); n >= 2 && n <= 6 && strings.ToUpper(token) == token {
			return truncateRunes(strings.TrimSpace(line), 60)
		}
	}
	return ""
}

// extractYear prefers the end of a date range, then an expected graduation
// year, then the last plausible year in text
func (e *EducationExtractor) extractYear(text string, now time.Time) string {
	if m := educationRange.FindStringSubmatch(text); m != nil {
		if y := sanitizeYear(m[educationRange.SubexpIndex("end")], now); y != "" {
			return y
		}
	}
	if m := expectedYear.FindStringSubmatch(text); m != nil {
		if y := sanitizeYear(m[1], now); y != "" {
			return y
		}
	}
	years := bareYear.FindAllString(text, -1)
	for i := len(years) - 1; i >= 0; i-- {
		if y := sanitizeYear(years[i], now); y != "" {
			return y
		}
	}
	return ""
}

// sanitizeYear returns the year in token when it lies between 1960 and five
// years from now
func sanitizeYear(token string, now time.Time) string {
	y := bareYear.FindString(token)
	if y == "" {
		return ""
	}
	v, err := strconv.Atoi(y)
	if err != nil || v < 1960 || v > now.Year()+5 {
		return ""
	}
	return y
}

func educationStatus(text, year string, now time.Time) types.EducationStatus {
	switch {
	case completedStatus.contains(text):
		return types.StatusCompleted
	case inProgressStatus.contains(text):
		return types.StatusInProgress
	case incompleteStatus.contains(text):
		return types.StatusIncomplete
	}
	if year != "" {
		if v, err := strconv.Atoi(year); err == nil && v > now.Year() {
			return types.StatusInProgress
		}
	}
	return types.StatusCompleted
}

// ParseStatus maps a free-text status ("cursando", "in progress") to an
// EducationStatus, defaulting to completed
func ParseStatus(text string) types.EducationStatus {
	switch {
	case incompleteStatus.contains(text):
		return types.StatusIncomplete
	case inProgressStatus.contains(text):
		return types.StatusInProgress
	}
	return types.StatusCompleted
}

