package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/theduardomaciel/projeto-ia/internal/observability"
	"github.com/theduardomaciel/projeto-ia/internal/types"
)

const (
	// maxTitleLength caps the job title taken from the first line
	maxTitleLength = 120

	// nameScanLines is how many non-empty lines InferName inspects
	nameScanLines = 10

	defaultJobTitle = "Vaga"
)

var (
	nameToken        = regexp.MustCompile(`^[A-ZÁÉÍÓÚÂÊÔÃÕÇ][a-záéíóúâêôãõç]+$`)
	resumeFileNumber = regexp.MustCompile(`(?i)^curriculo_(\d+)`)
	utf8BOM          = []byte{0xEF, 0xBB, 0xBF}
)

// nameBlocklist holds terms that disqualify a line from being a person's name
var nameBlocklist = map[string]bool{
	"python":        true,
	"java":          true,
	"desenvolvedor": true,
	"developer":     true,
	"curriculo":     true,
	"currículo":     true,
	"curriculum":    true,
	"resume":        true,
}

// Load reads a text file and decodes it as UTF-8, falling back to Latin-1
// when the bytes are not valid UTF-8. Only I/O failures are returned.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &NotFoundError{Path: path}
		}
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return Decode(data), nil
}

// Decode converts raw bytes to a string, assuming UTF-8 and falling back to Latin-1
func Decode(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		// ISO-8859-1 maps every byte, so this is unreachable in practice
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(decoded)
}

// InferName returns the first of the leading non-empty lines that looks like
// a person's name (2 to 5 capitalized words, none of them a technical term),
// or fallback when no line qualifies.
func InferName(raw, fallback string) string {
	lines := nonEmptyLines(raw)
	if len(lines) > nameScanLines {
		lines = lines[:nameScanLines]
	}
	for _, line := range lines {
		if looksLikeName(line) {
			return line
		}
	}
	return fallback
}

func looksLikeName(line string) bool {
	tokens := strings.Fields(line)
	if len(tokens) < 2 || len(tokens) > 5 {
		return false
	}
	for _, tok := range tokens {
		if !nameToken.MatchString(tok) || nameBlocklist[strings.ToLower(tok)] {
			return false
		}
	}
	return true
}

// FallbackName builds the "Candidato NN" name for a resume file. The number
// comes from a curriculo_<N> file name when present, otherwise from position.
func FallbackName(path string, position int) string {
	if m := resumeFileNumber.FindStringSubmatch(filepath.Base(path)); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return fmt.Sprintf("Candidato %02d", n)
		}
	}
	return fmt.Sprintf("Candidato %02d", position)
}

// JobTitle derives a job title from the first non-empty line of the text
func JobTitle(raw string) string {
	lines := nonEmptyLines(raw)
	if len(lines) == 0 {
		return defaultJobTitle
	}
	return truncateRunes(lines[0], maxTitleLength)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Loader turns files into job profiles and candidates, recording each step
// in an event log.
type Loader struct {
	events  *observability.EventLog
	extract func(path string) (string, error)
}

// NewLoader creates a Loader. events may be nil.
func NewLoader(events *observability.EventLog) *Loader {
	return &Loader{events: events, extract: ExtractText}
}

// ReadText extracts the text of any supported document and logs the outcome
func (l *Loader) ReadText(path string) (string, error) {
	text, err := l.extract(path)
	if err != nil {
		l.events.Record("file_error", fmt.Sprintf("path=%s error=%v", path, err))
		return "", err
	}
	l.events.Record("file_read", fmt.Sprintf("path=%s chars=%d", path, utf8.RuneCountInString(text)))
	return text, nil
}

// LoadJob reads a job description file
func (l *Loader) LoadJob(path string) (*types.JobProfile, error) {
	raw, err := l.ReadText(path)
	if err != nil {
		return nil, err
	}
	job := l.JobFromText(raw)
	job.FilePath = path
	return job, nil
}

// JobFromText builds a job profile from already extracted text
func (l *Loader) JobFromText(raw string) *types.JobProfile {
	job := types.NewJobProfile(JobTitle(raw), raw, raw)
	l.events.Record("job_loaded", "title="+job.Title)
	return job
}

// LoadCandidate reads one resume. position is the 1-based index used for
// the fallback name.
func (l *Loader) LoadCandidate(path string, position int) (*types.Candidate, error) {
	raw, err := l.ReadText(path)
	if err != nil {
		return nil, err
	}
	return l.CandidateFromText(raw, path, position), nil
}

// CandidateFromText builds a candidate from already extracted resume text
func (l *Loader) CandidateFromText(raw, path string, position int) *types.Candidate {
	name := InferName(raw, FallbackName(path, position))
	c := types.NewCandidate(name, raw, path)
	c.NormalizedText = Normalize(raw, DefaultNormalizeOptions)
	l.events.Record("candidate_loaded", fmt.Sprintf("name='%s' file=%s", name, filepath.Base(path)))
	return c
}

// LoadCandidates reads every supported resume in dir, in file-name order.
// Files that fail to load are reported in the failures slice and skipped.
func (l *Loader) LoadCandidates(dir string) ([]*types.Candidate, []types.InputFailure, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, &NotFoundError{Path: dir}
		}
		return nil, nil, fmt.Errorf("failed to read resume directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !IsSupported(name) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)

	candidates := make([]*types.Candidate, 0, len(paths))
	var failures []types.InputFailure
	for i, path := range paths {
		c, err := l.LoadCandidate(path, i+1)
		if err != nil {
			failures = append(failures, types.InputFailure{Path: path, Error: err.Error()})
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, failures, nil
}
