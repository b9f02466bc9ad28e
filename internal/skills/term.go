package skills

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/theduardomaciel/projeto-ia/internal/ingestion"
)

var spaceRun = regexp.MustCompile(`\s+`)

// Term matches one dictionary term as a whole word. Internal spaces match
// any whitespace run, and matching ignores case and accents. Word boundaries
// are checked on the surrounding runes rather than with \b, so terms that end
// in punctuation ("c++", "c#", ".net") still match.
type Term struct {
	Text    string
	pattern *regexp.Regexp
}

// CompileTerm builds the matcher for a term
func CompileTerm(term string) (*Term, error) {
	folded := strings.TrimSpace(ingestion.Fold(term))
	words := spaceRun.Split(folded, -1)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	re, err := regexp.Compile(`(?i)` + strings.Join(words, `\s+`))
	if err != nil {
		return nil, err
	}
	return &Term{Text: term, pattern: re}, nil
}

// MustCompileTerm is like CompileTerm but panics on error
func MustCompileTerm(term string) *Term {
	t, err := CompileTerm(term)
	if err != nil {
		panic(err)
	}
	return t
}

// Count returns the number of non-overlapping whole-word matches in text
func (t *Term) Count(text string) int {
	return t.count(ingestion.Fold(text), -1)
}

// Match reports whether text contains the term as a whole word
func (t *Term) Match(text string) bool {
	return t.count(ingestion.Fold(text), 1) > 0
}

// count scans folded text, stopping after limit hits when limit > 0
func (t *Term) count(folded string, limit int) int {
	n := 0
	offset := 0
	for offset <= len(folded) {
		loc := t.pattern.FindStringIndex(folded[offset:])
		if loc == nil {
			break
		}
		start, end := offset+loc[0], offset+loc[1]
		if end == start {
			break
		}
		if isBoundary(folded, start, end) {
			n++
			if limit > 0 && n >= limit {
				break
			}
			offset = end
			continue
		}
		// retry one rune further so an overlapping valid match is not skipped
		_, size := utf8.DecodeRuneInString(folded[start:])
		offset = start + size
	}
	return n
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// isBoundary reports whether the match text[start:end] is not glued to a
// word character on either side
func isBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}
