package parsing

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/theduardomaciel/projeto-ia/internal/ingestion"
)

// shortKeyword is the length up to which a keyword must also end on a word
// boundary ("ms" must not match inside "systems")
const shortKeyword = 3

// keywordSet is a list of keywords matched case- and accent-insensitively.
// A keyword must start on a word boundary, so "completo" does not match
// inside "incompleto".
type keywordSet struct {
	terms    []string
	folded   []string
	leftOnly bool
}

func newKeywordSet(terms ...string) *keywordSet {
	k := &keywordSet{terms: terms}
	for _, t := range terms {
		k.folded = append(k.folded, ingestion.Fold(t))
	}
	return k
}

// prefixes returns a set whose keywords only need a left boundary, for
// abbreviations that start longer tokens ("uf" in "ufal")
func prefixes(terms ...string) *keywordSet {
	k := newKeywordSet(terms...)
	k.leftOnly = true
	return k
}

// find returns the first keyword (in list order) present in text
func (k *keywordSet) find(text string) (string, bool) {
	folded := ingestion.Fold(text)
	for i, kw := range k.folded {
		if containsWord(folded, kw, k.leftOnly) {
			return k.terms[i], true
		}
	}
	return "", false
}

func (k *keywordSet) contains(text string) bool {
	_, ok := k.find(text)
	return ok
}

// containsWord reports whether kw occurs in text starting on a word
// boundary. Short keywords must also end on one unless leftOnly is set.
func containsWord(text, kw string, leftOnly bool) bool {
	if kw == "" {
		return false
	}
	needRight := !leftOnly && utf8.RuneCountInString(kw) <= shortKeyword
	offset := 0
	for {
		i := strings.Index(text[offset:], kw)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(kw)
		if leftBoundary(text, start) && (!needRight || rightBoundary(text, end)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func leftBoundary(text string, start int) bool {
	if start == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:start])
	return !isAlnum(r)
}

func rightBoundary(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !isAlnum(r)
}

// isUpperText reports whether text has at least one cased letter and no
// lowercase letters
func isUpperText(text string) bool {
	cased := false
	for _, r := range text {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// nonEmptyLines returns the trimmed, non-blank lines of text
func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
