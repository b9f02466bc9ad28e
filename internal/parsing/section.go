// Package parsing extracts experience, education and job requirements from
// resume and job description text.
package parsing

import (
	"regexp"
	"strings"
)

// FindSection returns the lines following the first line that matches any
// start pattern, up to (not including) the first later line whose trimmed
// text matches an end pattern at its beginning. ok is false when no line
// matches a start pattern. A section without a terminator runs to the end
// of the text.
func FindSection(text string, start, end []*regexp.Regexp) (string, bool) {
	lines := strings.Split(text, "\n")

	from := -1
	for i, line := range lines {
		if matchesAny(line, start) {
			from = i + 1
			break
		}
	}
	if from < 0 {
		return "", false
	}

	to := len(lines)
	for i := from; i < len(lines); i++ {
		if matchesAnyAtStart(strings.TrimSpace(lines[i]), end) {
			to = i
			break
		}
	}
	return strings.Join(lines[from:to], "\n"), true
}

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// matchesAnyAtStart reports whether some pattern matches a prefix of s.
// The leftmost match starts at 0 whenever any match does.
func matchesAnyAtStart(s string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if loc := p.FindStringIndex(s); loc != nil && loc[0] == 0 {
			return true
		}
	}
	return false
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}
