package ingestion

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var intraLineSpace = regexp.MustCompile(`[ \t]+`)

// NormalizeOptions selects the transforms applied by Normalize
type NormalizeOptions struct {
	Lower              bool
	RemoveAccents      bool
	CollapseWhitespace bool
}

// DefaultNormalizeOptions enables every transform
var DefaultNormalizeOptions = NormalizeOptions{
	Lower:              true,
	RemoveAccents:      true,
	CollapseWhitespace: true,
}

// Normalize applies the enabled transforms in a fixed order: lowercase,
// accent stripping, then whitespace collapsing within each line. Line breaks
// are preserved.
func Normalize(text string, opts NormalizeOptions) string {
	out := text
	if opts.Lower {
		out = strings.ToLower(out)
	}
	if opts.RemoveAccents {
		out = RemoveAccents(out)
		if opts.Lower {
			// compatibility decomposition can surface uppercase letters (e.g. ℌ -> H)
			out = strings.ToLower(out)
		}
	}
	if opts.CollapseWhitespace {
		out = collapseWhitespace(out)
	}
	return out
}

// RemoveAccents decomposes text (NFKD) and drops combining marks
func RemoveAccents(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

// Fold lowercases and strips accents, the form used for keyword and
// dictionary comparisons
func Fold(text string) string {
	return Normalize(text, NormalizeOptions{Lower: true, RemoveAccents: true})
}

func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(intraLineSpace.ReplaceAllString(line, " "))
	}
	return strings.Join(lines, "\n")
}

// CleanText normalizes line endings and trims surrounding whitespace from
// extracted document text
func CleanText(content string) string {
	if content == "" {
		return ""
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.TrimSpace(content)
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
