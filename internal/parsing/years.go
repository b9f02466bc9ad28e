package parsing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/theduardomaciel/projeto-ia/internal/types"
)

var (
	ongoingEnd = regexp.MustCompile(`(?i)^(?:atual|present|current|ongoing)$`)

	seniorRole = regexp.MustCompile(`(?i)\b(?:s[eê]nior|senior|sr)\b`)
	midRole    = regexp.MustCompile(`(?i)\b(?:pleno|mid|middle)\b`)
	juniorRole = regexp.MustCompile(`(?i)\b(?:j[uú]nior|junior|jr|estagi[aá]rio|intern)\b`)

	// "5 anos de experiência", "3+ years of experience"
	statedYearsPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*\+?\s*(?:anos?|years?)\s+(?:de\s+experi[eê]ncia|of\s+experience)`)
)

// DurationYears converts a duration string ("2 anos", "2019 - 2021",
// "Jan/2020 - atual") into years. Ranges shorter than a year count as half
// a year; an unparseable but non-empty duration counts as one year.
func DurationYears(duration string, now time.Time) float64 {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		return 0
	}

	if m := durationPattern.FindStringSubmatch(duration); m != nil {
		v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
		if err == nil {
			return v
		}
	}

	if m := datePattern.FindStringSubmatch(duration); m != nil {
		start, okStart := yearOf(m[datePattern.SubexpIndex("start")])
		endText := strings.TrimSpace(m[datePattern.SubexpIndex("end")])
		end, okEnd := yearOf(endText)
		if ongoingEnd.MatchString(endText) {
			end, okEnd = now.Year(), true
		}
		if okStart && okEnd {
			return math.Max(float64(end-start), 0.5)
		}
	}

	return 1
}

func yearOf(s string) (int, bool) {
	y := fourDigits.FindString(s)
	if y == "" {
		return 0, false
	}
	v, err := strconv.Atoi(y)
	return v, err == nil
}

// CalculateTotalYears sums the durations of all experiences, rounded to one
// decimal
func CalculateTotalYears(exps []types.Experience, now time.Time) float64 {
	var total float64
	for _, e := range exps {
		total += DurationYears(e.Duration, now)
	}
	return types.Round(total, 1)
}

// InferSeniority classifies a candidate as junior, mid or senior. A level
// named in the most recent role wins over the years of experience.
func InferSeniority(years float64, role string) string {
	switch {
	case seniorRole.MatchString(role):
		return types.SenioritySenior
	case midRole.MatchString(role):
		return types.SeniorityMid
	case juniorRole.MatchString(role):
		return types.SeniorityJunior
	}

	switch {
	case years >= 5:
		return types.SenioritySenior
	case years >= 2:
		return types.SeniorityMid
	default:
		return types.SeniorityJunior
	}
}

// StatedYears returns the largest "N anos de experiência" figure in text, or
// 0 when there is none
func StatedYears(text string) float64 {
	var best float64
	for _, m := range statedYearsPattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
		if err == nil && v > best {
			best = v
		}
	}
	return best
}
