// README: Natural-language date and date-range extraction (ISO, Russian, English, numeric).
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// MaxRangeDays bounds the span of an accepted range.
const MaxRangeDays = 365

// Range is an inclusive period. When derived from calendar dates, End is
// 23:59:59.999999 on the final day.
type Range struct {
	Start time.Time
	End   time.Time
	Label string
}

// Days returns the number of nights between the calendar dates of Start and End.
func (r Range) Days() int {
	return daysBetween(r.Start, r.End)
}

type Extractor struct {
	loc *time.Location
	now func() time.Time
}

// NewExtractor returns an extractor resolving dates in loc. A nil now uses time.Now.
func NewExtractor(loc *time.Location, now func() time.Time) *Extractor {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Extractor{loc: loc, now: now}
}

func (e *Extractor) Location() *time.Location {
	return e.loc
}

func (e *Extractor) today() time.Time {
	n := e.now().In(e.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, e.loc)
}

// groups holds the submatches of one regexp hit, "" for groups that did not participate.
type groups []string

type rangeMatcher struct {
	re    *regexp.Regexp
	parse func(e *Extractor, g groups) (time.Time, time.Time, bool)
}

type dateMatcher struct {
	re    *regexp.Regexp
	parse func(e *Extractor, g groups) (time.Time, bool)
	// label overrides the matched-text label when set.
	label func(t time.Time) string
}

var (
	monthExpr     = alternation(monthKeys())
	connectorExpr = alternation(rangeConnectors)
	dashExpr      = `[-–—]`

	digitsBefore  = `(?:^|\D)`
	digitsAfter   = `(?:\D|$)`
	lettersBefore = `(?:^|[^\p{L}])`
	lettersAfter  = `(?:[^\p{L}]|$)`
	monthPattern  = regexp.MustCompile(lettersBefore + `(` + monthExpr + `)` + lettersAfter)
)

var rangeMatchers = []rangeMatcher{
	{
		// 2025-03-20 to 2025-03-25
		re: regexp.MustCompile(digitsBefore + `(\d{4})-(\d{1,2})-(\d{1,2})\s*` + connectorExpr + `\s*(\d{4})-(\d{1,2})-(\d{1,2})` + digitsAfter),
		parse: func(e *Extractor, g groups) (time.Time, time.Time, bool) {
			start, ok := e.explicit(g[1], g[2], g[3])
			if !ok {
				return time.Time{}, time.Time{}, false
			}
			end, ok := e.explicit(g[4], g[5], g[6])
			return start, end, ok
		},
	},
	{
		// 20-25 марта, 20 - 25 марта, с 20 по 25 марта
		re: regexp.MustCompile(digitsBefore + `(\d{1,2})\s*` + connectorExpr + `\s*(\d{1,2})\s*(` + monthExpr + `)` + lettersAfter),
		parse: func(e *Extractor, g groups) (time.Time, time.Time, bool) {
			month := monthWords[g[3]]
			return e.sameMonthRange(g[1], g[2], month)
		},
	},
	{
		// march 20-25
		re: regexp.MustCompile(lettersBefore + `(` + monthExpr + `)\s*(\d{1,2})\s*` + dashExpr + `\s*(\d{1,2})` + digitsAfter),
		parse: func(e *Extractor, g groups) (time.Time, time.Time, bool) {
			month := monthWords[g[1]]
			return e.sameMonthRange(g[2], g[3], month)
		},
	},
	{
		// 20.03-25.03, 28.12.2025-05.01.2026
		re: regexp.MustCompile(digitsBefore + `(\d{1,2})[./](\d{1,2})(?:[./](\d{4}))?\s*` + connectorExpr + `\s*(\d{1,2})[./](\d{1,2})(?:[./](\d{4}))?` + digitsAfter),
		parse: func(e *Extractor, g groups) (time.Time, time.Time, bool) {
			var start time.Time
			var ok bool
			if g[3] != "" {
				start, ok = e.explicit(g[3], g[2], g[1])
			} else {
				start, ok = e.inferred(g[2], g[1])
			}
			if !ok {
				return time.Time{}, time.Time{}, false
			}
			end, ok := e.rangeEnd(start, g[6], g[5], g[4])
			return start, end, ok
		},
	},
}

var dateMatchers = []dateMatcher{
	{
		// 2025-03-05
		re: regexp.MustCompile(digitsBefore + `(\d{4})-(\d{1,2})-(\d{1,2})` + digitsAfter),
		parse: func(e *Extractor, g groups) (time.Time, bool) {
			return e.explicit(g[1], g[2], g[3])
		},
		label: func(t time.Time) string { return t.Format("2006-01-02") },
	},
	{
		// 25 марта, 25 march
		re: regexp.MustCompile(digitsBefore + `(\d{1,2})\s*(` + monthExpr + `)` + lettersAfter),
		parse: func(e *Extractor, g groups) (time.Time, bool) {
			return e.inferredMonth(monthWords[g[2]], g[1])
		},
	},
	{
		// march 25
		re: regexp.MustCompile(lettersBefore + `(` + monthExpr + `)\s*(\d{1,2})` + digitsAfter),
		parse: func(e *Extractor, g groups) (time.Time, bool) {
			return e.inferredMonth(monthWords[g[1]], g[2])
		},
	},
	{
		// 25.03, 25/03/2025
		re: regexp.MustCompile(digitsBefore + `(\d{1,2})[./](\d{1,2})(?:[./](\d{4}))?` + digitsAfter),
		parse: func(e *Extractor, g groups) (time.Time, bool) {
			if g[3] != "" {
				return e.explicit(g[3], g[2], g[1])
			}
			return e.inferred(g[2], g[1])
		},
	},
}

// ExtractDates always yields a range: an explicit range, then a single
// date, then the month mentioned in the text (current month by default).
func (e *Extractor) ExtractDates(text string) Range {
	if r, ok := e.ExtractExplicit(text); ok {
		return r
	}
	return e.MonthBounds(text)
}

// ExtractExplicit returns a range only when the text names concrete dates.
func (e *Extractor) ExtractExplicit(text string) (Range, bool) {
	if r, ok := e.ExtractRange(text); ok {
		return r, true
	}
	if t, label, ok := e.ExtractDate(text); ok {
		return Range{Start: t, End: endOfDay(t), Label: label}, true
	}
	return Range{}, false
}

// ExtractRange finds the first valid explicit range in text.
func (e *Extractor) ExtractRange(text string) (Range, bool) {
	low := strings.ToLower(text)
	for _, m := range rangeMatchers {
		for _, idx := range m.re.FindAllStringSubmatchIndex(low, -1) {
			start, end, ok := m.parse(e, submatches(low, idx))
			if !ok || !ValidateRange(start, end) {
				continue
			}
			return Range{Start: start, End: endOfDay(end), Label: matchedLabel(low, idx)}, true
		}
	}
	return Range{}, false
}

// ExtractDate finds the first valid single date in text. The returned time
// is midnight in the extractor's location.
func (e *Extractor) ExtractDate(text string) (time.Time, string, bool) {
	low := strings.ToLower(text)
	for _, m := range dateMatchers {
		for _, idx := range m.re.FindAllStringSubmatchIndex(low, -1) {
			t, ok := m.parse(e, submatches(low, idx))
			if !ok {
				continue
			}
			label := matchedLabel(low, idx)
			if m.label != nil {
				label = m.label(t)
			}
			return t, label, true
		}
	}
	return time.Time{}, "", false
}

// MonthBounds resolves a named or relative month to its first and last day.
// A named month earlier than the current one refers to next year.
func (e *Extractor) MonthBounds(text string) Range {
	low := strings.ToLower(text)
	today := e.today()

	if g := monthPattern.FindStringSubmatch(low); g != nil {
		month := monthWords[g[1]]
		year := today.Year()
		if month < today.Month() {
			year++
		}
		return monthRange(year, month, e.loc, g[1])
	}

	words := strings.FieldsFunc(low, func(r rune) bool { return !unicode.IsLetter(r) })
	if hasPrefixWord(words, currentMonthKeywords) {
		return monthRange(today.Year(), today.Month(), e.loc, labelCurrentMonth)
	}
	if hasPrefixWord(words, nextMonthKeywords) {
		next := time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, e.loc)
		return monthRange(next.Year(), next.Month(), e.loc, labelNextMonth)
	}
	return monthRange(today.Year(), today.Month(), e.loc, labelCurrentMonth)
}

// ValidateRange compares calendar dates: start must not follow end and the
// span must not exceed MaxRangeDays.
func ValidateRange(start, end time.Time) bool {
	d := daysBetween(start, end)
	return d >= 0 && d <= MaxRangeDays
}

func (e *Extractor) sameMonthRange(day1, day2 string, month time.Month) (time.Time, time.Time, bool) {
	start, ok := e.inferredMonth(month, day1)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, ok := e.rangeEnd(start, "", strconv.Itoa(int(month)), day2)
	return start, end, ok
}

// rangeEnd resolves the year of a range end: explicit, else the start's
// year, bumped when the end month precedes the start month.
func (e *Extractor) rangeEnd(start time.Time, year, month, day string) (time.Time, bool) {
	if year != "" {
		return e.explicit(year, month, day)
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, false
	}
	y := start.Year()
	if time.Month(m) < start.Month() {
		y++
	}
	return e.civil(y, time.Month(m), atoi(day))
}

func (e *Extractor) explicit(year, month, day string) (time.Time, bool) {
	return e.civil(atoi(year), time.Month(atoi(month)), atoi(day))
}

func (e *Extractor) inferred(month, day string) (time.Time, bool) {
	return e.inferredMonth(time.Month(atoi(month)), day)
}

// inferredMonth picks the nearest year in which day/month has not passed yet.
func (e *Extractor) inferredMonth(month time.Month, day string) (time.Time, bool) {
	d := atoi(day)
	today := e.today()
	for y := today.Year(); y <= today.Year()+4; y++ {
		t, ok := e.civil(y, month, d)
		if ok && !t.Before(today) {
			return t, true
		}
	}
	return time.Time{}, false
}

// civil rejects dates that time.Date would normalise (32 March, month 13).
func (e *Extractor) civil(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, e.loc)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func monthRange(year int, month time.Month, loc *time.Location, label string) Range {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := start.AddDate(0, 1, -1)
	return Range{Start: start, End: endOfDay(last), Label: label}
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999000, t.Location())
}

func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func submatches(s string, idx []int) groups {
	g := make(groups, len(idx)/2)
	for i := range g {
		if idx[2*i] >= 0 {
			g[i] = s[idx[2*i]:idx[2*i+1]]
		}
	}
	return g
}

// matchedLabel spans from the first to the last participating capture
// group, leaving out the boundary characters around the match.
func matchedLabel(s string, idx []int) string {
	start, end := -1, -1
	for i := 2; i+1 < len(idx); i += 2 {
		if idx[i] < 0 {
			continue
		}
		if start < 0 || idx[i] < start {
			start = idx[i]
		}
		if idx[i+1] > end {
			end = idx[i+1]
		}
	}
	if start < 0 {
		return strings.TrimSpace(s[idx[0]:idx[1]])
	}
	return s[start:end]
}

func hasPrefixWord(words, prefixes []string) bool {
	for _, w := range words {
		for _, p := range prefixes {
			if strings.HasPrefix(w, p) {
				return true
			}
		}
	}
	return false
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
