// README: Strict date/time parsing and normalisation for booking slots (DD.MM.YYYY, HH:MM).
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical booking date format.
const DateLayout = "02.01.2006"

var (
	strictDate = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})(?:[./-](\d{2}|\d{4}))?$`)
	strictTime = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?$`)
)

// NormDate accepts DD.MM or DD.MM.YYYY (also with / or - separators) and
// returns DD.MM.YYYY. A missing year is inferred like in free text.
func (e *Extractor) NormDate(s string) (string, bool) {
	t, ok := e.parseStrictDate(s)
	if !ok {
		return "", false
	}
	return FormatDate(t), true
}

// IsDate reports whether s is a strictly formatted calendar date.
func (e *Extractor) IsDate(s string) bool {
	_, ok := e.parseStrictDate(s)
	return ok
}

// FromText normalises the first date found in free text, e.g. "на 25 марта".
func (e *Extractor) FromText(text string) (string, bool) {
	t, _, ok := e.ExtractDate(text)
	if !ok {
		return "", false
	}
	return FormatDate(t), true
}

func (e *Extractor) parseStrictDate(s string) (time.Time, bool) {
	m := strictDate.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false
	}
	switch len(m[3]) {
	case 0:
		return e.inferred(m[2], m[1])
	case 2:
		return e.civil(2000+atoi(m[3]), time.Month(atoi(m[2])), atoi(m[1]))
	default:
		return e.explicit(m[3], m[2], m[1])
	}
}

// IsTime accepts "9", "09" and "09:30".
func IsTime(s string) bool {
	_, _, ok := parseTime(s)
	return ok
}

// NormTime returns HH:MM.
func NormTime(s string) (string, bool) {
	h, m, ok := parseTime(s)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", h, m), true
}

func parseTime(s string) (int, int, bool) {
	g := strictTime.FindStringSubmatch(strings.TrimSpace(s))
	if g == nil {
		return 0, 0, false
	}
	h, _ := strconv.Atoi(g[1])
	m := 0
	if g[2] != "" {
		m, _ = strconv.Atoi(g[2])
	}
	if h > 23 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate reads a DD.MM.YYYY value in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
