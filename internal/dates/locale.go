// README: Locale tables for month names, range connectors and relative-month keywords.
package dates

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// monthWords maps every recognised month form to its month. Russian
// nominative, genitive and prepositional forms sit next to English full
// names and abbreviations so that all locales resolve through one lookup.
var monthWords = map[string]time.Month{
	"январь": time.January, "января": time.January, "январе": time.January,
	"февраль": time.February, "февраля": time.February, "феврале": time.February,
	"март": time.March, "марта": time.March, "марте": time.March,
	"апрель": time.April, "апреля": time.April, "апреле": time.April,
	"май": time.May, "мая": time.May, "мае": time.May,
	"июнь": time.June, "июня": time.June, "июне": time.June,
	"июль": time.July, "июля": time.July, "июле": time.July,
	"август": time.August, "августа": time.August, "августе": time.August,
	"сентябрь": time.September, "сентября": time.September, "сентябре": time.September,
	"октябрь": time.October, "октября": time.October, "октябре": time.October,
	"ноябрь": time.November, "ноября": time.November, "ноябре": time.November,
	"декабрь": time.December, "декабря": time.December, "декабре": time.December,

	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// rangeConnectors separate the two ends of a range ("20-25", "с 20 по 25", "2025-03-01 to 2025-03-05").
var rangeConnectors = []string{"-", "–", "—", "to", "до", "по"}

// Relative month keywords are matched as word prefixes so inflected forms
// ("следующем", "текущего") resolve too.
var (
	nextMonthKeywords    = []string{"следующ", "будущ", "next", "future"}
	currentMonthKeywords = []string{"текущ", "этот", "этом", "сейчас", "теперь", "current", "this", "now"}
)

const (
	labelCurrentMonth = "этот месяц"
	labelNextMonth    = "следующий месяц"
)

// alternation builds a regexp alternation with the longest words first so
// that "march" wins over "mar".
func alternation(words []string) string {
	sorted := append([]string(nil), words...)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return "(?:" + strings.Join(quoted, "|") + ")"
}

func monthKeys() []string {
	keys := make([]string, 0, len(monthWords))
	for k := range monthWords {
		keys = append(keys, k)
	}
	return keys
}
