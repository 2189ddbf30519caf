// README: Turns a free-text price question into a pricing Request.
package pricing

import (
    "regexp"
    "strconv"
    "strings"

    "secrethouse/internal/dates"
)

type addOnPattern struct {
    addOn    AddOn
    patterns []*regexp.Regexp
}

var addOnPatterns = []addOnPattern{
    {AddOnSauna, compileAll(`сауна`, `сауну`, `сауной`, `баня`, `sauna`, `steam`)},
    {AddOnPhotoshoot, compileAll(`фото`, `съемк`, `съёмк`, `photo`, `shoot`)},
    {AddOnSecretRoom, compileAll(`секретн.*комнат`, `тайн.*комнат`, `secret.*room`, `hidden.*room`)},
    {AddOnSecondBedroom, compileAll(`втор.*спальн`, `дополн.*спальн`, `second.*bedroom`, `extra.*bedroom`)},
}

type countPattern struct {
    re    *regexp.Regexp
    value int // 0 means take the first capture group
}

var guestPatterns = []countPattern{
    {regexp.MustCompile(`(\d+)\s*(?:человек|чел|людей|гост|people|guests|persons)`), 0},
    {regexp.MustCompile(`(?:один|одного)\s*(?:человек|чел|гост)`), 1},
    {regexp.MustCompile(`(?:два|двух|двоих)\s*(?:человек|чел|гост|людей)`), 2},
    {regexp.MustCompile(`(?:три|трех|троих)\s*(?:человек|чел|гост|людей)`), 3},
    {regexp.MustCompile(`(?:четыре|четырех|четверых)\s*(?:человек|чел|гост|людей)`), 4},
    {regexp.MustCompile(`(?:пять|пятеро|пятерых)\s*(?:человек|чел|гост|людей)`), 5},
    {regexp.MustCompile(`(?:шесть|шестеро|шестерых)\s*(?:человек|чел|гост|людей)`), 6},
}

var guestWords = []struct {
    words []string
    value int
}{
    {[]string{"один", "одного", "solo", "single", "alone"}, 1},
    {[]string{"пара", "пары", "парой", "двоих", "couple", "pair"}, 2},
    {[]string{"компания", "группа", "company", "group"}, 4},
}

var dayPatterns = []countPattern{
    {regexp.MustCompile(`(\d+)\s*(?:дней|дня|день|суток|days?)`), 0},
    {regexp.MustCompile(`(?:две|2)\s*(?:недели|weeks)`), 14},
    {regexp.MustCompile(`(?:неделя|неделю|week)`), 7},
    {regexp.MustCompile(`(?:один|одни)\s*(?:день|сутки)`), 1},
    {regexp.MustCompile(`(?:два|двое)\s*(?:дня|суток)`), 2},
    {regexp.MustCompile(`(?:три|трое)\s*(?:дня|суток)`), 3},
}

var pricingKeywords = []string{
    "цена", "цены", "стоимость", "сколько стоит", "прайс", "расценки",
    "тариф", "тарифы", "прайс-лист", "стоит ли", "цену", "цене",
    "дешево", "дорого", "бюджет", "расходы", "затрат",
    "price", "cost", "how much", "pricing", "rate", "rates",
    "tariff", "fee", "charge", "expensive", "cheap", "budget",
}

var comparisonKeywords = []string{
    "сравни", "сравнить", "разница", "различие", "отличие",
    "что лучше", "какой выбрать", "посоветуй", "recommend",
    "compare", "difference", "better", "best", "choose",
}

type Parser struct {
    dates *dates.Extractor
}

func NewParser(ex *dates.Extractor) *Parser {
    return &Parser{dates: ex}
}

// Parse extracts tariff hints, add-ons, guests and duration. Only explicit
// dates are used; a bare month would otherwise price a whole month.
func (p *Parser) Parse(text string) Request {
    low := strings.ToLower(strings.TrimSpace(text))
    var req Request

    rest := low
    if p.dates != nil {
        if r, ok := p.dates.ExtractExplicit(low); ok {
            req.Start, req.End = r.Start, r.End
            rest = strings.Replace(low, r.Label, " ", 1)
        }
    }

    req.Tariff = rest
    req.AddOns = parseAddOns(rest)
    req.Guests = parseGuests(rest)
    if req.Start.IsZero() {
        req.Days = firstCount(dayPatterns, rest)
    }
    return req
}

func parseAddOns(text string) []AddOn {
    var out []AddOn
    for _, ap := range addOnPatterns {
        for _, re := range ap.patterns {
            if re.MatchString(text) {
                out = append(out, ap.addOn)
                break
            }
        }
    }
    return out
}

func parseGuests(text string) int {
    if n := firstCount(guestPatterns, text); n > 0 {
        return n
    }
    words := strings.FieldsFunc(text, func(r rune) bool { return r == ' ' || r == ',' || r == '.' || r == '?' || r == '!' })
    for _, gw := range guestWords {
        for _, w := range words {
            for _, candidate := range gw.words {
                if w == candidate {
                    return gw.value
                }
            }
        }
    }
    return 0
}

func firstCount(patterns []countPattern, text string) int {
    for _, cp := range patterns {
        m := cp.re.FindStringSubmatch(text)
        if m == nil {
            continue
        }
        if cp.value > 0 {
            return cp.value
        }
        if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
            return n
        }
    }
    return 0
}

// IsPricingQuery reports whether text asks about prices.
func IsPricingQuery(text string) bool {
    return containsAny(strings.ToLower(text), pricingKeywords...)
}

// IsComparisonRequest reports whether text asks to compare tariffs.
func IsComparisonRequest(text string) bool {
    return containsAny(strings.ToLower(text), comparisonKeywords...)
}

func compileAll(exprs ...string) []*regexp.Regexp {
    out := make([]*regexp.Regexp, len(exprs))
    for i, e := range exprs {
        out[i] = regexp.MustCompile(e)
    }
    return out
}
