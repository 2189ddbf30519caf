// README: Heuristic slot parsing used when the LLM extractor misses a field.
package booking

import (
    "strconv"
    "strings"

    "secrethouse/internal/ai"
    "secrethouse/internal/dates"
    "secrethouse/internal/modules/pricing"
)

var (
    yesWords = map[string]bool{"да": true, "ага": true, "ok": true, "ок": true, "yes": true, "y": true, "true": true, "1": true}
    noWords  = map[string]bool{"нет": true, "не": true, "no": true, "n": true, "false": true, "0": true}

    noCommentWords = map[string]bool{"нет": true, "no": true, "-": true}

    confirmWords = map[string]bool{"подтверждаю": true, "confirm": true}

    noChangeWords = map[string]bool{
        "нет правок": true, "без правок": true, "без изменений": true, "правок нет": true,
        "все верно": true, "всё верно": true, "все так": true, "всё так": true,
        "no changes": true, "looks good": true, "all good": true,
    }
)

func normalize(text string) string {
    return strings.Trim(strings.ToLower(strings.TrimSpace(text)), ".!?,; ")
}

// ParseYesNo maps yes/no answers; nil means neither.
func ParseYesNo(text string) *bool {
    t := normalize(text)
    switch {
    case yesWords[t]:
        return boolPtr(true)
    case noWords[t]:
        return boolPtr(false)
    }
    return nil
}

// IsConfirmation reports whether text is the literal confirmation keyword.
func IsConfirmation(text string) bool {
    return confirmWords[normalize(text)]
}

func isNoChanges(text string) bool {
    return noChangeWords[normalize(text)]
}

// ParseTariff recognises a tariff in a booking answer. Daily requests without
// a guest marker default to the couple tariff.
func ParseTariff(text string) (string, bool) {
    low := normalize(text)
    if n, err := strconv.Atoi(low); err == nil && n != 12 {
        id := pricing.TariffID(n)
        if id.Valid() {
            return id.DisplayName(), true
        }
        return "", false
    }

    incognito := containsAny(low, "инкогнито", "инконито", "incognito")
    switch {
    case containsAny(low, "абонемент", "subscription"):
        id, _ := pricing.ParseTariff(low)
        return id.DisplayName(), true
    case incognito && strings.Contains(low, "12"):
        return pricing.IncognitoHours.DisplayName(), true
    case incognito && containsAny(low, "сут", "24", "день", "day"):
        return pricing.IncognitoDay.DisplayName(), true
    case strings.Contains(low, "12"):
        return pricing.Hours12.DisplayName(), true
    case strings.Contains(low, "суточно") && containsAny(low, "пар", "два", "2"):
        return pricing.DayForCouple.DisplayName(), true
    case strings.Contains(low, "суточно") && containsAny(low, "3", "трех", "трёх"):
        return pricing.DayForThree.DisplayName(), true
    case containsAny(low, "рабочий", "работа", "worker"):
        return pricing.Worker.DisplayName(), true
    case containsAny(low, "сут", "24", "день", "day"):
        return pricing.DayForCouple.DisplayName(), true
    }
    return "", false
}

func containsAny(text string, subs ...string) bool {
    for _, s := range subs {
        if strings.Contains(text, s) {
            return true
        }
    }
    return false
}

// applyHeuristic fills field from the raw answer when it can be parsed.
func applyHeuristic(c *Context, f Field, text string, ex *dates.Extractor) {
    text = strings.TrimSpace(text)
    if text == "" {
        return
    }
    switch f {
    case FieldTariff:
        if v, ok := ParseTariff(text); ok {
            c.Tariff = v
        }
    case FieldFirstBedroom, FieldSecondBedroom, FieldSauna, FieldPhotoshoot, FieldSecretRoom:
        if v := ParseYesNo(text); v != nil {
            c.setBool(f, v)
        }
    case FieldStartDate, FieldFinishDate:
        if v, ok := parseDate(text, ex); ok {
            c.setDate(f, v)
        }
    case FieldStartTime, FieldFinishTime:
        if v, ok := dates.NormTime(text); ok {
            if f == FieldStartTime {
                c.StartTime = v
            } else {
                c.FinishTime = v
            }
        }
    case FieldNumberGuests:
        if n, err := strconv.Atoi(text); err == nil && n > 0 {
            c.NumberGuests = n
        }
    case FieldContact:
        if strings.HasPrefix(text, "@") || strings.HasPrefix(text, "+") {
            c.Contact = text
        }
    case FieldComment:
        if noCommentWords[normalize(text)] {
            c.Comment = Comment{Provided: true}
        } else {
            c.Comment = Comment{Provided: true, Text: text}
        }
    }
}

// parseDate accepts the strict format first, then a date inside free text.
func parseDate(text string, ex *dates.Extractor) (string, bool) {
    if ex == nil {
        return "", false
    }
    if ex.IsDate(text) {
        return ex.NormDate(text)
    }
    return ex.FromText(text)
}

// fillRange sets both dates from an explicit range when the start date is
// still missing ("с 20 по 22 марта").
func fillRange(c *Context, text string, ex *dates.Extractor) {
    if ex == nil || c.Has(FieldStartDate) {
        return
    }
    r, ok := ex.ExtractRange(strings.ToLower(text))
    if !ok {
        return
    }
    c.StartDate = dates.FormatDate(r.Start)
    if !c.Has(FieldFinishDate) {
        c.FinishDate = dates.FormatDate(r.End)
    }
}

func (c *Context) setBool(f Field, v *bool) {
    switch f {
    case FieldFirstBedroom:
        c.FirstBedroom = v
    case FieldSecondBedroom:
        c.SecondBedroom = v
    case FieldSauna:
        c.Sauna = v
    case FieldPhotoshoot:
        c.Photoshoot = v
    case FieldSecretRoom:
        c.SecretRoom = v
    }
}

func (c *Context) setDate(f Field, v string) {
    if f == FieldStartDate {
        c.StartDate = v
    } else {
        c.FinishDate = v
    }
}

// Merge copies every non-null extracted field into c. Values that fail the
// date/time formats are dropped rather than stored.
func (c *Context) Merge(f *ai.BookingFields, ex *dates.Extractor) {
    if f == nil {
        return
    }
    if s := str(f.Tariff); s != "" {
        if id, ok := pricing.ParseTariff(s); ok {
            c.Tariff = id.DisplayName()
        } else {
            c.Tariff = s
        }
    }
    for field, v := range map[Field]*string{FieldStartDate: f.StartDate, FieldFinishDate: f.FinishDate} {
        if s := str(v); s != "" && ex != nil {
            if d, ok := ex.NormDate(s); ok {
                c.setDate(field, d)
            }
        }
    }
    if t, ok := dates.NormTime(str(f.StartTime)); ok {
        c.StartTime = t
    }
    if t, ok := dates.NormTime(str(f.FinishTime)); ok {
        c.FinishTime = t
    }
    for field, v := range map[Field]*bool{
        FieldFirstBedroom:  f.FirstBedroom,
        FieldSecondBedroom: f.SecondBedroom,
        FieldSauna:         f.Sauna,
        FieldPhotoshoot:    f.Photoshoot,
        FieldSecretRoom:    f.SecretRoom,
    } {
        if v != nil {
            c.setBool(field, boolPtr(*v))
        }
    }
    if f.NumberGuests != nil && *f.NumberGuests > 0 {
        c.NumberGuests = *f.NumberGuests
    }
    if s := str(f.Contact); s != "" {
        c.Contact = s
    }
    if s := str(f.Comment); s != "" {
        if noCommentWords[normalize(s)] {
            c.Comment = Comment{Provided: true}
        } else {
            c.Comment = Comment{Provided: true, Text: s}
        }
    }
}

func str(s *string) string {
    if s == nil {
        return ""
    }
    return strings.TrimSpace(*s)
}
