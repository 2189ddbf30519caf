// README: Tariff-dependent required slots and the questions that ask for them.
package booking

import (
    "fmt"

    "secrethouse/internal/modules/pricing"
)

var schedule = []Field{FieldStartDate, FieldStartTime, FieldFinishDate, FieldFinishTime}

func withSchedule(prefix ...Field) []Field {
    out := append([]Field{}, prefix...)
    out = append(out, schedule...)
    return append(out, FieldNumberGuests)
}

// tariffFields lists, per tariff, the slots asked between the tariff and
// the contact/comment pair. Adding a tariff is a change to this table only.
var tariffFields = map[pricing.TariffID][]Field{
    pricing.Hours12:        withSchedule(FieldSauna, FieldSecretRoom, FieldSecondBedroom, FieldFirstBedroom),
    pricing.Worker:         withSchedule(FieldSauna, FieldSecretRoom, FieldSecondBedroom, FieldFirstBedroom),
    pricing.DayForThree:    withSchedule(FieldSauna, FieldPhotoshoot),
    pricing.DayForCouple:   withSchedule(FieldSauna, FieldPhotoshoot),
    pricing.IncognitoDay:   withSchedule(),
    pricing.IncognitoHours: withSchedule(),
    pricing.Subscription3:  withSchedule(),
    pricing.Subscription5:  withSchedule(),
    pricing.Subscription8:  withSchedule(),
}

// RequiredFields returns the ordered slots for the context's tariff. An
// unknown tariff only needs the base slots.
func RequiredFields(c Context) []Field {
    out := []Field{FieldTariff}
    if id, ok := c.TariffID(); ok {
        out = append(out, tariffFields[id]...)
    }
    return append(out, FieldContact, FieldComment)
}

// Relevant reports whether the tariff of c asks for f.
func Relevant(c Context, f Field) bool {
    for _, r := range RequiredFields(c) {
        if r == f {
            return true
        }
    }
    return false
}

// FirstMissing returns the first required slot without a value. The first
// bedroom is never asked once the second one has been answered.
func FirstMissing(c Context) (Field, bool) {
    for _, f := range RequiredFields(c) {
        if f == FieldFirstBedroom && c.SecondBedroom != nil {
            continue
        }
        if !c.Has(f) {
            return f, true
        }
    }
    return "", false
}

var questions = map[Field]string{
    FieldTariff:        "Укажи тариф: `12 часов`, `Суточно для пар`, `Суточно от 3-х человек`, `Инкогнито 12 часов`, `Инкогнито на сутки`, `Рабочий`, `Абонемент`.",
    FieldStartDate:     "Дата заезда? `ДД.ММ` или `ДД.ММ.ГГГГ`.",
    FieldStartTime:     "Время заезда? `HH:MM`.",
    FieldFinishDate:    "Дата выезда? `ДД.ММ` или `ДД.ММ.ГГГГ`.",
    FieldFinishTime:    "Время выезда? `HH:MM`.",
    FieldFirstBedroom:  "Нужна первая (зелёная) спальня? (`да`/`нет`)",
    FieldSecondBedroom: "Нужна вторая (белая) спальня? (`да`/`нет`)",
    FieldSauna:         "Добавить сауну? (`да`/`нет`)",
    FieldPhotoshoot:    "Нужна фотосъёмка? (`да`/`нет`)",
    FieldSecretRoom:    "Нужна секретная комната? (`да`/`нет`)",
    FieldNumberGuests:  "Сколько гостей будет? Укажи числом.",
    FieldContact:       "Контакт для связи: `@username` или телефон с `+`.",
    FieldComment:       "Комментарий к брони (или напиши `нет`).",
}

var pricedQuestions = map[Field]struct {
    addOn  pricing.AddOn
    prompt string
}{
    FieldSauna:         {pricing.AddOnSauna, "Добавить сауну"},
    FieldSecretRoom:    {pricing.AddOnSecretRoom, "Нужна секретная комната"},
    FieldSecondBedroom: {pricing.AddOnSecondBedroom, "Нужна вторая (белая) спальня"},
    FieldPhotoshoot:    {pricing.AddOnPhotoshoot, "Нужна фотосъёмка"},
}

// Question renders the prompt for f. Add-on questions carry the live price
// of the selected tariff when it is known.
func Question(c Context, f Field, tariffs TariffLookup) string {
    pq, priced := pricedQuestions[f]
    if !priced || tariffs == nil {
        return questions[f]
    }
    id, ok := c.TariffID()
    if !ok {
        return questions[f]
    }
    t, ok := tariffs.Tariff(id)
    if !ok {
        return questions[f]
    }
    price := t.AddOnPrice(pq.addOn)
    if price.IsPositive() {
        return fmt.Sprintf("%s за %s руб.? (`да`/`нет`)", pq.prompt, pricing.FormatAmount(price))
    }
    return fmt.Sprintf("%s? Входит в тариф бесплатно. (`да`/`нет`)", pq.prompt)
}
