// README: Russian rendering of price breakdowns and the tariff list.
package pricing

import (
    "fmt"
    "strings"

    "github.com/shopspring/decimal"
)

// FormatAmount rounds to kopecks and drops trailing zeros ("1300", "3083.33").
func FormatAmount(d decimal.Decimal) string {
    return d.Round(2).String()
}

func FormatBreakdown(b Breakdown) string {
    var sb strings.Builder
    fmt.Fprintf(&sb, "💰 %s\n\n", b.TariffName)
    sb.WriteString("📊 Стоимость аренды:\n")
    fmt.Fprintf(&sb, "• Базовая стоимость: %s руб.", FormatAmount(b.BaseCost))
    if b.DurationDays > 1 {
        fmt.Fprintf(&sb, " (%d дн.)", b.DurationDays)
    } else {
        fmt.Fprintf(&sb, " (%d ч.)", b.DurationHours)
    }
    fmt.Fprintf(&sb, "\n• Максимум гостей: %d чел.\n", b.MaxPeople)

    var includes []string
    if b.IncludesTransfer {
        includes = append(includes, "трансфер")
    }
    if b.IncludesPhotoshoot {
        includes = append(includes, "фотосъемка")
    }
    for _, l := range b.Included {
        if l == AddOnPhotoshoot.Label() && b.IncludesPhotoshoot {
            continue
        }
        includes = append(includes, strings.ToLower(l))
    }
    if len(includes) > 0 {
        fmt.Fprintf(&sb, "• Включено: %s\n", strings.Join(includes, ", "))
    }

    if len(b.AddOns) > 0 {
        sb.WriteString("\n📋 Дополнительные услуги:\n")
        for _, li := range b.AddOns {
            fmt.Fprintf(&sb, "• %s: %s руб.\n", li.Label, FormatAmount(li.Amount))
        }
    }

    fmt.Fprintf(&sb, "\n💳 Итого: %s руб.", FormatAmount(b.Total))
    if b.CheckInTimeLimited {
        sb.WriteString("\n\n⏰ Тариф с ограничением по времени заезда")
    }
    if b.SubscriptionVisits > 0 {
        fmt.Fprintf(&sb, "\n\n🎫 Абонемент на %d посещений", b.SubscriptionVisits)
    }
    return sb.String()
}

// FormatTariffs renders the tariff list in the given order.
func FormatTariffs(tariffs []Tariff) string {
    var sb strings.Builder
    sb.WriteString("📋 Доступные тарифы:\n\n")
    for _, t := range tariffs {
        fmt.Fprintf(&sb, "%s\n", t.Name)
        fmt.Fprintf(&sb, "• Цена: от %s руб.\n", FormatAmount(t.Price))
        fmt.Fprintf(&sb, "• Длительность: %d ч.\n", t.DurationHours)
        fmt.Fprintf(&sb, "• Максимум гостей: %d чел.\n", t.MaxPeople)
        if t.Transfer {
            sb.WriteString("• Включен трансфер\n")
        }
        if t.IncludesPhotoshoot() {
            sb.WriteString("• Включена фотосъемка\n")
        }
        sb.WriteString("\n")
    }
    return strings.TrimRight(sb.String(), "\n")
}

// BookingSuggestion is appended to price answers.
func BookingSuggestion(b Breakdown) string {
    if b.DurationDays > 1 {
        return "🏡 Для многодневного бронирования уточните точные даты."
    }
    return "🎯 Хотите забронировать? Укажите желаемые даты и время."
}
