// README: Pricing service resolves tariffs and computes booking cost breakdowns.
package pricing

import (
    "context"
    "fmt"
    "strings"
    "sync/atomic"
    "time"

    "github.com/shopspring/decimal"

    "secrethouse/internal/types"
)

type Service struct {
    table    atomic.Pointer[Table]
    currency string
}

func NewService(table *Table, currency string) *Service {
    if currency == "" {
        currency = types.DefaultCurrency
    }
    s := &Service{currency: currency}
    s.table.Store(table)
    return s
}

// Replace swaps the tariff table. Turns already holding the old table keep
// reading it unchanged.
func (s *Service) Replace(t *Table) {
    if t != nil {
        s.table.Store(t)
    }
}

func (s *Service) Table() *Table {
    return s.table.Load()
}

func (s *Service) Currency() string {
    return s.currency
}

func (s *Service) Tariff(id TariffID) (Tariff, bool) {
    return s.Table().Get(id)
}

func (s *Service) Tariffs() []Tariff {
    return s.Table().All()
}

// Calculate prices a request against the current table. ErrUnknownTariff is
// returned only for an explicit tariff id that the table does not define.
func (s *Service) Calculate(ctx context.Context, req Request) (Breakdown, error) {
    if err := ctx.Err(); err != nil {
        return Breakdown{}, err
    }
    table := s.Table()
    tariff, err := resolveTariff(table, req)
    if err != nil {
        return Breakdown{}, err
    }

    days := durationDays(req)
    base := baseCost(tariff, days)

    b := Breakdown{
        TariffID:           tariff.ID,
        TariffName:         tariff.Name,
        BaseCost:           base,
        DurationHours:      tariff.DurationHours,
        DurationDays:       days,
        Currency:           s.currency,
        MaxPeople:          tariff.MaxPeople,
        IncludesTransfer:   tariff.Transfer,
        IncludesPhotoshoot: tariff.IncludesPhotoshoot(),
        CheckInTimeLimited: tariff.CheckInTimeLimited,
        SubscriptionVisits: tariff.SubscriptionVisits,
    }

    seen := make(map[AddOn]bool, len(req.AddOns))
    for _, a := range req.AddOns {
        if seen[a] {
            continue
        }
        seen[a] = true
        price := tariff.AddOnPrice(a)
        if price.IsPositive() {
            b.AddOns = append(b.AddOns, LineItem{Label: a.Label(), Amount: price})
        } else {
            b.Included = append(b.Included, a.Label())
        }
    }

    if extra := req.Guests - tariff.MaxPeople; tariff.MaxPeople > 0 && extra > 0 && tariff.ExtraPeoplePrice.IsPositive() {
        b.AddOns = append(b.AddOns, LineItem{
            Label:  fmt.Sprintf("Дополнительные гости (%d)", extra),
            Amount: tariff.ExtraPeoplePrice.Mul(decimal.NewFromInt(int64(extra))),
        })
    }
    if req.ExtraHours > 0 && tariff.ExtraHourPrice.IsPositive() {
        b.AddOns = append(b.AddOns, LineItem{
            Label:  fmt.Sprintf("Дополнительные часы (%d)", req.ExtraHours),
            Amount: tariff.ExtraHourPrice.Mul(decimal.NewFromInt(int64(req.ExtraHours))),
        })
    }

    total := base
    for _, li := range b.AddOns {
        total = total.Add(li.Amount)
    }
    b.Total = total
    return b, nil
}

// SummarizeAllTariffs lists every tariff ordered by id.
func (s *Service) SummarizeAllTariffs() string {
    return FormatTariffs(s.Tariffs())
}

func resolveTariff(table *Table, req Request) (Tariff, error) {
    if req.TariffID != nil {
        t, ok := table.Get(*req.TariffID)
        if !ok {
            return Tariff{}, fmt.Errorf("%w: %d", ErrUnknownTariff, int(*req.TariffID))
        }
        return t, nil
    }
    if req.Tariff != "" {
        if id, ok := ParseTariff(req.Tariff); ok {
            if t, ok := table.Get(id); ok {
                return t, nil
            }
        }
    }
    t, ok := table.Get(DefaultTariff)
    if !ok {
        return Tariff{}, fmt.Errorf("%w: default tariff %d", ErrUnknownTariff, int(DefaultTariff))
    }
    return t, nil
}

func durationDays(req Request) int {
    if req.Days > 0 {
        return req.Days
    }
    if !req.Start.IsZero() && !req.End.IsZero() {
        if d := calendarDays(req.Start, req.End); d > 1 {
            return d
        }
    }
    return 1
}

func calendarDays(start, end time.Time) int {
    s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
    e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
    return int(e.Sub(s).Hours() / 24)
}

// baseCost: flat price for one day, then an exact multi-day entry, then
// linear extrapolation from the largest entry, then price per day.
func baseCost(t Tariff, days int) decimal.Decimal {
    if days <= 1 {
        return t.Price
    }
    table := t.dayPrices()
    for _, dp := range table {
        if dp.days == days {
            return dp.price
        }
    }
    if len(table) > 0 {
        largest := table[len(table)-1]
        return largest.price.Mul(decimal.NewFromInt(int64(days))).Div(decimal.NewFromInt(int64(largest.days)))
    }
    return t.Price.Mul(decimal.NewFromInt(int64(days)))
}

type tariffRule struct {
    markers []string
    resolve func(text string) TariffID
}

func fixed(id TariffID) func(string) TariffID {
    return func(string) TariffID { return id }
}

// tariffRules are checked in order; the first rule whose marker occurs in
// the lower-cased description decides.
var tariffRules = []tariffRule{
    {
        markers: []string{"абонемент", "subscription", "membership", "package", "посещени"},
        resolve: func(text string) TariffID {
            switch {
            case containsAny(text, "8", "восемь"):
                return Subscription8
            case containsAny(text, "5", "пять"):
                return Subscription5
            default:
                return Subscription3
            }
        },
    },
    {
        markers: []string{"инкогнито", "инконито", "incognito"},
        resolve: func(text string) TariffID {
            if containsAny(text, "12", "полсуток", "half") {
                return IncognitoHours
            }
            return IncognitoDay
        },
    },
    {
        markers: []string{"рабоч", "дневн", "будн", "working", "business"},
        resolve: fixed(Worker),
    },
    {
        markers: []string{"12", "двенадцать", "полсуток", "half"},
        resolve: fixed(Hours12),
    },
    {
        markers: []string{"суточн", "сутки", "сут", "daily", "24", "день", "day"},
        resolve: func(text string) TariffID {
            if containsAny(text, "двоих", "двух", "пар", "два", "2", "couple", "two") {
                return DayForCouple
            }
            return DayForThree
        },
    },
}

// ParseTariff maps an informal description ("суточно для двоих",
// "incognito 12") to a tariff id.
func ParseTariff(desc string) (TariffID, bool) {
    text := strings.ToLower(strings.TrimSpace(desc))
    if text == "" {
        return 0, false
    }
    for _, r := range tariffRules {
        if containsAny(text, r.markers...) {
            return r.resolve(text), true
        }
    }
    return 0, false
}

func containsAny(text string, subs ...string) bool {
    for _, s := range subs {
        if strings.Contains(text, s) {
            return true
        }
    }
    return false
}
