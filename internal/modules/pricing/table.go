// README: Immutable tariff table; replaced wholesale on reload.
package pricing

import (
    "fmt"
    "sort"

    "github.com/shopspring/decimal"
)

type Table struct {
    tariffs map[TariffID]Tariff
    ids     []TariffID
}

// NewTable validates and indexes tariffs. The slice is copied.
func NewTable(tariffs []Tariff) (*Table, error) {
    t := &Table{tariffs: make(map[TariffID]Tariff, len(tariffs))}
    for _, tr := range tariffs {
        if _, dup := t.tariffs[tr.ID]; dup {
            return nil, fmt.Errorf("duplicate tariff %d", tr.ID)
        }
        if tr.Price.IsNegative() {
            return nil, fmt.Errorf("tariff %d: negative price", tr.ID)
        }
        if tr.Name == "" {
            tr.Name = tr.ID.DisplayName()
        }
        prices := make(map[string]decimal.Decimal, len(tr.MultiDayPrices))
        for k, v := range tr.MultiDayPrices {
            prices[k] = v
        }
        tr.MultiDayPrices = prices
        t.tariffs[tr.ID] = tr
        t.ids = append(t.ids, tr.ID)
    }
    sort.Slice(t.ids, func(i, j int) bool { return t.ids[i] < t.ids[j] })
    return t, nil
}

func (t *Table) Get(id TariffID) (Tariff, bool) {
    tr, ok := t.tariffs[id]
    return tr, ok
}

// All returns the tariffs ordered by id.
func (t *Table) All() []Tariff {
    out := make([]Tariff, 0, len(t.ids))
    for _, id := range t.ids {
        out = append(out, t.tariffs[id])
    }
    return out
}

func (t *Table) Len() int {
    return len(t.ids)
}
