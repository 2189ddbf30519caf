// README: Common value objects (IDs, money) shared across modules.
package types

import (
    "fmt"

    "github.com/shopspring/decimal"
)

// ID identifies conversations, bookings and users across modules.
type ID string

// DefaultCurrency is the currency the house is priced in.
const DefaultCurrency = "BYN"

type Money struct {
    Amount   decimal.Decimal
    Currency string
}

func NewMoney(amount decimal.Decimal, currency string) Money {
    if currency == "" {
        currency = DefaultCurrency
    }
    return Money{Amount: amount, Currency: currency}
}

func (m Money) Add(other Money) Money {
    return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}
}

func (m Money) IsZero() bool {
    return m.Amount.IsZero()
}

// String renders the amount without trailing zeros, e.g. "1300 BYN".
func (m Money) String() string {
    return fmt.Sprintf("%s %s", m.Amount.String(), m.Currency)
}
