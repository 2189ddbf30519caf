package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	m := NewMoney(decimal.NewFromInt(700), "")
	assert.Equal(t, DefaultCurrency, m.Currency)

	sum := m.Add(NewMoney(decimal.RequireFromString("100.50"), "BYN"))
	assert.True(t, sum.Amount.Equal(decimal.RequireFromString("800.5")))
	assert.Equal(t, "800.5 BYN", sum.String())
	assert.False(t, sum.IsZero())
	assert.True(t, Money{}.IsZero())
}
