// README: Common money value object used across modules.
package types

import "github.com/shopspring/decimal"

// Money keeps the full-precision amount; rounding happens only for display.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Display rounds half away from zero to the nearest whole currency unit.
func (m Money) Display() int64 {
	return m.Amount.Round(0).IntPart()
}

func (m Money) Add(o Money) Money {
	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}
}
