package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestMoneyAdd(t *testing.T) {
	a := NewMoney(mustDecimal(t, "136.5"), "EUR")
	b := NewMoney(mustDecimal(t, "58.5"), "EUR")
	sum := a.Add(b)
	if !sum.Amount.Equal(decimal.NewFromInt(195)) || sum.Currency != "EUR" {
		t.Errorf("Add = %s %s", sum.Amount, sum.Currency)
	}
}

func TestMoneyDisplay(t *testing.T) {
	cases := map[string]int64{"74.925": 75, "112.5": 113, "30": 30, "0.49": 0}
	for raw, want := range cases {
		m := NewMoney(mustDecimal(t, raw), "EUR")
		if got := m.Display(); got != want {
			t.Errorf("Display(%s) = %d, want %d", raw, got, want)
		}
	}
}
