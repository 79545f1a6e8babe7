package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

// op builds a valid record with the same raw and rounded amount.
func op(t *testing.T, when, category, amount string) Transaction {
	t.Helper()
	a := dec(t, amount)
	return Transaction{
		OperatedAt:    ParseTimestamp(when),
		Status:        "OK",
		Category:      category,
		AmountRaw:     a,
		AmountRounded: a,
	}
}

func assertRanking(t *testing.T, got []CategoryAmount, want []CategoryAmount) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d entries %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i].Category != want[i].Category || !got[i].Amount.Equal(want[i].Amount) {
			t.Fatalf("entry %d: got %s=%s, want %s=%s", i,
				got[i].Category, got[i].Amount, want[i].Category, want[i].Amount)
		}
	}
}
