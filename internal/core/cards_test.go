package core

import (
	"fmt"
	"testing"
)

func TestMaskCard(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"7000 79** **** 1234", "1234"},
		{"", ""},
		{"*7197", "7197"},
		{"Visa Platinum 7000792289606361", "6361"},
		{"Card 12 ending 98", "98"},
		{"no digits here", ""},
		{"5562", "5562"},
	}
	for _, tc := range cases {
		if got := MaskCard(tc.in); got != tc.want {
			t.Errorf("MaskCard(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDistinctCards(t *testing.T) {
	txs := []Transaction{
		{Card: "*7197"},
		{Card: ""},
		{Card: "*4556"},
		{Card: "*7197"},
		{Card: "5091"},
	}
	got := DistinctCards(txs)
	want := []string{"*7197", "*4556", "5091"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestTotalForCardAndCashbackRate(t *testing.T) {
	txs := []Transaction{
		{Card: "*7197", AmountRounded: dec(t, "-160.891")},
		{Card: "*7197", AmountRounded: dec(t, "-64.00")},
		{Card: "*7197", AmountRounded: dec(t, "10")},
		{Card: "*4556", AmountRounded: dec(t, "-1")},
	}
	total := TotalForCard(txs, "*7197")
	if !total.Equal(dec(t, "-214.89")) {
		t.Fatalf("total = %s, want -214.89", total)
	}
	if got := CashbackRate(total); !got.Equal(dec(t, "-2.15")) {
		t.Fatalf("cashback = %s, want -2.15", got)
	}
	if got := TotalForCard(txs, "*0000"); !got.IsZero() {
		t.Fatalf("unknown card total = %s", got)
	}
}

func TestCardSummaries(t *testing.T) {
	txs := []Transaction{
		{Card: "*7197", AmountRounded: dec(t, "-1000")},
		{Card: "*4556", AmountRounded: dec(t, "-250")},
	}
	got := CardSummaries(txs)
	if len(got) != 2 {
		t.Fatalf("expected two cards, got %v", got)
	}
	if got[0].LastDigits != "7197" || !got[0].TotalSpent.Equal(dec(t, "-1000")) || !got[0].Cashback.Equal(dec(t, "-10")) {
		t.Fatalf("unexpected first card summary %+v", got[0])
	}
}

func TestTopTransactions(t *testing.T) {
	txs := []Transaction{
		op(t, "01.03.2024 10:00:00", "oldest", "-1"),
		op(t, "broken", "undated", "-1"),
		op(t, "05.03.2024 10:00:00", "newest", "-1"),
		op(t, "03.03.2024 10:00:00", "middle", "-1"),
	}
	got := TopTransactions(txs, 3)
	want := []string{"newest", "middle", "oldest"}
	for i, w := range want {
		if got[i].Category != w {
			t.Fatalf("position %d = %q, want %q", i, got[i].Category, w)
		}
	}
	if txs[0].Category != "oldest" {
		t.Fatalf("input slice was reordered")
	}

	all := TopTransactions(txs, 10)
	if len(all) != 4 || all[3].Category != "undated" {
		t.Fatalf("fewer than n records should all be returned, undated last: %v", all)
	}

	if got := TopTransactions(nil, 5); len(got) != 0 {
		t.Fatalf("empty input should yield empty result")
	}
}

func TestTopTransactionsDefaultsToFive(t *testing.T) {
	var txs []Transaction
	for i := 1; i <= 7; i++ {
		txs = append(txs, op(t, fmt.Sprintf("%02d.03.2024 10:00:00", i), "x", "-1"))
	}
	if got := TopTransactions(txs, 0); len(got) != 5 {
		t.Fatalf("expected 5, got %d", len(got))
	}
}
