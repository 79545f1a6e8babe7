package memory

import (
	"context"
	"testing"

	"bankstat/internal/core"

	"github.com/shopspring/decimal"
)

func tx(status, category string, amount int64) core.Transaction {
	return core.Transaction{
		OperatedAt: core.ParseTimestamp("01.02.2022 10:00:00"),
		Status:     status,
		Category:   category,
		AmountRaw:  decimal.NewFromInt(amount),
	}
}

func TestMemoryStoreAppendAndLoad(t *testing.T) {
	s := New(tx("OK", "A", -10), tx("", "B", -5))
	if s.Len() != 1 {
		t.Fatalf("expected status-less operation to be dropped, got %d", s.Len())
	}

	if err := s.Append(context.Background(), tx("", "C", 1)); err != core.ErrMissingStatus {
		t.Fatalf("expected ErrMissingStatus, got %v", err)
	}
	if err := s.Append(context.Background(), tx("FAILED", "C", 1)); err != nil {
		t.Fatalf("unexpected append error: %v", err)
	}

	got, err := s.Load(context.Background())
	if err != nil || len(got) != 2 {
		t.Fatalf("unexpected load: %v %v", got, err)
	}
	if got[0].Category != "A" || got[1].Category != "C" {
		t.Fatalf("insertion order not kept: %v", got)
	}

	got[0].Category = "mutated"
	again, _ := s.Load(context.Background())
	if again[0].Category != "A" {
		t.Fatalf("Load must return a copy")
	}
}

func TestMemoryStoreReplace(t *testing.T) {
	s := New(tx("OK", "A", -10))
	n := s.Replace([]core.Transaction{tx("OK", "X", 1), tx(" ", "Y", 2), tx("OK", "Z", 3)})
	if n != 2 || s.Len() != 2 {
		t.Fatalf("expected 2 kept operations, got %d/%d", n, s.Len())
	}
}
