package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"bankstat/internal/core"

	"github.com/shopspring/decimal"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "bankstat.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestImportAndLoad(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	cashback, _ := core.ParseOptionalAmount("3")
	txs := []core.Transaction{
		{
			OperatedAt:    core.ParseTimestamp("31.12.2021 16:44:00"),
			Card:          "*7197",
			Status:        "OK",
			Category:      "Супермаркеты",
			AmountRaw:     decimal.RequireFromString("-160.89"),
			AmountRounded: decimal.RequireFromString("160.89"),
			Cashback:      cashback,
			Description:   "Колхоз",
		},
		{
			OperatedAt:    core.ParseTimestamp("31.12.2021 16:39:04"),
			Status:        "",
			AmountRaw:     decimal.RequireFromString("-1"),
			AmountRounded: decimal.RequireFromString("1"),
		},
		{
			OperatedAt:    core.ParseTimestamp("bad date"),
			Status:        "FAILED",
			Category:      "Связь",
			AmountRaw:     decimal.RequireFromString("-300"),
			AmountRounded: decimal.RequireFromString("300"),
		},
	}

	n, err := repo.Import(ctx, txs)
	if err != nil || n != 3 {
		t.Fatalf("Import: n=%d err=%v", n, err)
	}
	if c, _ := repo.Count(ctx); c != 3 {
		t.Fatalf("expected 3 staged rows, got %d", c)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected rows without status to be skipped, got %d", len(got))
	}
	first := got[0]
	if !first.OperatedAt.Equal(txs[0].OperatedAt.Time) || first.Card != "*7197" || first.Description != "Колхоз" {
		t.Errorf("unexpected first operation %+v", first)
	}
	if !first.AmountRaw.Equal(txs[0].AmountRaw) || !first.Cashback.Valid || first.Cashback.Decimal.String() != "3" {
		t.Errorf("amounts not preserved: %+v", first)
	}
	if got[1].OperatedAt.Valid() || got[1].OperatedAt.Raw != "bad date" {
		t.Errorf("unparsed timestamp should round-trip raw, got %+v", got[1].OperatedAt)
	}
	if got[1].Cashback.Valid {
		t.Errorf("absent cashback should stay absent")
	}
}

func TestImportReplacesPreviousBatch(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	tx := core.Transaction{
		OperatedAt:    core.ParseTimestamp("01.01.2022 00:00:00"),
		Status:        "OK",
		AmountRaw:     decimal.NewFromInt(1),
		AmountRounded: decimal.NewFromInt(1),
	}
	if _, err := repo.Import(ctx, []core.Transaction{tx, tx}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Import(ctx, []core.Transaction{tx}); err != nil {
		t.Fatal(err)
	}
	got, err := repo.Load(ctx)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected 1 operation after re-import, got %d (%v)", len(got), err)
	}
}

func TestReopenKeepsSchemaAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bankstat.db")
	ctx := context.Background()

	first, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	tx := core.Transaction{
		OperatedAt:    core.ParseTimestamp("01.01.2022 00:00:00"),
		Status:        "OK",
		AmountRaw:     decimal.NewFromInt(-5),
		AmountRounded: decimal.NewFromInt(5),
	}
	if _, err := first.Import(ctx, []core.Transaction{tx}); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	if n, _ := second.Count(ctx); n != 1 {
		t.Errorf("expected the staged row to survive a reopen, got %d", n)
	}
}

func TestSchemaVersionAndReady(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	version, dirty, err := repo.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != SchemaVersion || dirty {
		t.Errorf("schema version = %d dirty=%t, want %d clean", version, dirty, SchemaVersion)
	}
	if err := repo.Ready(ctx); err != nil {
		t.Errorf("Ready on a migrated database: %v", err)
	}

	if _, err := repo.db.ExecContext(ctx, `UPDATE schema_migrations SET dirty = 1`); err != nil {
		t.Fatal(err)
	}
	if err := repo.Ready(ctx); !errors.Is(err, ErrSchemaOutdated) {
		t.Errorf("Ready on a dirty schema: expected ErrSchemaOutdated, got %v", err)
	}
}

func TestReadyAfterClose(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "closed.db"))
	if err != nil {
		t.Fatal(err)
	}
	_ = repo.Close()
	if err := repo.Ready(context.Background()); err == nil {
		t.Error("expected Ready to fail on a closed database")
	}
}
