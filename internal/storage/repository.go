package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bankstat/internal/core"
	"bankstat/internal/statement"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SQLiteRepository stages imported statement operations in a local SQLite
// database. Computed reports are never written here.
type SQLiteRepository struct {
	db *sql.DB
}

var _ statement.Loader = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dbPath, err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const selectOperations = `
SELECT operated_at, card, status, category, amount_raw, amount_rounded, cashback, description
FROM operations
WHERE status IS NOT NULL AND TRIM(status) <> ''
ORDER BY id`

// Load implements statement.Loader. Staged rows without a status are skipped.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectOperations)
	if err != nil {
		return nil, fmt.Errorf("%w: query operations: %v", statement.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			operatedAt, card, status, category, raw, rounded, description string
			cashback                                                      sql.NullString
		)
		if err := rows.Scan(&operatedAt, &card, &status, &category, &raw, &rounded, &cashback, &description); err != nil {
			return nil, fmt.Errorf("%w: scan operation: %v", statement.ErrSourceParse, err)
		}
		tx := core.Transaction{
			OperatedAt:  core.ParseTimestamp(operatedAt),
			Card:        card,
			Status:      status,
			Category:    category,
			Description: description,
		}
		if tx.AmountRaw, err = decimal.NewFromString(raw); err != nil {
			return nil, fmt.Errorf("%w: amount %q: %v", statement.ErrSourceParse, raw, err)
		}
		if tx.AmountRounded, err = decimal.NewFromString(rounded); err != nil {
			return nil, fmt.Errorf("%w: rounded amount %q: %v", statement.ErrSourceParse, rounded, err)
		}
		if cashback.Valid {
			if tx.Cashback, err = core.ParseOptionalAmount(cashback.String); err != nil {
				return nil, fmt.Errorf("%w: cashback %q: %v", statement.ErrSourceParse, cashback.String, err)
			}
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate operations: %v", statement.ErrSourceUnavailable, err)
	}
	return out, nil
}

// Import replaces the staged operations with txs in a single transaction and
// returns the number of rows written.
func (r *SQLiteRepository) Import(ctx context.Context, txs []core.Transaction) (int, error) {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer dbtx.Rollback()

	if _, err := dbtx.ExecContext(ctx, `DELETE FROM operations`); err != nil {
		return 0, fmt.Errorf("clear operations: %w", err)
	}

	stmt, err := dbtx.PrepareContext(ctx, `
INSERT INTO operations (operated_at, card, status, category, amount_raw, amount_rounded, cashback, description)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, tx := range txs {
		var cashback sql.NullString
		if tx.Cashback.Valid {
			cashback = sql.NullString{String: tx.Cashback.Decimal.String(), Valid: true}
		}
		var status sql.NullString
		if tx.Status != "" {
			status = sql.NullString{String: tx.Status, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			tx.OperatedAt.Raw,
			tx.Card,
			status,
			tx.Category,
			tx.AmountRaw.String(),
			tx.AmountRounded.String(),
			cashback,
			tx.Description,
		); err != nil {
			return 0, fmt.Errorf("insert operation %d: %w", i, err)
		}
	}

	if err := dbtx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	slog.InfoContext(ctx, "Statement imported into SQLite", "operations", len(txs))
	return len(txs), nil
}

// Count returns the number of staged rows, including rows without a status.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM operations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count operations: %w", err)
	}
	return n, nil
}
