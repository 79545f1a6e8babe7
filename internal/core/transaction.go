package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OperationLayout is the fixed textual format of the operation date column.
const OperationLayout = "02.01.2006 15:04:05"

type (
	// Timestamp is an operation date that went through validation at the
	// record boundary. Raw keeps the source text for records that failed to parse.
	Timestamp struct {
		time.Time
		Raw string
	}

	// Transaction is one ledger line of a statement export.
	Transaction struct {
		OperatedAt    Timestamp
		Card          string
		Status        string
		Category      string
		AmountRaw     decimal.Decimal // unrounded operation amount, negative = expense
		AmountRounded decimal.Decimal // amount with the bank's rounding applied
		Cashback      decimal.NullDecimal
		Description   string
	}

	// CategoryAmount represents an amount aggregated by category name.
	CategoryAmount struct {
		Category string
		Amount   decimal.Decimal
	}
)

var (
	ErrMissingStatus = errors.New("missing status")
)

// ParseTimestamp parses raw in OperationLayout. It never fails: a value that does
// not parse yields a Timestamp whose Valid reports false.
func ParseTimestamp(raw string) Timestamp {
	raw = strings.TrimSpace(raw)
	t, err := time.ParseInLocation(OperationLayout, raw, time.UTC)
	if err != nil {
		return Timestamp{Raw: raw}
	}
	return Timestamp{Time: t, Raw: raw}
}

// NewTimestamp wraps an already parsed time.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Raw: t.Format(OperationLayout)}
}

// Valid reports whether the timestamp was parsed successfully.
func (ts Timestamp) Valid() bool {
	return !ts.Time.IsZero()
}

// DateString returns the DD.MM.YYYY part of the operation date.
func (ts Timestamp) DateString() string {
	if ts.Valid() {
		return ts.Format("02.01.2006")
	}
	if i := strings.IndexByte(ts.Raw, ' '); i >= 0 {
		return ts.Raw[:i]
	}
	return ts.Raw
}

// Validate checks the invariants every record must hold before entering aggregation.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Status) == "" {
		return ErrMissingStatus
	}
	return nil
}

// IsExpense reports whether the raw amount is strictly negative.
func (t Transaction) IsExpense() bool {
	return t.AmountRaw.IsNegative()
}

// IsIncome reports whether the raw amount is strictly positive.
func (t Transaction) IsIncome() bool {
	return t.AmountRaw.IsPositive()
}

// HasCashback reports whether the record carries a strictly positive cashback.
func (t Transaction) HasCashback() bool {
	return t.Cashback.Valid && t.Cashback.Decimal.IsPositive()
}
