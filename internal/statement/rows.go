package statement

import (
	"fmt"
	"strings"

	"bankstat/internal/core"
)

// Columns names the header of each field in an operations table.
type Columns struct {
	OperatedAt    string
	Card          string
	Status        string
	Category      string
	AmountRaw     string
	AmountRounded string
	Cashback      string
	Description   string
}

// DefaultColumns matches the headers of the bank's operations export.
var DefaultColumns = Columns{
	OperatedAt:    "Дата операции",
	Card:          "Номер карты",
	Status:        "Статус",
	Category:      "Категория",
	AmountRaw:     "Сумма операции",
	AmountRounded: "Сумма операции с округлением",
	Cashback:      "Кэшбэк",
	Description:   "Описание",
}

// Stats counts what happened to the data rows of a table.
type Stats struct {
	Rows     int
	Loaded   int
	NoStatus int
	Invalid  int
}

type columnIndex struct {
	operatedAt, card, status, category, amountRaw, amountRounded, cashback, description int
}

// ParseRows maps a header-first string matrix to transactions. Rows without a
// status are dropped, rows whose amounts do not parse are skipped and counted
// as invalid. A header lacking the status, date or amount column is reported
// as ErrSourceParse.
func ParseRows(values [][]string, cols Columns) ([]core.Transaction, Stats, error) {
	var stats Stats
	if len(values) == 0 {
		return nil, stats, nil
	}
	idx, err := indexColumns(values[0], cols)
	if err != nil {
		return nil, stats, err
	}

	out := make([]core.Transaction, 0, len(values)-1)
	for _, row := range values[1:] {
		if isBlank(row) {
			continue
		}
		stats.Rows++
		tx, ok, err := parseRow(row, idx)
		if err != nil {
			stats.Invalid++
			continue
		}
		if !ok {
			stats.NoStatus++
			continue
		}
		out = append(out, tx)
	}
	stats.Loaded = len(out)
	return out, stats, nil
}

// ParseValues is ParseRows for the loosely typed matrices returned by
// spreadsheet APIs.
func ParseValues(values [][]interface{}, cols Columns) ([]core.Transaction, Stats, error) {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = toStrings(v)
	}
	return ParseRows(rows, cols)
}

func parseRow(row []string, idx columnIndex) (core.Transaction, bool, error) {
	status := safeGet(row, idx.status)
	if status == "" {
		return core.Transaction{}, false, nil
	}
	raw, err := core.ParseAmount(safeGet(row, idx.amountRaw))
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("amount: %w", err)
	}
	rounded := raw
	if s := safeGet(row, idx.amountRounded); s != "" {
		if rounded, err = core.ParseAmount(s); err != nil {
			return core.Transaction{}, false, fmt.Errorf("rounded amount: %w", err)
		}
	}
	cashback, err := core.ParseOptionalAmount(safeGet(row, idx.cashback))
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("cashback: %w", err)
	}
	return core.Transaction{
		OperatedAt:    core.ParseTimestamp(safeGet(row, idx.operatedAt)),
		Card:          normalizeCard(safeGet(row, idx.card)),
		Status:        status,
		Category:      safeGet(row, idx.category),
		AmountRaw:     raw,
		AmountRounded: rounded,
		Cashback:      cashback,
		Description:   safeGet(row, idx.description),
	}, true, nil
}

func indexColumns(header []string, cols Columns) (columnIndex, error) {
	h := make([]string, len(header))
	for i, v := range header {
		h[i] = strings.TrimSpace(strings.TrimPrefix(v, "\ufeff"))
	}
	idx := columnIndex{
		operatedAt:    indexOf(h, cols.OperatedAt),
		card:          indexOf(h, cols.Card),
		status:        indexOf(h, cols.Status),
		category:      indexOf(h, cols.Category),
		amountRaw:     indexOf(h, cols.AmountRaw),
		amountRounded: indexOf(h, cols.AmountRounded),
		cashback:      indexOf(h, cols.Cashback),
		description:   indexOf(h, cols.Description),
	}
	var missing []string
	if idx.operatedAt == -1 {
		missing = append(missing, cols.OperatedAt)
	}
	if idx.status == -1 {
		missing = append(missing, cols.Status)
	}
	if idx.amountRaw == -1 {
		missing = append(missing, cols.AmountRaw)
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("%w: missing columns %s; got headers=%v", ErrSourceParse, strings.Join(missing, ","), h)
	}
	return idx, nil
}

// normalizeCard renders numeric card cells such as "7197.0" as plain digits.
func normalizeCard(s string) string {
	if whole, frac, ok := strings.Cut(s, "."); ok && strings.Trim(frac, "0") == "" && isDigits(whole) {
		return whole
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

func indexOf(arr []string, target string) int {
	if target == "" {
		return -1
	}
	for i, v := range arr {
		if strings.EqualFold(v, target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return strings.TrimSpace(arr[idx])
}
