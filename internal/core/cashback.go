package core

import "github.com/shopspring/decimal"

// CashbackByCategory sums the positive cashback of the records operated in the
// given calendar year and month, per category.
func CashbackByCategory(txs []Transaction, year, month int) map[string]decimal.Decimal {
	out := map[string]decimal.Decimal{}
	for _, t := range txs {
		if !t.OperatedAt.Valid() {
			continue
		}
		if t.OperatedAt.Year() != year || int(t.OperatedAt.Month()) != month {
			continue
		}
		if !t.HasCashback() {
			continue
		}
		out[t.Category] = out[t.Category].Add(t.Cashback.Decimal)
	}
	return out
}
