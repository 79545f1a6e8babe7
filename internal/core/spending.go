package core

import "time"

// spendingMonths is the lookback of SpendingByCategory.
const spendingMonths = 3

// SpendingByCategory returns the records of exactly category operated in the
// three months up to and including anchor.
func SpendingByCategory(txs []Transaction, category string, anchor time.Time) []Transaction {
	start, end := SpendingWindow(anchor)
	var out []Transaction
	for _, t := range FilterByWindow(txs, start, end) {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// SpendingWindow returns the closed interval examined by SpendingByCategory.
func SpendingWindow(anchor time.Time) (start, end time.Time) {
	return addMonthsClamped(anchor, -spendingMonths), anchor
}
