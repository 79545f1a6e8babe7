package core

import (
	"slices"

	"github.com/shopspring/decimal"
)

const (
	Income Sign = iota
	Expense
)

// Category labels used by the statement export.
const (
	CashCategory      = "Наличные"
	TransfersCategory = "Переводы"
	OtherCategory     = "Остальное"
)

const (
	incomeTopN  = 3
	expenseTopN = 7
)

// Sign selects which side of the ledger an aggregation looks at.
type Sign int

func (s Sign) String() string {
	if s == Income {
		return "income"
	}
	return "expense"
}

// GroupAndRank sums AmountRaw per category over the records of the given sign,
// rounds each sum to an integer and ranks the categories by descending total.
// Expense totals are reported as positive magnitudes. topN <= 0 keeps every
// category. With foldRemainder an OtherCategory entry carrying the sum of the
// categories left out of the selection is appended.
func GroupAndRank(txs []Transaction, sign Sign, topN int, foldRemainder bool) []CategoryAmount {
	totals := categoryTotals(txs, sign)

	slices.SortStableFunc(totals, func(a, b CategoryAmount) int {
		return b.Amount.Cmp(a.Amount)
	})

	if topN <= 0 || topN > len(totals) {
		topN = len(totals)
	}
	out := append([]CategoryAmount(nil), totals[:topN]...)
	if foldRemainder {
		rest := decimal.Zero
		for _, c := range totals[topN:] {
			rest = rest.Add(c.Amount)
		}
		out = append(out, CategoryAmount{Category: OtherCategory, Amount: rest})
	}
	return out
}

// IncomeMain returns the top income categories without a remainder bucket.
func IncomeMain(txs []Transaction) []CategoryAmount {
	return GroupAndRank(txs, Income, incomeTopN, false)
}

// ExpenseMain returns the top expense categories followed by the Other bucket.
func ExpenseMain(txs []Transaction) []CategoryAmount {
	return GroupAndRank(txs, Expense, expenseTopN, true)
}

// SpecialCategories returns expense totals for exactly the named categories, in
// the order given. Names without any expense are omitted.
func SpecialCategories(txs []Transaction, names ...string) []CategoryAmount {
	if len(names) == 0 {
		names = []string{CashCategory, TransfersCategory}
	}
	totals := categoryTotals(txs, Expense)
	out := make([]CategoryAmount, 0, len(names))
	for _, name := range names {
		i := slices.IndexFunc(totals, func(c CategoryAmount) bool { return c.Category == name })
		if i >= 0 {
			out = append(out, totals[i])
		}
	}
	return out
}

// TotalIncome is the sum of the rounded per-category income totals.
func TotalIncome(txs []Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range categoryTotals(txs, Income) {
		sum = sum.Add(c.Amount)
	}
	return sum
}

// TotalExpenses sums the rounded amounts of every expense record as a positive
// magnitude, rounded to two decimal places.
func TotalExpenses(txs []Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		if t.IsExpense() {
			sum = sum.Add(t.AmountRounded.Abs())
		}
	}
	return sum.Round(2)
}

// categoryTotals returns rounded per-category sums in first-seen order.
func categoryTotals(txs []Transaction, sign Sign) []CategoryAmount {
	index := map[string]int{}
	var totals []CategoryAmount
	for _, t := range txs {
		if (sign == Income && !t.IsIncome()) || (sign == Expense && !t.IsExpense()) {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(totals)
			index[t.Category] = i
			totals = append(totals, CategoryAmount{Category: t.Category, Amount: decimal.Zero})
		}
		totals[i].Amount = totals[i].Amount.Add(t.AmountRaw)
	}
	for i := range totals {
		rounded := totals[i].Amount.Round(0)
		if sign == Expense {
			rounded = rounded.Neg()
		}
		totals[i].Amount = rounded
	}
	return totals
}
