package core

import (
	"regexp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

const defaultTopTransactions = 5

var digitRun = regexp.MustCompile(`\d+`)

// CardSummary is the per-card line of the dashboard.
type CardSummary struct {
	LastDigits string
	TotalSpent decimal.Decimal
	Cashback   decimal.Decimal
}

// MaskCard returns the last four characters of the last digit run in id, or ""
// when id contains no digits.
func MaskCard(id string) string {
	runs := digitRun.FindAllString(id, -1)
	if len(runs) == 0 {
		return ""
	}
	last := runs[len(runs)-1]
	if len(last) > 4 {
		last = last[len(last)-4:]
	}
	return last
}

// DistinctCards returns the card identifiers in first-seen order. Records
// without a card are skipped.
func DistinctCards(txs []Transaction) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, t := range txs {
		card := strings.TrimSpace(t.Card)
		if card == "" {
			continue
		}
		if _, ok := seen[card]; ok {
			continue
		}
		seen[card] = struct{}{}
		out = append(out, card)
	}
	return out
}

// TotalForCard sums AmountRounded over the records of card, keeping the sign,
// rounded to two decimal places.
func TotalForCard(txs []Transaction, card string) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		if strings.TrimSpace(t.Card) == card {
			sum = sum.Add(t.AmountRounded)
		}
	}
	return sum.Round(2)
}

// CashbackRate derives the displayed cashback of a card as one percent of its
// total, rounded to two decimal places.
func CashbackRate(total decimal.Decimal) decimal.Decimal {
	return total.Div(decimal.NewFromInt(100)).Round(2)
}

// CardSummaries builds one summary per distinct card.
func CardSummaries(txs []Transaction) []CardSummary {
	cards := DistinctCards(txs)
	out := make([]CardSummary, 0, len(cards))
	for _, card := range cards {
		total := TotalForCard(txs, card)
		out = append(out, CardSummary{
			LastDigits: MaskCard(card),
			TotalSpent: total,
			Cashback:   CashbackRate(total),
		})
	}
	return out
}

// TopTransactions returns the n most recent records. Records whose timestamp
// did not parse sort after all dated ones, keeping their input order.
// n <= 0 selects the default of five.
func TopTransactions(txs []Transaction, n int) []Transaction {
	if n <= 0 {
		n = defaultTopTransactions
	}
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b Transaction) int {
		av, bv := a.OperatedAt.Valid(), b.OperatedAt.Valid()
		switch {
		case av && bv:
			return b.OperatedAt.Compare(a.OperatedAt.Time)
		case av:
			return -1
		case bv:
			return 1
		}
		return 0
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
