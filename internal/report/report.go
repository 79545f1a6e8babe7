package report

import (
	"context"
	"time"

	"bankstat/internal/core"
	"bankstat/internal/market"

	"github.com/shopspring/decimal"
)

const topTransactions = 5

// Dashboard builds the home page payload. The greeting follows the anchor's
// hour. Cards and top transactions cover every operation in txs.
func Dashboard(ctx context.Context, anchor time.Time, txs []core.Transaction, enricher market.Enricher) DashboardPayload {
	p := DashboardPayload{
		Greeting:        core.GreetingForHour(anchor.Hour()).String(),
		Cards:           []CardEntry{},
		TopTransactions: []TransactionEntry{},
	}
	for _, c := range core.CardSummaries(txs) {
		p.Cards = append(p.Cards, CardEntry{
			LastDigits: c.LastDigits,
			TotalSpent: c.TotalSpent.InexactFloat64(),
			Cashback:   c.Cashback.InexactFloat64(),
		})
	}
	for _, t := range core.TopTransactions(txs, topTransactions) {
		p.TopTransactions = append(p.TopTransactions, TransactionEntry{
			Date:        t.OperatedAt.DateString(),
			Amount:      t.AmountRounded.InexactFloat64(),
			Category:    t.Category,
			Description: t.Description,
		})
	}
	p.CurrencyRates, p.StockPrices = enrichment(ctx, enricher)
	return p
}

// WindowReport builds the events page payload over the operations that fall
// in the window ending at anchor.
func WindowReport(ctx context.Context, anchor time.Time, window core.Window, txs []core.Transaction, enricher market.Enricher) (WindowPayload, error) {
	start, end, err := core.ResolveWindow(anchor, window)
	if err != nil {
		return WindowPayload{}, err
	}
	in := core.FilterByWindow(txs, start, end)

	p := WindowPayload{
		Expenses: ExpensesSection{
			TotalAmount:      core.TotalExpenses(in).InexactFloat64(),
			Main:             categoryEntries(core.ExpenseMain(in)),
			TransfersAndCash: categoryEntries(core.SpecialCategories(in)),
		},
		Income: IncomeSection{
			TotalAmount: core.TotalIncome(in).InexactFloat64(),
			Main:        categoryEntries(core.IncomeMain(in)),
		},
	}
	p.CurrencyRates, p.StockPrices = enrichment(ctx, enricher)
	return p, nil
}

// Cashback reports cashback per category for one calendar month.
func Cashback(txs []core.Transaction, year, month int) CashbackPayload {
	out := CashbackPayload{}
	for category, total := range core.CashbackByCategory(txs, year, month) {
		out[category] = total.InexactFloat64()
	}
	return out
}

// Spending lists the operations of one category in the three months up to anchor.
func Spending(txs []core.Transaction, category string, anchor time.Time) SpendingPayload {
	ops := core.SpendingByCategory(txs, category, anchor)
	from, to := core.SpendingWindow(anchor)
	p := SpendingPayload{
		Category:   category,
		From:       from.Format(core.AnchorLayout),
		To:         to.Format(core.AnchorLayout),
		Operations: make([]OperationEntry, 0, len(ops)),
	}
	total := decimal.Zero
	for _, t := range ops {
		total = total.Add(t.AmountRaw)
		p.Operations = append(p.Operations, OperationEntry{
			OperatedAt:  t.OperatedAt.Raw,
			Card:        t.Card,
			Category:    t.Category,
			Amount:      t.AmountRaw.InexactFloat64(),
			Description: t.Description,
		})
	}
	p.Total = total.Round(2).InexactFloat64()
	return p
}

func categoryEntries(in []core.CategoryAmount) []CategoryEntry {
	out := make([]CategoryEntry, 0, len(in))
	for _, c := range in {
		out = append(out, CategoryEntry{Category: c.Category, Amount: c.Amount.InexactFloat64()})
	}
	return out
}

func enrichment(ctx context.Context, enricher market.Enricher) ([]RateEntry, []PriceEntry) {
	var snap market.Snapshot
	if enricher != nil {
		snap = enricher.Snapshot(ctx)
	}
	rates := make([]RateEntry, 0, len(snap.Rates))
	for _, r := range snap.Rates {
		rates = append(rates, RateEntry{Currency: r.Currency, Rate: optional(r.Rate)})
	}
	prices := make([]PriceEntry, 0, len(snap.Prices))
	for _, p := range snap.Prices {
		prices = append(prices, PriceEntry{Stock: p.Stock, Price: optional(p.Price)})
	}
	return rates, prices
}

func optional(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}
