// Package market looks up currency rates and stock quotes used to enrich reports.
package market

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrRateUnavailable  = errors.New("exchange rate unavailable")
	ErrPriceUnavailable = errors.New("stock price unavailable")
)

// Currencies and Tickers are the fixed sets shown on reports.
var (
	Currencies = []string{"USD", "EUR"}
	Tickers    = []string{"AAPL", "AMZN", "GOOGL", "MSFT", "TSLA"}
)

// RateProvider returns how many roubles one unit of base costs.
type RateProvider interface {
	Rate(ctx context.Context, base string) (decimal.Decimal, error)
}

// PriceProvider returns the latest price of ticker. A quote the provider does
// not know is reported as an invalid NullDecimal with a nil error.
type PriceProvider interface {
	Price(ctx context.Context, ticker string) (decimal.NullDecimal, error)
}

// Rate is one currency entry of a report. Rate is invalid when the lookup failed.
type Rate struct {
	Currency string
	Rate     decimal.NullDecimal
}

// Price is one stock entry of a report. Price is invalid when the lookup failed.
type Price struct {
	Stock string
	Price decimal.NullDecimal
}

// Snapshot holds enrichment data in the order of the requested currencies and tickers.
type Snapshot struct {
	Rates  []Rate
	Prices []Price
}

// Enricher produces a Snapshot for a report. Implementations never fail:
// unavailable entries are left invalid.
type Enricher interface {
	Snapshot(ctx context.Context) Snapshot
}

// EnricherFunc adapts a function to the Enricher interface.
type EnricherFunc func(ctx context.Context) Snapshot

func (f EnricherFunc) Snapshot(ctx context.Context) Snapshot { return f(ctx) }

// Static returns an Enricher that always yields s.
func Static(s Snapshot) Enricher {
	return EnricherFunc(func(context.Context) Snapshot { return s })
}
