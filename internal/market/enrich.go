package market

import (
	"context"
	"log/slog"
	"time"

	"bankstat/internal/cache"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentLookups = 4

// Enrich looks up every currency and ticker concurrently. A failed or missing
// lookup leaves its entry invalid and is logged; Enrich itself never fails.
// A nil provider leaves all of its entries invalid.
func Enrich(ctx context.Context, rates RateProvider, prices PriceProvider, currencies, tickers []string) Snapshot {
	snap := Snapshot{
		Rates:  make([]Rate, len(currencies)),
		Prices: make([]Price, len(tickers)),
	}
	for i, c := range currencies {
		snap.Rates[i].Currency = c
	}
	for i, t := range tickers {
		snap.Prices[i].Stock = t
	}

	// Goroutines never return errors so one failure does not cancel the rest.
	var g errgroup.Group
	g.SetLimit(maxConcurrentLookups)

	if rates != nil {
		for i, c := range currencies {
			g.Go(func() error {
				v, err := rates.Rate(ctx, c)
				if err != nil {
					slog.WarnContext(ctx, "Exchange rate lookup failed", "component", "market", "currency", c, "error", err)
					return nil
				}
				snap.Rates[i].Rate = decimal.NewNullDecimal(v)
				return nil
			})
		}
	}
	if prices != nil {
		for i, t := range tickers {
			g.Go(func() error {
				v, err := prices.Price(ctx, t)
				if err != nil {
					slog.WarnContext(ctx, "Stock price lookup failed", "component", "market", "ticker", t, "error", err)
					return nil
				}
				if !v.Valid {
					slog.DebugContext(ctx, "Stock price missing from response", "component", "market", "ticker", t)
				}
				snap.Prices[i].Price = v
				return nil
			})
		}
	}
	_ = g.Wait()
	return snap
}

// Service is the Enricher used by report services. Each snapshot is bounded
// by Timeout.
type Service struct {
	Rates      RateProvider
	Prices     PriceProvider
	Currencies []string
	Tickers    []string
	Timeout    time.Duration
}

var _ Enricher = (*Service)(nil)

// NewService builds an enricher over the default currency and ticker sets.
// Empty API keys disable the corresponding provider.
func NewService(apiLayerKey, twelveDataKey string, timeout, cacheTTL time.Duration) *Service {
	s := &Service{
		Currencies: Currencies,
		Tickers:    Tickers,
		Timeout:    timeout,
	}
	if apiLayerKey != "" {
		s.Rates = NewCachedRates(NewAPILayer(APILayerConfig{APIKey: apiLayerKey}), cacheTTL)
	}
	if twelveDataKey != "" {
		s.Prices = NewCachedPrices(NewTwelveData(TwelveDataConfig{APIKey: twelveDataKey}), cacheTTL)
	}
	return s
}

func (s *Service) Snapshot(ctx context.Context) Snapshot {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	return Enrich(ctx, s.Rates, s.Prices, s.Currencies, s.Tickers)
}

// Caches returns the cleanable caches behind the configured providers.
func (s *Service) Caches() []cache.Cleaner {
	var out []cache.Cleaner
	if c, ok := s.Rates.(interface{ Cache() cache.Cleaner }); ok {
		out = append(out, c.Cache())
	}
	if c, ok := s.Prices.(interface{ Cache() cache.Cleaner }); ok {
		out = append(out, c.Cache())
	}
	return out
}
