package market

import (
	"context"
	"strings"
	"time"

	"bankstat/internal/cache"

	"github.com/shopspring/decimal"
)

const cacheSize = 64

// CachedRates memoizes successful rate lookups for the cache TTL.
type CachedRates struct {
	next  RateProvider
	cache *cache.LRUCache[decimal.Decimal]
}

var _ RateProvider = (*CachedRates)(nil)

func NewCachedRates(next RateProvider, ttl time.Duration) *CachedRates {
	return &CachedRates{next: next, cache: cache.NewLRUCache[decimal.Decimal](cacheSize, ttl)}
}

func (c *CachedRates) Rate(ctx context.Context, base string) (decimal.Decimal, error) {
	key := strings.ToUpper(base)
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	v, err := c.next.Rate(ctx, base)
	if err != nil {
		return v, err
	}
	c.cache.Set(key, v)
	return v, nil
}

// Cache exposes the underlying cache for periodic cleanup.
func (c *CachedRates) Cache() cache.Cleaner { return c.cache }

// CachedPrices memoizes known quotes for the cache TTL. Unknown tickers and
// failures are not cached.
type CachedPrices struct {
	next  PriceProvider
	cache *cache.LRUCache[decimal.Decimal]
}

var _ PriceProvider = (*CachedPrices)(nil)

func NewCachedPrices(next PriceProvider, ttl time.Duration) *CachedPrices {
	return &CachedPrices{next: next, cache: cache.NewLRUCache[decimal.Decimal](cacheSize, ttl)}
}

func (c *CachedPrices) Price(ctx context.Context, ticker string) (decimal.NullDecimal, error) {
	key := strings.ToUpper(ticker)
	if v, ok := c.cache.Get(key); ok {
		return decimal.NewNullDecimal(v), nil
	}
	v, err := c.next.Price(ctx, ticker)
	if err != nil || !v.Valid {
		return v, err
	}
	c.cache.Set(key, v.Decimal)
	return v, nil
}

// Cache exposes the underlying cache for periodic cleanup.
func (c *CachedPrices) Cache() cache.Cleaner { return c.cache }
