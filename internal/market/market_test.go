package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestAPILayerRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exchangerates_data/latest" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("apikey") != "secret" {
			http.Error(w, `{"message":"Invalid authentication credentials"}`, http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("symbols") != "RUB" {
			t.Errorf("unexpected symbols %q", r.URL.Query().Get("symbols"))
		}
		switch r.URL.Query().Get("base") {
		case "USD":
			fmt.Fprint(w, `{"success":true,"base":"USD","rates":{"RUB":73.21}}`)
		case "EUR":
			fmt.Fprint(w, `{"success":true,"base":"EUR","rates":{}}`)
		default:
			fmt.Fprint(w, `{"success":false,"error":{"code":201}}`)
		}
	}))
	defer srv.Close()

	c := NewAPILayer(APILayerConfig{APIKey: "secret", BaseURL: srv.URL, HTTPClient: srv.Client()})

	got, err := c.Rate(context.Background(), "usd")
	if err != nil {
		t.Fatalf("Rate(USD): %v", err)
	}
	if !got.Equal(decimal.RequireFromString("73.21")) {
		t.Fatalf("Rate(USD) = %s", got)
	}

	for _, base := range []string{"EUR", "XXX"} {
		if _, err := c.Rate(context.Background(), base); !errors.Is(err, ErrRateUnavailable) {
			t.Errorf("Rate(%s): expected ErrRateUnavailable, got %v", base, err)
		}
	}

	bad := NewAPILayer(APILayerConfig{APIKey: "wrong", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if _, err := bad.Rate(context.Background(), "USD"); !errors.Is(err, ErrRateUnavailable) {
		t.Errorf("unauthorized: expected ErrRateUnavailable, got %v", err)
	}
}

func TestTwelveDataPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/price" || r.URL.Query().Get("apikey") != "k" {
			t.Errorf("unexpected request %s", r.URL)
		}
		switch r.URL.Query().Get("symbol") {
		case "AAPL":
			fmt.Fprint(w, `{"price":"150.12000"}`)
		case "FAIL":
			w.WriteHeader(http.StatusBadGateway)
		case "JUNK":
			fmt.Fprint(w, `<html>`)
		default:
			fmt.Fprint(w, `{"code":400,"message":"symbol not found","status":"error"}`)
		}
	}))
	defer srv.Close()

	c := NewTwelveData(TwelveDataConfig{APIKey: "k", BaseURL: srv.URL + "/", HTTPClient: srv.Client()})

	p, err := c.Price(context.Background(), "AAPL")
	if err != nil || !p.Valid || !p.Decimal.Equal(decimal.RequireFromString("150.12")) {
		t.Fatalf("Price(AAPL) = %v, %v", p, err)
	}

	p, err = c.Price(context.Background(), "NOPE")
	if err != nil || p.Valid {
		t.Fatalf("unknown ticker should be absent without error, got %v, %v", p, err)
	}

	for _, ticker := range []string{"FAIL", "JUNK"} {
		if _, err := c.Price(context.Background(), ticker); !errors.Is(err, ErrPriceUnavailable) {
			t.Errorf("Price(%s): expected ErrPriceUnavailable, got %v", ticker, err)
		}
	}
}

type countingRates struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (c *countingRates) Rate(_ context.Context, base string) (decimal.Decimal, error) {
	c.calls.Add(1)
	if c.fail[base] {
		return decimal.Decimal{}, ErrRateUnavailable
	}
	return decimal.NewFromInt(int64(len(base))), nil
}

type countingPrices struct {
	calls atomic.Int32
}

func (c *countingPrices) Price(_ context.Context, ticker string) (decimal.NullDecimal, error) {
	c.calls.Add(1)
	switch ticker {
	case "BAD":
		return decimal.NullDecimal{}, ErrPriceUnavailable
	case "NONE":
		return decimal.NullDecimal{}, nil
	}
	return decimal.NewNullDecimal(decimal.NewFromInt(100)), nil
}

func TestCachedProviders(t *testing.T) {
	ctx := context.Background()
	rates := &countingRates{fail: map[string]bool{"EUR": true}}
	cr := NewCachedRates(rates, time.Minute)
	for i := 0; i < 3; i++ {
		if _, err := cr.Rate(ctx, "USD"); err != nil {
			t.Fatal(err)
		}
		if _, err := cr.Rate(ctx, "EUR"); err == nil {
			t.Fatal("expected EUR failure")
		}
	}
	if got := rates.calls.Load(); got != 4 {
		t.Fatalf("expected 1 USD call and 3 uncached EUR calls, got %d", got)
	}

	prices := &countingPrices{}
	cp := NewCachedPrices(prices, time.Minute)
	for i := 0; i < 2; i++ {
		_, _ = cp.Price(ctx, "AAPL")
		_, _ = cp.Price(ctx, "NONE")
	}
	if got := prices.calls.Load(); got != 3 {
		t.Fatalf("expected AAPL cached and NONE uncached, got %d calls", got)
	}
}

func TestEnrich(t *testing.T) {
	rates := &countingRates{fail: map[string]bool{"EUR": true}}
	snap := Enrich(context.Background(), rates, &countingPrices{}, []string{"USD", "EUR"}, []string{"AAPL", "BAD", "NONE"})

	if len(snap.Rates) != 2 || snap.Rates[0].Currency != "USD" || snap.Rates[1].Currency != "EUR" {
		t.Fatalf("rates order not kept: %+v", snap.Rates)
	}
	if !snap.Rates[0].Rate.Valid || snap.Rates[1].Rate.Valid {
		t.Fatalf("expected USD set and EUR null: %+v", snap.Rates)
	}
	if !snap.Prices[0].Price.Valid || snap.Prices[1].Price.Valid || snap.Prices[2].Price.Valid {
		t.Fatalf("unexpected prices %+v", snap.Prices)
	}
}

func TestEnrichWithoutProviders(t *testing.T) {
	snap := Enrich(context.Background(), nil, nil, Currencies, Tickers)
	if len(snap.Rates) != len(Currencies) || len(snap.Prices) != len(Tickers) {
		t.Fatalf("entries should exist for every requested key")
	}
	for _, r := range snap.Rates {
		if r.Rate.Valid {
			t.Fatalf("rate %s should be null", r.Currency)
		}
	}
}

func TestServiceSnapshot(t *testing.T) {
	s := NewService("", "", time.Second, time.Minute)
	if s.Rates != nil || s.Prices != nil {
		t.Fatalf("empty keys should disable providers")
	}
	if len(s.Caches()) != 0 {
		t.Fatalf("no caches expected without providers")
	}

	s = NewService("a", "b", time.Second, time.Minute)
	if len(s.Caches()) != 2 {
		t.Fatalf("expected two caches, got %d", len(s.Caches()))
	}

	s.Rates = &countingRates{}
	s.Prices = &countingPrices{}
	snap := s.Snapshot(context.Background())
	if len(snap.Prices) != 5 || !snap.Prices[4].Price.Valid {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}
