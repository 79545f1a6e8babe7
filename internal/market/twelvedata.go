package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const twelveDataBaseURL = "https://api.twelvedata.com"

// TwelveData fetches stock quotes from the Twelve Data price endpoint.
type TwelveData struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ PriceProvider = (*TwelveData)(nil)

// TwelveDataConfig configures the quote client.
type TwelveDataConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewTwelveData(cfg TwelveDataConfig) *TwelveData {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = twelveDataBaseURL
	}
	return &TwelveData{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

type priceResponse struct {
	Price   decimal.NullDecimal `json:"price"`
	Status  string              `json:"status"`
	Message string              `json:"message"`
}

// Price returns the latest quote for ticker. Error payloads without a price,
// such as an unknown symbol, yield an invalid NullDecimal and no error.
func (c *TwelveData) Price(ctx context.Context, ticker string) (decimal.NullDecimal, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("apikey", c.apiKey)
	endpoint := c.baseURL + "/price?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: create request: %v", ErrPriceUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, ticker, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: read response: %v", ErrPriceUnavailable, err)
	}
	if resp.StatusCode >= 500 {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %s: status %d", ErrPriceUnavailable, ticker, resp.StatusCode)
	}

	var out priceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: decode response: %v", ErrPriceUnavailable, err)
	}
	return out.Price, nil
}
