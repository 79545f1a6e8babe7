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

const (
	apiLayerBaseURL = "https://api.apilayer.com"
	quoteCurrency   = "RUB"
	maxBodyBytes    = 1 << 20
)

// APILayer fetches exchange rates from the apilayer exchangerates_data API.
type APILayer struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ RateProvider = (*APILayer)(nil)

// APILayerConfig configures the exchange rate client.
type APILayerConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewAPILayer(cfg APILayerConfig) *APILayer {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = apiLayerBaseURL
	}
	return &APILayer{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

type latestRatesResponse struct {
	Success *bool                      `json:"success"`
	Rates   map[string]decimal.Decimal `json:"rates"`
}

// Rate returns the RUB price of one unit of base.
func (c *APILayer) Rate(ctx context.Context, base string) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("symbols", quoteCurrency)
	q.Set("base", strings.ToUpper(base))
	endpoint := c.baseURL + "/exchangerates_data/latest?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: create request: %v", ErrRateUnavailable, err)
	}
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s: %v", ErrRateUnavailable, base, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: read response: %v", ErrRateUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Decimal{}, fmt.Errorf("%w: %s: status %d", ErrRateUnavailable, base, resp.StatusCode)
	}

	var out latestRatesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: decode response: %v", ErrRateUnavailable, err)
	}
	if out.Success != nil && !*out.Success {
		return decimal.Decimal{}, fmt.Errorf("%w: %s: provider reported failure", ErrRateUnavailable, base)
	}
	rate, ok := out.Rates[quoteCurrency]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s: no %s rate in response", ErrRateUnavailable, base, quoteCurrency)
	}
	return rate, nil
}
