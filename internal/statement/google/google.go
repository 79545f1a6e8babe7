package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"bankstat/internal/core"
	"bankstat/internal/statement"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	defaultSheetName = "Операции"
	defaultRange     = "A:O"
)

// Client reads a bank statement that was uploaded to a Google spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	cols          statement.Columns

	// Values are cached between loads to stay under the Sheets read quota.
	mu                 sync.Mutex
	cached             [][]interface{}
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
}

var _ statement.Loader = (*Client)(nil)

// New wraps an existing Sheets service.
func New(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	if strings.TrimSpace(sheetName) == "" {
		sheetName = defaultSheetName
	}
	return &Client{
		svc:                svc,
		spreadsheetID:      spreadsheetID,
		sheetName:          sheetName,
		cols:               statement.DefaultColumns,
		cacheValidDuration: time.Minute,
	}
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_SHEET_NAME (default "Операции"), GOOGLE_SHEET_CACHE_TTL.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	return Open(ctx, os.Getenv("GOOGLE_SPREADSHEET_ID"), os.Getenv("GOOGLE_SHEET_NAME"))
}

// Open creates a Sheets client for the given spreadsheet, authenticating with
// the service account found in the environment.
func Open(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	c := New(svc, spreadsheetID, sheetName)
	if v := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_CACHE_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.cacheValidDuration = d
		}
	}
	return c, nil
}

// newSheetsService initializes a read-only Sheets service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// newHTTPClientWithPooling creates an HTTP client tuned for the Sheets API.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// Load reads the operations sheet and maps it to transactions.
func (c *Client) Load(ctx context.Context) ([]core.Transaction, error) {
	values, err := c.values(ctx)
	if err != nil {
		return nil, err
	}
	txs, stats, err := statement.ParseValues(values, c.cols)
	if err != nil {
		return nil, err
	}
	level := slog.LevelDebug
	if stats.Invalid > 0 {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, "Statement sheet loaded",
		"sheet", c.sheetName,
		"rows", stats.Rows,
		"loaded", stats.Loaded,
		"no_status", stats.NoStatus,
		"invalid", stats.Invalid)
	return txs, nil
}

func (c *Client) values(ctx context.Context) ([][]interface{}, error) {
	c.mu.Lock()
	if c.cached != nil && time.Now().Before(c.cacheExpiresAt) {
		v := c.cached
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	if c.svc == nil {
		return nil, fmt.Errorf("%w: sheets service not initialized", statement.ErrSourceUnavailable)
	}
	rng := fmt.Sprintf("%s!%s", c.sheetName, defaultRange)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", statement.ErrSourceUnavailable, rng, err)
	}

	c.mu.Lock()
	c.cached = resp.Values
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()
	return resp.Values, nil
}

// InvalidateCache forces the next Load to hit the API.
func (c *Client) InvalidateCache() {
	c.mu.Lock()
	c.cached = nil
	c.cacheExpiresAt = time.Time{}
	c.mu.Unlock()
}
