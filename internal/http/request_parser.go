package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bankstat/internal/services"
)

const maxBodyBytes = 1 << 20

// errBadRequest marks malformed query strings and bodies.
var errBadRequest = errors.New("bad request")

// MonthParams holds year/month query values. Zero means "current".
type MonthParams struct {
	Year  int
	Month int
}

// parseMonthParams reads year and month. Absent values stay zero so the
// service picks the current period; present values must be integers.
func parseMonthParams(query url.Values) (MonthParams, error) {
	var p MonthParams
	var err error
	if p.Year, err = optionalInt(query, "year"); err != nil {
		return MonthParams{}, err
	}
	if p.Month, err = optionalInt(query, "month"); err != nil {
		return MonthParams{}, err
	}
	return p, nil
}

func optionalInt(query url.Values, key string) (int, error) {
	v := trimmed(query, key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", errBadRequest, key, v)
	}
	return n, nil
}

func trimmed(query url.Values, key string) string {
	return sanitizeInput(query.Get(key))
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// reportRequestBody is the JSON accepted by POST /api/reports.
type reportRequestBody struct {
	Report   string `json:"report"`
	Anchor   string `json:"anchor"`
	Window   string `json:"window"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Filename string `json:"filename"`
}

func (b reportRequestBody) params() services.Params {
	return services.Params{
		Anchor:   b.Anchor,
		Window:   b.Window,
		Date:     b.Date,
		Category: b.Category,
		Year:     b.Year,
		Month:    b.Month,
	}
}

func decodeReportRequest(w http.ResponseWriter, r *http.Request) (reportRequestBody, error) {
	var body reportRequestBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return body, fmt.Errorf("%w: empty body", errBadRequest)
		}
		return body, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	body.Report = sanitizeInput(body.Report)
	body.Anchor = sanitizeInput(body.Anchor)
	body.Window = sanitizeInput(body.Window)
	body.Date = sanitizeInput(body.Date)
	body.Category = sanitizeInput(body.Category)
	body.Filename = sanitizeInput(body.Filename)
	if body.Report == "" {
		return body, fmt.Errorf("%w: report is required", errBadRequest)
	}
	return body, nil
}
