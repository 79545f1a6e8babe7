package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	WindowWeek  Window = "W"
	WindowMonth Window = "M"
	WindowYear  Window = "Y"
	WindowAll   Window = "ALL"
)

// AnchorLayout is the format of report anchor dates.
const AnchorLayout = "2006-01-02 15:04:05"

// Window selects a rolling date range ending at an anchor date.
type Window string

var (
	ErrInvalidWindowCode = errors.New("invalid window code")

	// epoch is the start of the all-time window.
	epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// WindowError reports an unrecognized window token.
type WindowError struct {
	Code string
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("invalid window code %q: must be one of W, M, Y, ALL", e.Code)
}

func (e *WindowError) Unwrap() error { return ErrInvalidWindowCode }

// ParseWindow accepts the short codes (W, M, Y, ALL) and their long names,
// case-insensitively. An empty string selects the month window.
func ParseWindow(s string) (Window, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "W", "WEEK":
		return WindowWeek, nil
	case "", "M", "MONTH":
		return WindowMonth, nil
	case "Y", "YEAR":
		return WindowYear, nil
	case "ALL":
		return WindowAll, nil
	}
	return "", &WindowError{Code: s}
}

// ResolveWindow computes the closed interval [start, end] for w anchored at anchor.
func ResolveWindow(anchor time.Time, w Window) (start, end time.Time, err error) {
	switch w {
	case WindowWeek:
		start = anchor.AddDate(0, 0, -7)
	case WindowMonth:
		start = time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	case WindowYear:
		start = addYearsClamped(anchor, -1)
	case WindowAll:
		start = time.Date(epoch.Year(), epoch.Month(), epoch.Day(), 0, 0, 0, 0, anchor.Location())
	default:
		return time.Time{}, time.Time{}, &WindowError{Code: string(w)}
	}
	return start, anchor, nil
}

// FilterByWindow returns the records whose timestamp lies in [start, end].
// Records without a valid timestamp never match.
func FilterByWindow(txs []Transaction, start, end time.Time) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if !t.OperatedAt.Valid() {
			continue
		}
		ts := t.OperatedAt.Time
		if ts.Before(start) || ts.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// addYearsClamped shifts t by years, mapping Feb 29 onto Feb 28 when the target
// year has no leap day instead of rolling over into March.
func addYearsClamped(t time.Time, years int) time.Time {
	y := t.Year() + years
	d := t.Day()
	if last := daysIn(y, t.Month()); d > last {
		d = last
	}
	return time.Date(y, t.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// addMonthsClamped shifts t by months, clamping the day to the target month's length.
func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	d := t.Day()
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
