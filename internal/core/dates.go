package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrDateParse = errors.New("invalid date")

// DateParseError is returned when a user-supplied date cannot be parsed.
type DateParseError struct {
	Value    string
	Expected string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid date %q: use format %s", e.Value, e.Expected)
}

func (e *DateParseError) Unwrap() error { return ErrDateParse }

// ParseAnchor parses a report anchor in "YYYY-MM-DD HH:MM:SS" form. A bare
// "YYYY-MM-DD" is accepted and anchors at midnight.
func ParseAnchor(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{AnchorLayout, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &DateParseError{Value: s, Expected: "yyyy-mm-dd hh:mm:ss"}
}

// ParseReportDate parses a dd.mm.yyyy date. ISO yyyy-mm-dd is accepted as well.
// The result is the end of that day so that all of its operations are included.
func ParseReportDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"02.01.2006", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.Add(24*time.Hour - time.Second), nil
		}
	}
	return time.Time{}, &DateParseError{Value: s, Expected: "dd.mm.yyyy"}
}
