package forecast

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Period is the forecast bucket size.
type Period string

const (
	Monthly   Period = "monthly"
	Quarterly Period = "quarterly"
	Yearly    Period = "yearly"
)

// Periods lists the valid periods in display order.
var Periods = []Period{Monthly, Quarterly, Yearly}

// ErrInvalidPeriod is returned by ParsePeriod for unknown names.
var ErrInvalidPeriod = errors.New("invalid time period")

// ParsePeriod accepts "monthly", "quarterly" or "yearly", case-insensitively.
// An empty string means monthly.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Monthly, nil
	case Monthly, Quarterly, Yearly:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
}

// Label buckets t: "2024-03", "2024-Q1" or "2024".
// Labels of one period sort chronologically as strings.
func (p Period) Label(t time.Time) string {
	switch p {
	case Quarterly:
		return fmt.Sprintf("%04d-Q%d", t.Year(), (int(t.Month())+2)/3)
	case Yearly:
		return fmt.Sprintf("%04d", t.Year())
	default:
		return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
	}
}

// Next cycles monthly → quarterly → yearly → monthly.
func (p Period) Next() Period {
	for i, q := range Periods {
		if q == p {
			return Periods[(i+1)%len(Periods)]
		}
	}
	return Monthly
}

// dateLayouts are the formats schedule dates appear in.
var dateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// ParseDate parses a schedule date. Empty and "N/A" values are not dates.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
