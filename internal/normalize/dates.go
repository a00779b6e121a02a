package normalize

import (
	"strings"
	"time"
)

// Date layouts seen across connected sources. FHIR allows partial dates,
// and a few legacy sources emit US-style slashed dates.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
	"01/02/2006",
	"1/2/2006",
}

// ParseDate attempts to parse a date string in multiple common formats.
// Returns nil if the input is empty or unparseable.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// SameCalendarDay reports whether two parseable dates fall on the same UTC
// calendar day. Unparseable input never matches.
func SameCalendarDay(a, b string) bool {
	ta, tb := ParseDate(a), ParseDate(b)
	if ta == nil || tb == nil {
		return false
	}
	ya, ma, da := ta.UTC().Date()
	yb, mb, db := tb.UTC().Date()
	return ya == yb && ma == mb && da == db
}

// WithinDays reports whether two parseable dates are at most n days apart.
// Unparseable input never matches.
func WithinDays(a, b string, n int) bool {
	ta, tb := ParseDate(a), ParseDate(b)
	if ta == nil || tb == nil {
		return false
	}
	d := ta.Sub(*tb)
	if d < 0 {
		d = -d
	}
	return d <= time.Duration(n)*24*time.Hour
}
