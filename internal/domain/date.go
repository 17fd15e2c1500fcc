package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// dateLayouts are the collection/submission date shapes seen in GenBank
// records, most common first. They are tried before the general parser so
// partial and day-first dates resolve predictably. Missing month and day
// default to January 1.
var dateLayouts = []string{
	"2006-1-2",
	"2006-1",
	"2006",
	time.RFC3339,
	"2-Jan-2006",
	"Jan-2006",
	"2 January 2006",
	"January 2006",
	"January 2 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006/1/2",
	"2006/1",
	"2006.1.2",
	"20060102",
	"1/2/2006",
	"2/1/2006",
	"1/2006",
}

// ParseDate parses a loosely formatted date. Dates given only to the year or
// month resolve to the first day of that period. Zone-less timestamps are
// read as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrUnparsableDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrUnparsableDate, s, err)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
