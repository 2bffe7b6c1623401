package utils

import (
	"time"
)

// ISODateFormat is the canonical wire and storage form for calendar dates.
// The tracker has no time-of-day semantics; same-day ordering is carried by
// insertion order, not timestamps.
const ISODateFormat = "2006-01-02"

const slashDateFormat = "02/01/2006"

// NormalizeDate rewrites DD/MM/YYYY dates to YYYY-MM-DD. Dates already in ISO
// form pass through unchanged. No other format is recognised: anything else
// is returned as-is so the original value stays visible to the user instead
// of being silently mangled.
func NormalizeDate(raw string) string {
	if _, err := time.Parse(ISODateFormat, raw); err == nil {
		return raw
	}
	if t, err := time.Parse(slashDateFormat, raw); err == nil {
		return t.Format(ISODateFormat)
	}
	return raw
}

// ParseISODate parses a canonical date, returning the zero time on failure.
func ParseISODate(dateStr string) time.Time {
	t, err := time.Parse(ISODateFormat, dateStr)
	if err != nil {
		return time.Time{}
	}
	return t
}
