// Package timeutil holds the civil-time rules of the shop: every business
// timestamp is interpreted in a fixed UTC+05:30 zone.
package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Zone is the fixed civil zone used for stamping and day/month bucketing.
var Zone = time.FixedZone("IST", 5*60*60+30*60)

const (
	DateLayout     = "2006-01-02"
	sequenceLayout = "20060102150405"
)

var ErrEmptyTimestamp = errors.New("empty timestamp")

var offsetLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	DateLayout,
}

// Now returns the current civil time.
func Now() time.Time {
	return time.Now().In(Zone)
}

// In converts t to civil time. The zero time is returned unchanged.
func In(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(Zone)
}

// ParseTimestamp parses an ISO-8601 timestamp supplied by a client.
//
// Values without an offset are civil time. A trailing literal "Z" is read as
// +05:30, not UTC: the point-of-sale clients send local wall-clock time with
// a Z suffix and stored documents depend on that reading.
func ParseTimestamp(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, ErrEmptyTimestamp
	}
	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		s = s[:len(s)-1] + "+05:30"
	}

	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(Zone), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, Zone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

// ParseRangeDate parses a report boundary. A date-only value expands to the
// first instant of that civil day, or to its last instant when endOfDay is set.
func ParseRangeDate(value string, endOfDay bool) (time.Time, error) {
	s := strings.TrimSpace(value)
	if d, err := time.ParseInLocation(DateLayout, s, Zone); err == nil {
		if endOfDay {
			_, end := DayBounds(d)
			return end, nil
		}
		return d, nil
	}
	return ParseTimestamp(s)
}

// DayBounds returns the first and last instant of the civil day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	c := t.In(Zone)
	start := time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, Zone)
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// MonthBounds returns the first instant of the civil month and the first
// instant of the following month.
func MonthBounds(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, Zone)
	next := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, Zone)
	return start, next, nil
}

// DateKey formats t as a civil YYYY-MM-DD key.
func DateKey(t time.Time) string {
	return t.In(Zone).Format(DateLayout)
}

// SequenceStamp is the timestamp-shaped value used when a sequence number
// cannot be allocated.
func SequenceStamp(t time.Time) string {
	return t.In(Zone).Format(sequenceLayout)
}
