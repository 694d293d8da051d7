package entities

import "time"

const (
	// TimestampLayout is how timestamps are bound as query parameters.
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp accepts either a full timestamp or a bare date, read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(DateLayout, s)
}

// StartOfDay truncates t to midnight of its calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
