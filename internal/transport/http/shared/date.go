package shared

import (
	"errors"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var errEmptyDate = errors.New("empty date")

// ParseDate reads a calendar date. RFC3339 timestamps are accepted and keep
// the date in their own offset; the result is always midnight UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errEmptyDate
	}
	if parsed, err := time.Parse(dateLayout, value); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := parsed.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
