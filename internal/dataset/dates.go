package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/nytsentiment/internal/models"
)

const (
	DAY_LAYOUT         = "2006-01-02"
	COMPACT_DAY_LAYOUT = "20060102"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DAY_LAYOUT,
	"2006/01/02",
	"01/02/2006",
	"01/02/2006 15:04:05",
	COMPACT_DAY_LAYOUT,
}

// DateParseError marks a cell that could not be turned into a calendar date.
type DateParseError struct {
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("unparseable date %q", e.Value)
}

// ParseDate accepts the layouts above and Unix epoch seconds. Eight digit
// integers are compact days, never epoch seconds. Results are in UTC.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, &DateParseError{Value: raw}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	if len(s) == len(COMPACT_DAY_LAYOUT) && isDigits(s) {
		return time.Time{}, &DateParseError{Value: raw}
	}

	if secs, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(secs) && !math.IsInf(secs, 0) {
		whole, frac := math.Modf(secs)
		return time.Unix(int64(whole), int64(frac*1e9)).UTC(), nil
	}

	return time.Time{}, &DateParseError{Value: raw}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Day truncates a parsed cell to its calendar day key.
func Day(v models.Value) (string, error) {
	if !v.Valid {
		return "", &DateParseError{}
	}
	t, err := ParseDate(v.Str)
	if err != nil {
		return "", err
	}
	return t.Format(DAY_LAYOUT), nil
}

// DeriveDates writes the calendar day of source into target for every record.
// Unparseable or missing cells leave target missing. It returns the number of
// records whose date could not be derived.
func DeriveDates(ds *models.Dataset, source, target string) int {
	ds.AddColumn(target)

	failed := 0
	for _, rec := range ds.Records {
		day, err := Day(rec.Get(source))
		if err != nil {
			rec.Set(target, models.MissingValue())
			failed++
			continue
		}
		rec.Set(target, models.StringValue(day))
	}
	return failed
}
