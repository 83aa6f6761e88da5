package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/mauv0809/stockcache/internal/models"
	"github.com/shopspring/decimal"
)

// ParseFloat parses a numeric string as providers send it. Blank values and the
// placeholders "None", "-" and "N/A" yield nil.
func ParseFloat(s string) *float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	switch s {
	case "", "None", "none", "-", "N/A", "null":
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	v := d.InexactFloat64()
	return &v
}

// FloatValue converts a decoded JSON value to a float pointer.
func FloatValue(v any) *float64 {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		return &x
	case int64:
		f := float64(x)
		return &f
	case int:
		f := float64(x)
		return &f
	case string:
		return ParseFloat(x)
	}
	return ParseFloat(fmt.Sprintf("%v", v))
}

// Round2 rounds v to two decimal places.
func Round2(v float64) *float64 {
	r := decimal.NewFromFloat(v).Round(2).InexactFloat64()
	return &r
}

// Round2Ptr rounds v to two decimal places, passing nil through.
func Round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Round2(*v)
}

// Scale multiplies v by factor, passing nil through.
func Scale(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	return Round2(*v * factor)
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
}

// ParseDate parses a provider date string into a UTC calendar date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// QuarterOf derives a calendar-quarter period marker from a date's month.
// Unparsable dates yield models.PeriodUnknown.
func QuarterOf(date string) string {
	t, ok := ParseDate(date)
	if !ok {
		return models.PeriodUnknown
	}
	switch m := t.Month(); {
	case m <= 3:
		return models.PeriodQ1
	case m <= 6:
		return models.PeriodQ2
	case m <= 9:
		return models.PeriodQ3
	default:
		return models.PeriodQ4
	}
}
