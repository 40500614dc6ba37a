// Package date provides a calendar date value with optional time of day and
// a parser for the date spellings commonly found in spreadsheets.
package date

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofhir/phenomapper/pkg/issue"
)

// Date is a calendar date with an optional time of day. A zero Month or
// Day means the component is unspecified.
type Date struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// New creates a Date after range checking every component.
//
// February is checked with the year%4 leap rule only; century exceptions
// are not applied.
func New(year, month, day, hour, minute, second int) (Date, error) {
	checks := []struct {
		name     string
		v        int
		min, max int
	}{
		{"year", year, 0, 9999},
		{"month", month, 0, 12},
		{"day", day, 0, 31},
		{"hour", hour, 0, 23},
		{"minute", minute, 0, 59},
		{"second", second, 0, 59},
	}
	for _, c := range checks {
		if c.v < c.min || c.v > c.max {
			return Date{}, issue.Errorf(issue.CodeInvalidCalendarDate,
				"%s %d outside the valid range [%d-%d]", c.name, c.v, c.min, c.max)
		}
	}
	if limit := daysIn(month, year); day > limit {
		return Date{}, issue.Errorf(issue.CodeInvalidCalendarDate,
			"invalid day %d for month %d of year %d", day, month, year)
	}
	return Date{Year: year, Month: month, Day: day, Hour: hour, Minute: minute, Second: second}, nil
}

// MustNew is like New but panics on an invalid date.
func MustNew(year, month, day, hour, minute, second int) Date {
	d, err := New(year, month, day, hour, minute, second)
	if err != nil {
		panic(err)
	}
	return d
}

func daysIn(month, year int) int {
	switch month {
	case 2:
		if year%4 == 0 {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

// FromTime converts a time.Time, dropping sub-second precision and zone.
func FromTime(t time.Time) Date {
	return Date{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// FromISO8601 parses "YYYY-MM-DDTHH:MM:SS[.frac]Z". It reports false when
// s is not in that form or describes an impossible date.
func FromISO8601(s string) (Date, bool) {
	m := isoPattern.FindStringSubmatch(s)
	if m == nil {
		return Date{}, false
	}
	d, err := New(atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]), atoi(m[5]), atoi(m[6]))
	if err != nil {
		return Date{}, false
	}
	return d, true
}

// ISO8601String returns the date as "YYYY-MM-DDTHH:MM:SSZ".
func (d Date) ISO8601String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02dZ", d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
}

// String implements fmt.Stringer.
func (d Date) String() string {
	return d.ISO8601String()
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time converts the date to a UTC time.Time. Unspecified month and day
// become January and the first of the month.
func (d Date) Time() time.Time {
	month, day := d.Month, d.Day
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	return time.Date(d.Year, time.Month(month), day, d.Hour, d.Minute, d.Second, 0, time.UTC)
}

// FormatTokens lists the layouts accepted by Format, lowercased.
var FormatTokens = []string{
	"yyyy-mm-dd", "yyyy/mm/dd", "mm/dd/yyyy", "mm-dd-yyyy",
	"dd/mm/yyyy", "dd.mm.yyyy", "dd-mm-yyyy",
	"yyyy-mm", "yyyy/mm", "yyyy.mm", "mm.yyyy", "mm-yyyy", "mm/yyyy",
	"yyyy",
	"yyyy-mm-dd hh:mm:ss",
	"iso", "iso8601",
}

// Format renders the date using one of FormatTokens, case-insensitively.
func (d Date) Format(token string) (string, error) {
	y := fmt.Sprintf("%04d", d.Year)
	m := fmt.Sprintf("%02d", d.Month)
	dd := fmt.Sprintf("%02d", d.Day)

	switch strings.ToLower(strings.TrimSpace(token)) {
	case "yyyy-mm-dd":
		return y + "-" + m + "-" + dd, nil
	case "yyyy/mm/dd":
		return y + "/" + m + "/" + dd, nil
	case "mm/dd/yyyy":
		return m + "/" + dd + "/" + y, nil
	case "mm-dd-yyyy":
		return m + "-" + dd + "-" + y, nil
	case "dd/mm/yyyy":
		return dd + "/" + m + "/" + y, nil
	case "dd.mm.yyyy":
		return dd + "." + m + "." + y, nil
	case "dd-mm-yyyy":
		return dd + "-" + m + "-" + y, nil
	case "yyyy-mm":
		return y + "-" + m, nil
	case "yyyy/mm":
		return y + "/" + m, nil
	case "yyyy.mm":
		return y + "." + m, nil
	case "mm.yyyy":
		return m + "." + y, nil
	case "mm-yyyy":
		return m + "-" + y, nil
	case "mm/yyyy":
		return m + "/" + y, nil
	case "yyyy":
		return y, nil
	case "yyyy-mm-dd hh:mm:ss":
		return fmt.Sprintf("%s-%s-%s %02d:%02d:%02d", y, m, dd, d.Hour, d.Minute, d.Second), nil
	case "iso", "iso8601":
		return d.ISO8601String(), nil
	default:
		return "", fmt.Errorf("unsupported date format %q", token)
	}
}
