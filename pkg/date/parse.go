package date

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gofhir/phenomapper/pkg/compliance"
	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/pkg/logger"
)

// Order decides which of two ambiguous units is the day.
type Order int

const (
	// DayFirst reads 01/02/2024 as the first of February.
	DayFirst Order = iota
	// MonthFirst reads 01/02/2024 as the second of January.
	MonthFirst
)

// String returns "day" or "month".
func (o Order) String() string {
	if o == MonthFirst {
		return "month"
	}
	return "day"
}

// ParseOrder parses "day" or "month".
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "":
		return DayFirst, nil
	case "month":
		return MonthFirst, nil
	default:
		return DayFirst, fmt.Errorf("invalid date order %q: want day or month", s)
	}
}

var (
	yearPattern     = regexp.MustCompile(`^\d{4}$`)
	isoPattern      = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})T(\d{2}):(\d{2}):(\d{2})(?:\.\d{1,9})?Z$`)
	explicitPattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?: (\d{1,2}):(\d{1,2}):(\d{1,2}))?$`)

	// dd/mm/yyyy, dd.mm.yyyy and dd-mm-yyyy, each with a single separator
	dayFirstPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`),
		regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`),
		regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`),
	}

	unitPattern = regexp.MustCompile(`^\d{1,4}$`)
)

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Parse converts s into a Date.
//
// The boolean result is false, with a nil error, only when s has no date
// separators and level is lenient; the caller should then keep the raw
// string. Impossible calendar dates are rejected at every level. A day and
// month that cannot be told apart are resolved by first, with a warning
// under lenient compliance and an ambiguous-date error under strict.
func Parse(s string, first Order, level compliance.Level) (Date, bool, error) {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return Date{}, false, issue.Errorf(issue.CodeMalformedDate, "invalid date string %q: too short", s)
	}

	if yearPattern.MatchString(s) {
		d, err := New(atoi(s), 0, 0, 0, 0, 0)
		return d, err == nil, err
	}

	if m := isoPattern.FindStringSubmatch(s); m != nil {
		d, err := New(atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]), atoi(m[5]), atoi(m[6]))
		return d, err == nil, err
	}

	if m := explicitPattern.FindStringSubmatch(s); m != nil {
		d, err := New(atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]), atoi(m[5]), atoi(m[6]))
		return d, err == nil, err
	}

	if first == DayFirst {
		for _, p := range dayFirstPatterns {
			m := p.FindStringSubmatch(s)
			if m == nil || atoi(m[2]) > 12 {
				continue
			}
			d, err := New(atoi(m[3]), atoi(m[2]), atoi(m[1]), 0, 0, 0)
			return d, err == nil, err
		}
	}

	if !strings.ContainsAny(s, "-/.") {
		if level.IsStrict() {
			return Date{}, false, issue.Errorf(issue.CodeMalformedDate, "invalid date string %q: no separators found", s)
		}
		return Date{}, false, nil
	}

	d, err := decompose(s, first, level)
	return d, err == nil, err
}

// decompose splits a date on its separators and assigns the units.
func decompose(s string, first Order, level compliance.Level) (Date, error) {
	normalized := strings.NewReplacer("/", "-", ".", "-").Replace(s)
	units := strings.Split(normalized, "-")
	for _, u := range units {
		if !unitPattern.MatchString(u) {
			return Date{}, issue.Errorf(issue.CodeMalformedDate, "invalid date string %q: unit %q is not a number", s, u)
		}
	}

	switch len(units) {
	case 2:
		switch {
		case len(units[0]) == 4:
			return New(atoi(units[0]), atoi(units[1]), 0, 0, 0, 0)
		case len(units[1]) == 4:
			return New(atoi(units[1]), atoi(units[0]), 0, 0, 0, 0)
		}
	case 3:
		switch {
		case len(units[0]) == 4:
			return New(atoi(units[0]), atoi(units[1]), atoi(units[2]), 0, 0, 0)
		case len(units[2]) == 4:
			day, month, err := resolveDayMonth(s, atoi(units[0]), atoi(units[1]), first, level)
			if err != nil {
				return Date{}, err
			}
			return New(atoi(units[2]), month, day, 0, 0, 0)
		}
	}
	return Date{}, issue.Errorf(issue.CodeMalformedDate, "invalid date string %q: cannot identify the year", s)
}

// resolveDayMonth decides which of a and b, in reading order, is the day.
func resolveDayMonth(s string, a, b int, first Order, level compliance.Level) (day, month int, err error) {
	switch {
	case a > 12 && b > 12:
		return a, b, nil // New rejects the month
	case a > 12:
		return a, b, nil
	case b > 12:
		return b, a, nil
	case a == b:
		return a, b, nil
	}

	if level.IsStrict() {
		return 0, 0, issue.Errorf(issue.CodeAmbiguousDate,
			"ambiguous date %q: day and month cannot be told apart", s)
	}
	logger.Issue(issue.Issue{
		Severity:    issue.SeverityWarning,
		Code:        issue.CodeAmbiguousDate,
		Diagnostics: fmt.Sprintf("ambiguous date %q: assuming %s first", s, first),
		Row:         -1,
	})
	if first == MonthFirst {
		return b, a, nil
	}
	return a, b, nil
}
