package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vsinha/stocklink/pkg/domain/entities"
)

// numericDate matches dates such as 3/4/2024, 03-04-24 or 3.4.2024 14:30,
// where the order of the first two fields is ambiguous.
var numericDate = regexp.MustCompile(`^(\d{1,2})[/.-](\d{1,2})[/.-](\d{2}|\d{4})(?:[ T](\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)

// Unambiguous layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/01/02",
	"2006/01/02 15:04:05",
	"20060102",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"Mon, 02 Jan 2006",
}

// ParseDate reads a movement date. Ambiguous numeric dates are read month
// first unless dayFirst is set; when the preferred order cannot be a valid
// date the other order is tried. Anything unreadable yields the absent date.
func ParseDate(s string, dayFirst bool) entities.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return entities.NoDate
	}

	if m := numericDate.FindStringSubmatch(s); m != nil {
		return parseNumericDate(m, dayFirst)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return entities.NewDate(t)
		}
	}
	return entities.NoDate
}

func parseNumericDate(m []string, dayFirst bool) entities.Date {
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year = expandYear(year)
	}

	var hour, minute, sec int
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		if m[6] != "" {
			sec, _ = strconv.Atoi(m[6])
		}
		if hour > 23 || minute > 59 || sec > 59 {
			return entities.NoDate
		}
	}

	month, day := first, second
	if dayFirst {
		month, day = second, first
	}
	if t, ok := buildDate(year, month, day, hour, minute, sec); ok {
		return entities.NewDate(t)
	}
	if t, ok := buildDate(year, day, month, hour, minute, sec); ok {
		return entities.NewDate(t)
	}
	return entities.NoDate
}

// buildDate rejects values that time.Date would silently normalize, such as
// February 30th.
func buildDate(year, month, day, hour, minute, sec int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC)
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// expandYear maps two digit years onto 1969-2068, the same pivot time.Parse uses for "06".
func expandYear(yy int) int {
	if yy >= 69 {
		return 1900 + yy
	}
	return 2000 + yy
}
