package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

var (
	// "July 13-19, 2025"
	sameMonthRangeExpr = regexp.MustCompile(`(?i)([A-Za-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?\s*[-–—]\s*(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})`)
	// "June 29 - July 3, 2025"
	crossMonthRangeExpr = regexp.MustCompile(`(?i)([A-Za-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?\s*[-–—]\s*([A-Za-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})`)
	// "July 2025"
	monthYearExpr = regexp.MustCompile(`(?i)^([A-Za-z]+)\s+(\d{4})$`)
)

var singleDateFormats = []string{
	"2006-01-02",
	"January 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"02/01/2006",
}

// ParseDateRange extracts a start/end date pair from a free-form date
// string. A single date yields start == end; a bare "Month YYYY" spans
// the whole month. ok is false when nothing date-like could be parsed —
// callers keep the raw string in that case rather than dropping the
// record.
func ParseDateRange(s string) (start, end time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, time.Time{}, false
	}

	if m := crossMonthRangeExpr.FindStringSubmatch(s); m != nil {
		m1, ok1 := monthNames[strings.ToLower(m[1])]
		m2, ok2 := monthNames[strings.ToLower(m[3])]
		if ok1 && ok2 {
			d1, _ := strconv.Atoi(m[2])
			d2, _ := strconv.Atoi(m[4])
			year, _ := strconv.Atoi(m[5])
			return date(year, m1, d1), date(year, m2, d2), true
		}
	}

	if m := sameMonthRangeExpr.FindStringSubmatch(s); m != nil {
		if month, found := monthNames[strings.ToLower(m[1])]; found {
			d1, _ := strconv.Atoi(m[2])
			d2, _ := strconv.Atoi(m[3])
			year, _ := strconv.Atoi(m[4])
			return date(year, month, d1), date(year, month, d2), true
		}
	}

	if m := monthYearExpr.FindStringSubmatch(s); m != nil {
		if month, found := monthNames[strings.ToLower(m[1])]; found {
			year, _ := strconv.Atoi(m[2])
			first := date(year, month, 1)
			return first, first.AddDate(0, 1, -1), true
		}
	}

	if d, found := parseDate(s); found {
		return d, d, true
	}

	return time.Time{}, time.Time{}, false
}

// parseDate tries the known single-date formats, then falls back to
// fuzzy parsing the way the sources write dates in prose.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range singleDateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			return d.UTC(), true
		}
	}
	if d, err := dateparse.ParseAny(s); err == nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
