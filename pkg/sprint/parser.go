// Package sprint parses free-text sprint labels into date ranges.
//
// Board iteration fields carry labels like "Sprint 68 oct 13 - oct 26"
// with no structured dates; this package recovers the {start, end} pair
// by trying a fixed sequence of textual grammars.
package sprint

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateRange is a parsed sprint time-box.
type DateRange struct {
	Start time.Time
	End   time.Time
	// Approximate marks a range built from an unrecognized month name,
	// which falls back to January instead of failing. Callers should
	// surface this rather than trust the dates blindly.
	Approximate bool
}

// The three grammars, tried in order; first match wins.
var (
	monthNamePattern = regexp.MustCompile(`(?i)([a-z]+)\s+(\d{1,2})\s*-\s*([a-z]+)\s+(\d{1,2})`)
	numericPattern   = regexp.MustCompile(`(\d{1,2})/(\d{1,2})\s*-\s*(\d{1,2})/(\d{1,2})`)
	isoPairPattern   = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s+to\s+(\d{4}-\d{2}-\d{2})`)
)

// months maps three-letter and full-name forms to calendar months.
var months = map[string]time.Month{
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

// Parse extracts a date range from a sprint label. The year applies to
// the grammars that do not carry one. Returns nil when no grammar
// matches.
func Parse(label string, year int) *DateRange {
	if label == "" {
		return nil
	}

	if m := monthNamePattern.FindStringSubmatch(label); m != nil {
		startMonth, startKnown := lookupMonth(m[1])
		endMonth, endKnown := lookupMonth(m[3])
		startDay, err1 := strconv.Atoi(m[2])
		endDay, err2 := strconv.Atoi(m[4])
		if err1 != nil || err2 != nil {
			return nil
		}
		return &DateRange{
			Start:       time.Date(year, startMonth, startDay, 0, 0, 0, 0, time.UTC),
			End:         time.Date(year, endMonth, endDay, 0, 0, 0, 0, time.UTC),
			Approximate: !startKnown || !endKnown,
		}
	}

	if m := numericPattern.FindStringSubmatch(label); m != nil {
		startMonth, _ := strconv.Atoi(m[1])
		startDay, _ := strconv.Atoi(m[2])
		endMonth, _ := strconv.Atoi(m[3])
		endDay, _ := strconv.Atoi(m[4])
		if startMonth < 1 || startMonth > 12 || endMonth < 1 || endMonth > 12 {
			return nil
		}
		return &DateRange{
			Start: time.Date(year, time.Month(startMonth), startDay, 0, 0, 0, 0, time.UTC),
			End:   time.Date(year, time.Month(endMonth), endDay, 0, 0, 0, 0, time.UTC),
		}
	}

	if m := isoPairPattern.FindStringSubmatch(label); m != nil {
		start, err1 := time.Parse("2006-01-02", m[1])
		end, err2 := time.Parse("2006-01-02", m[2])
		if err1 != nil || err2 != nil {
			return nil
		}
		return &DateRange{Start: start, End: end}
	}

	return nil
}

// lookupMonth resolves a month name, defaulting to January for names it
// does not recognize. The false return lets callers flag the fallback.
func lookupMonth(name string) (time.Month, bool) {
	if month, ok := months[strings.ToLower(name)]; ok {
		return month, true
	}
	return time.January, false
}
