// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package review

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ISOLayout is the date-time layout used for every date in emitted documents.
const ISOLayout = "2006-01-02T15:04:05"

// spanishMonths maps the review site's three-letter month abbreviations.
var spanishMonths = map[string]time.Month{
	"Ene": time.January,
	"Feb": time.February,
	"Mar": time.March,
	"Abr": time.April,
	"May": time.May,
	"Jun": time.June,
	"Jul": time.July,
	"Ago": time.August,
	"Sep": time.September,
	"Oct": time.October,
	"Nov": time.November,
	"Dic": time.December,
}

var localizedDate = regexp.MustCompile(`^(\d{1,2})/([A-Za-z]{3})/(\d{4})$`)

// numericLayouts are tried in order after the localized form fails.
// Single-digit layout elements accept one or two digits.
var numericLayouts = []string{
	"2006-1-2",
	"2/1/2006",
	"1/2/2006",
	"2006/1/2",
}

// ParseDate parses a scraped review date. It returns nil when no supported
// layout matches or the calendar date does not exist.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if t, ok := parseLocalized(s); ok {
		return &t
	}

	for _, layout := range numericLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func parseLocalized(s string) (time.Time, bool) {
	m := localizedDate.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	// Title caser is stateful; build one per call so workers can share ParseDate.
	month, ok := spanishMonths[cases.Title(language.Spanish).String(m[2])]
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		// time.Date normalizes 31/Feb into March.
		return time.Time{}, false
	}
	return t, true
}

// FormatISO renders a date with ISOLayout, or nil for an absent date.
func FormatISO(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(ISOLayout)
	return &s
}
