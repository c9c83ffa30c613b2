package record

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reISODate     = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	reNumericDate = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	reMonthDate   = regexp.MustCompile(`(?i)^([A-Za-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:\s*,?\s*(\d{4}))?$`)
	reAnyYear     = regexp.MustCompile(`\d{4}`)
)

var monthsByName = map[string]time.Month{}

func init() {
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		monthsByName[name] = m
		monthsByName[name[:3]] = m
	}
}

// NormalizeDate canonicalizes a date string to MM/DD/YYYY. Recognized inputs:
// M/D/YYYY and MM/DD/YYYY (month-first unless a component exceeds 12),
// "Month D, YYYY" with an optional ordinal suffix and full or 3-letter month
// names, YYYY-MM-DD, and D-M-YYYY/M-D-YYYY with dash separators. A value with
// no 4-digit year gets the current year appended and is retried once.
// Unrecognized input is returned unchanged with a warning; it is never an error.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if out, ok := parseDate(s); ok {
		return out
	}
	if !reAnyYear.MatchString(s) {
		if out, ok := parseDate(appendCurrentYear(s)); ok {
			return out
		}
	}
	slog.Default().Warn("normalize.date.unrecognized", "value", s)
	return s
}

func parseDate(s string) (string, bool) {
	if m := reISODate.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if out, ok := formatDate(year, month, day); ok {
			return out, true
		}
	}

	if m := reNumericDate.FindStringSubmatch(s); m != nil {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		// Whichever component exceeds 12 is the day. When both fit a month
		// the source convention is month-first.
		month, day := first, second
		if first > 12 {
			month, day = second, first
		}
		if out, ok := formatDate(year, month, day); ok {
			return out, true
		}
	}

	if m := reMonthDate.FindStringSubmatch(s); m != nil {
		if month, ok := monthsByName[strings.ToLower(m[1])]; ok {
			day, _ := strconv.Atoi(m[2])
			if m[3] == "" {
				// Year omitted: substitute the current year and reparse.
				return parseDate(fmt.Sprintf("%s %s, %d", m[1], m[2], time.Now().Year()))
			}
			year, _ := strconv.Atoi(m[3])
			if out, ok := formatDate(year, int(month), day); ok {
				return out, true
			}
		}
	}

	return "", false
}

// appendCurrentYear extends a yearless date using the separator the value
// already uses so the numeric patterns still match on retry.
func appendCurrentYear(s string) string {
	year := time.Now().Year()
	switch {
	case strings.Contains(s, "/"):
		return fmt.Sprintf("%s/%d", s, year)
	case strings.Contains(s, "-"):
		return fmt.Sprintf("%s-%d", s, year)
	default:
		return fmt.Sprintf("%s, %d", s, year)
	}
}

// formatDate renders MM/DD/YYYY after checking the components name a real
// calendar date (time.Date silently normalizes overflow, so compare back).
func formatDate(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return t.Format("01/02/2006"), true
}

// corporateSuffixes maps case-insensitive matches to their canonical
// spelling, checked in priority order: the first suffix found wins.
var corporateSuffixes = []string{
	", L.P.",
	", LP",
	", Inc.",
	", LLC",
	", Ltd.",
	", Limited",
	", Corp.",
	", Corporation",
}

// NormalizeName trims an entity name and canonicalizes its corporate suffix.
// The base part keeps its original casing; only the suffix is rewritten, and
// anything trailing the matched suffix is dropped. Names with no recognized
// suffix are returned trimmed.
func NormalizeName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return ""
	}
	lower := strings.ToLower(name)
	for _, suffix := range corporateSuffixes {
		idx := strings.Index(lower, strings.ToLower(suffix))
		if idx < 0 {
			continue
		}
		base := strings.TrimSpace(name[:idx])
		if base == "" {
			return suffix[2:] // bare suffix, nothing to rebuild
		}
		return base + suffix
	}
	return name
}
