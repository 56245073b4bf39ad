// Package frdate parses the free-form French date strings found on service
// sheets and derives ISO-8601 week numbers from them. Parsing never fails:
// missing pieces fall back to documented defaults so that sorting and
// grouping stay total even on hand-typed input.
package frdate

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var months = []string{
	"janvier", "fevrier", "mars", "avril", "mai", "juin",
	"juillet", "aout", "septembre", "octobre", "novembre", "decembre",
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases the input and strips combining diacritical marks,
// so "Décembre" and "decembre" compare equal.
func Normalize(s string) string {
	out, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// ParseFrench reads a date like "Lundi 18 Mars 2024" token by token.
// A token parsing as an integer above 1000 is the year, one in (0,31] is the
// day of month, and a token matching a month name (either direction of
// containment, tokens of one or two runes excluded) sets the month.
// Missing components default to day 1, January, the current year.
// The second return value is false when the input is empty.
func ParseFrench(s string, now time.Time) (time.Time, bool) {
	clean := strings.TrimSpace(Normalize(s))
	if clean == "" {
		return time.Time{}, false
	}
	day, month, year := 1, time.January, now.Year()
	for _, tok := range strings.Fields(clean) {
		if n, err := strconv.Atoi(tok); err == nil {
			if n > 1000 {
				year = n
			} else if n > 0 && n <= 31 {
				day = n
			}
			continue
		}
		if len([]rune(tok)) <= 2 {
			continue
		}
		for i, m := range months {
			if strings.Contains(tok, m) || strings.Contains(m, tok) {
				month = time.Month(i + 1)
				break
			}
		}
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local), true
}

// ParseSlash reads the DD/MM/YYYY form. It only accepts exactly three
// integer fields; anything else reports false.
func ParseSlash(s string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	return time.Date(nums[2], time.Month(nums[1]), nums[0], 0, 0, 0, 0, time.Local), true
}

// Parse handles both sheet date formats. Slash dates are detected first:
// feeding "12/04/2024" through the free-text path would misread every field.
func Parse(s string, now time.Time) (time.Time, bool) {
	if t, ok := ParseSlash(s); ok {
		return t, ok
	}
	return ParseFrench(s, now)
}

// SortKey is the timestamp used to order days. Unparseable or empty dates
// map to 0 and therefore sort first; mis-entered dates surface at the top
// of lists instead of vanishing.
func SortKey(s string) int64 {
	t, ok := Parse(s, time.Now())
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

// ISOWeek returns the ISO-8601 week number and week-based year for a date,
// using the Thursday rule: a week belongs to the year owning its Thursday.
// Arithmetic is done on UTC dates so daylight-saving shifts cannot move a
// day across a week boundary.
func ISOWeek(t time.Time) (week, year int) {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	wd := int(d.Weekday())
	if wd == 0 {
		wd = 7
	}
	thursday := d.AddDate(0, 0, 4-wd)
	yearStart := time.Date(thursday.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days := int(thursday.Sub(yearStart).Hours()/24) + 1
	week = (days + 6) / 7
	return week, thursday.Year()
}

// WeekBounds returns the Monday and Sunday of ISO week number week in the
// week-based year, via the January 4 anchor (always inside week 1).
func WeekBounds(week, year int) (time.Time, time.Time) {
	anchor := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	wd := int(anchor.Weekday())
	if wd == 0 {
		wd = 7
	}
	start := anchor.AddDate(0, 0, -wd+1+(week-1)*7)
	return start, start.AddDate(0, 0, 6)
}

var frenchMonths = []string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// FormatShort renders "18 mars" for week-range labels.
func FormatShort(t time.Time) string {
	return strconv.Itoa(t.Day()) + " " + frenchMonths[int(t.Month())-1]
}

// WeekRangeLabel is the planning heading, e.g. "du 18 mars au 24 mars 2024".
func WeekRangeLabel(week, year int) string {
	if week <= 0 || year <= 0 {
		return "Dates inconnues"
	}
	start, end := WeekBounds(week, year)
	return "du " + FormatShort(start) + " au " + FormatShort(end) + " " + strconv.Itoa(year)
}

// DashboardWeekLabel is the dashboard heading, e.g. "S12 (18 mars - 24 mars) 2024".
func DashboardWeekLabel(week, year int) string {
	if week <= 0 || year <= 0 {
		return "Semaine inconnue"
	}
	start, end := WeekBounds(week, year)
	return "S" + strconv.Itoa(week) + " (" + FormatShort(start) + " - " + FormatShort(end) + ") " + strconv.Itoa(year)
}
