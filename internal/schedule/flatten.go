// Package schedule turns the stored sheet collection into the per-day and
// per-week views the departments work from: flattened chronologies, hourly
// timelines, and cross-group aggregations. Everything here recomputes from
// scratch on each call; inputs are never mutated.
package schedule

import (
	"slices"
	"strings"

	"github.com/optipresta/optipresta/internal/contract"
	"github.com/optipresta/optipresta/internal/frdate"
)

// EventDay pairs one day with its owning event. Event is a pointer into the
// caller's collection so editable views can locate the original for the
// clone-and-patch write path; read paths must not mutate through it.
type EventDay struct {
	Event     *contract.Event `json:"event"`
	Day       contract.Day    `json:"day"`
	DayIndex  int             `json:"day_index"`
	Timestamp int64           `json:"timestamp"`
}

// FlattenDays expands every event into its (event, day) pairs. Events with
// no days contribute nothing; days with empty dates carry timestamp 0.
func FlattenDays(events []contract.Event) []EventDay {
	out := make([]EventDay, 0, len(events))
	for i := range events {
		ev := &events[i]
		for j, day := range ev.Days {
			out = append(out, EventDay{
				Event:     ev,
				Day:       day,
				DayIndex:  j,
				Timestamp: frdate.SortKey(day.Date),
			})
		}
	}
	return out
}

// SortChronological orders flattened days by parsed timestamp, stable so
// that same-date days keep their event order.
func SortChronological(days []EventDay) {
	slices.SortStableFunc(days, func(a, b EventDay) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		default:
			return 0
		}
	})
}

// UniqueDates lists every distinct non-empty date string across the
// collection, ordered chronologically by parsed timestamp.
func UniqueDates(events []contract.Event) []string {
	seen := map[string]bool{}
	dates := []string{}
	for _, ev := range events {
		for _, day := range ev.Days {
			if day.Date == "" || seen[day.Date] {
				continue
			}
			seen[day.Date] = true
			dates = append(dates, day.Date)
		}
	}
	slices.SortStableFunc(dates, func(a, b string) int {
		ka, kb := frdate.SortKey(a), frdate.SortKey(b)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
	return dates
}

// WeekGroup is one ISO week's worth of flattened days in a day-granular view.
type WeekGroup struct {
	Week  int        `json:"week"`
	Year  int        `json:"year"`
	Label string     `json:"label"`
	Days  []EventDay `json:"days"`
}

// GroupByWeek buckets chronologically sorted days by the ISO week of each
// day's own parsed date, not the owning event's cached week. A stay that
// spans a week boundary therefore shows up under both weeks here, while the
// dashboard (which keys off the cached fields) lists it once.
func GroupByWeek(days []EventDay) []WeekGroup {
	type key struct{ week, year int }
	index := map[key]int{}
	groups := []WeekGroup{}
	for _, d := range days {
		var week, year int
		if d.Timestamp != 0 {
			week, year = frdate.ISOWeek(timeOf(d.Timestamp))
		}
		// Unparsed dates go to a dedicated "Dates inconnues" group instead
		// of the epoch's week.
		k := key{week, year}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, WeekGroup{
				Week:  week,
				Year:  year,
				Label: frdate.WeekRangeLabel(week, year),
			})
		}
		groups[i].Days = append(groups[i].Days, d)
	}
	return groups
}
