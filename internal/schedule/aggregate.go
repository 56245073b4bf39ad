package schedule

import (
	"slices"
	"strconv"
	"strings"

	"github.com/optipresta/optipresta/internal/contract"
	"github.com/optipresta/optipresta/internal/frdate"
)

// Fallback menu labels shown when a day carries no menu of that service.
const (
	DefaultLunchMenuName  = "Menu du jour"
	DefaultDinnerMenuName = "Menu Gourmet"
)

// DailyMenu pairs one group with its menus for the selected date. Absent
// menus are materialized with the fallback name so the kitchen sheet never
// renders blank.
type DailyMenu struct {
	Entreprise string               `json:"entreprise"`
	Dejeuner   contract.MenuDetails `json:"dejeuner"`
	Diner      contract.MenuDetails `json:"diner"`
	LunchPax   string               `json:"lunch_pax"`
	DinnerPax  string               `json:"dinner_pax"`
}

// MenusForDate lists, for every event holding the selected date, the lunch
// and dinner menus of that day plus the pax figure of the matching meal
// prestation.
func MenusForDate(events []contract.Event, date string) []DailyMenu {
	if date == "" {
		return nil
	}
	out := []DailyMenu{}
	for _, ev := range events {
		idx := slices.IndexFunc(ev.Days, func(d contract.Day) bool { return d.Date == date })
		if idx < 0 {
			continue
		}
		day := ev.Days[idx]
		m := DailyMenu{
			Entreprise: ev.Entreprise,
			Dejeuner:   contract.MenuDetails{MenuName: DefaultLunchMenuName},
			Diner:      contract.MenuDetails{MenuName: DefaultDinnerMenuName},
			LunchPax:   mealPax(day, "DEJEUNER"),
			DinnerPax:  mealPax(day, "DINER"),
		}
		if day.DejeunerMenu != nil {
			m.Dejeuner = *day.DejeunerMenu
			if m.Dejeuner.MenuName == "" {
				m.Dejeuner.MenuName = DefaultLunchMenuName
			}
		}
		if day.DinerMenu != nil {
			m.Diner = *day.DinerMenu
			if m.Diner.MenuName == "" {
				m.Diner.MenuName = DefaultDinnerMenuName
			}
		}
		out = append(out, m)
	}
	return out
}

func mealPax(day contract.Day, meal string) string {
	for _, p := range day.Prestations {
		// The canonical labels are accented ("Déjeuner", "Dîner"); strip
		// marks before comparing so both spellings match.
		if strings.Contains(strings.ToUpper(frdate.Normalize(p.Type)), meal) {
			if p.Pax != "" {
				return p.Pax
			}
			break
		}
	}
	return "0"
}

// GroupAccommodation is one group's room list for the selected date.
type GroupAccommodation struct {
	Entreprise string                 `json:"entreprise"`
	Rooms      []contract.RoomDetails `json:"rooms"`
}

// AccommodationForDate collects each event's non-empty accommodation list
// for the date.
func AccommodationForDate(events []contract.Event, date string) []GroupAccommodation {
	if date == "" {
		return nil
	}
	out := []GroupAccommodation{}
	for _, ev := range events {
		idx := slices.IndexFunc(ev.Days, func(d contract.Day) bool { return d.Date == date })
		if idx < 0 || len(ev.Days[idx].Hebergement) == 0 {
			continue
		}
		out = append(out, GroupAccommodation{Entreprise: ev.Entreprise, Rooms: ev.Days[idx].Hebergement})
	}
	return out
}

// HousingDay is the per-date row of the weekly reception table: room and
// person counts summed across every group staying that night, plus the
// human-readable detail lines ("3 Twin (6p)").
type HousingDay struct {
	Date      string   `json:"date"`
	Rooms     int      `json:"rooms"`
	Persons   int      `json:"persons"`
	Details   []string `json:"details"`
	Timestamp int64    `json:"-"`
}

// HousingSummary is the full weekly table with its grand-total row.
type HousingSummary struct {
	Days         []HousingDay `json:"days"`
	TotalRooms   int          `json:"total_rooms"`
	TotalPersons int          `json:"total_persons"`
}

// WeeklyHousing builds the cumulative accommodation table across all
// events, keyed by unique date string and ordered chronologically. Counts
// parse leniently: non-numeric values count as zero, and zero-room lines
// contribute no detail string.
func WeeklyHousing(events []contract.Event) HousingSummary {
	flat := FlattenDays(events)
	SortChronological(flat)

	index := map[string]int{}
	days := []HousingDay{}
	for _, ed := range flat {
		key := ed.Day.Date
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, HousingDay{Date: key, Details: []string{}, Timestamp: ed.Timestamp})
		}
		for _, h := range ed.Day.Hebergement {
			rooms := atoiOrZero(h.NbChambres)
			persons := atoiOrZero(h.NbPersonnes)
			days[i].Rooms += rooms
			days[i].Persons += persons
			if rooms > 0 {
				days[i].Details = append(days[i].Details,
					strconv.Itoa(rooms)+" "+h.TypeChambre+" ("+strconv.Itoa(persons)+"p)")
			}
		}
	}
	slices.SortStableFunc(days, func(a, b HousingDay) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		default:
			return 0
		}
	})

	sum := HousingSummary{Days: days}
	for _, d := range days {
		sum.TotalRooms += d.Rooms
		sum.TotalPersons += d.Persons
	}
	return sum
}

// AggregatedRoom is one meeting-room layout tagged with its owning group.
type AggregatedRoom struct {
	contract.SalleDisposition
	Entreprise string `json:"entreprise"`
	EventID    string `json:"event_id"`
}

// RoomsForDate flattens every room layout across events for the date into
// one list, alphabetical by company name.
func RoomsForDate(events []contract.Event, date string) []AggregatedRoom {
	if date == "" {
		return nil
	}
	out := []AggregatedRoom{}
	for _, ev := range events {
		idx := slices.IndexFunc(ev.Days, func(d contract.Day) bool { return d.Date == date })
		if idx < 0 {
			continue
		}
		for _, s := range ev.Days[idx].SallesDisposition {
			out = append(out, AggregatedRoom{SalleDisposition: s, Entreprise: ev.Entreprise, EventID: ev.ID})
		}
	}
	slices.SortStableFunc(out, func(a, b AggregatedRoom) int {
		return strings.Compare(a.Entreprise, b.Entreprise)
	})
	return out
}

// breakTypes are the service labels the restaurant counts as breaks.
var breakTypes = []string{"Café d'accueil", "Pause AM", "Pause PM"}

// Break is one coffee/break service for the restaurant sheet.
type Break struct {
	Entreprise string `json:"entreprise"`
	Type       string `json:"type"`
	Nom        string `json:"nom"`
	Pax        string `json:"pax"`
	Horaires   string `json:"horaires"`
	Lieu       string `json:"lieu"`
	TimeValue  int    `json:"time_value"`
}

// BreaksForDate filters prestations whose type matches a break label,
// across all events for the date, ordered by clock time ascending. Unlike
// the journal timeline there is no terminal category: a missing time means
// value 0 and sorts first, matching the restaurant's paper habit of
// putting unscheduled breaks on top.
func BreaksForDate(events []contract.Event, date string) []Break {
	if date == "" {
		return nil
	}
	out := []Break{}
	for _, ev := range events {
		idx := slices.IndexFunc(ev.Days, func(d contract.Day) bool { return d.Date == date })
		if idx < 0 {
			continue
		}
		for _, p := range ev.Days[idx].Prestations {
			if !isBreakType(p.Type) {
				continue
			}
			b := Break{
				Entreprise: ev.Entreprise,
				Type:       p.Type,
				Nom:        p.Nom,
				Pax:        p.Pax,
				Horaires:   p.Horaires,
				Lieu:       p.Lieu,
			}
			if m := timePattern.FindStringSubmatch(p.Horaires); m != nil {
				h, _ := strconv.Atoi(m[1])
				mn := 0
				if m[2] != "" {
					mn, _ = strconv.Atoi(m[2])
				}
				b.TimeValue = h*60 + mn
			}
			if b.Nom == "" {
				b.Nom = p.Type
			}
			if b.Pax == "" {
				b.Pax = "0"
			}
			if b.Horaires == "" {
				b.Horaires = "--:--"
			}
			if b.Lieu == "" {
				b.Lieu = "—"
			}
			out = append(out, b)
		}
	}
	slices.SortStableFunc(out, func(a, b Break) int { return a.TimeValue - b.TimeValue })
	return out
}

func isBreakType(t string) bool {
	lt := strings.ToLower(t)
	for _, vt := range breakTypes {
		if strings.Contains(lt, strings.ToLower(vt)) {
			return true
		}
	}
	return false
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// DashboardGroup is one week's worth of events in the event-granular
// dashboard, keyed by the events' cached week fields.
type DashboardGroup struct {
	Label  string           `json:"label"`
	Week   int              `json:"week"`
	Year   int              `json:"year"`
	Events []contract.Event `json:"events"`
}

// Dashboard sorts events by cached (year desc, week desc, first-day date
// asc) and groups them under week-range labels. This is the one view that
// trusts the cached WeekNumber/Year; a multi-day stay appears exactly once.
func Dashboard(events []contract.Event) []DashboardGroup {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b contract.Event) int {
		if a.Year != b.Year {
			return b.Year - a.Year
		}
		if a.WeekNumber != b.WeekNumber {
			return b.WeekNumber - a.WeekNumber
		}
		ka, kb := firstDaySlashKey(a), firstDaySlashKey(b)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	})

	index := map[string]int{}
	groups := []DashboardGroup{}
	for _, ev := range sorted {
		label := frdate.DashboardWeekLabel(ev.WeekNumber, ev.Year)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, DashboardGroup{Label: label, Week: ev.WeekNumber, Year: ev.Year})
		}
		groups[i].Events = append(groups[i].Events, ev)
	}
	return groups
}

// firstDaySlashKey orders same-week events by their first day when it is in
// slash form; anything else keys to 0, keeping insertion order.
func firstDaySlashKey(ev contract.Event) int64 {
	if len(ev.Days) == 0 {
		return 0
	}
	if t, ok := frdate.ParseSlash(ev.Days[0].Date); ok {
		return t.UnixMilli()
	}
	return 0
}
