package schedule

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/optipresta/optipresta/internal/contract"
)

// Fixed category vocabulary. Raw sheet types that match none of these are
// folded onto a category via keyword fallback, ending at Autre.
const (
	CategoryArrivee  = "Arrivée"
	CategoryPause    = "Pause"
	CategoryReunion  = "Réunion"
	CategoryDejeuner = "Déjeuner"
	CategoryDiner    = "Dîner"
	CategoryDepart   = "Départ"
	CategoryAutre    = "Autre"
)

var categories = map[string]bool{
	CategoryArrivee:  true,
	CategoryPause:    true,
	CategoryReunion:  true,
	CategoryDejeuner: true,
	CategoryDiner:    true,
	CategoryDepart:   true,
	CategoryAutre:    true,
}

// departPenalty pushes Départ items past any clock time (max score of a
// plain item is 23*60+59).
const departPenalty = 20000

var timePattern = regexp.MustCompile(`(?i)(\d{1,2})[h:](\d{0,2})`)

// ParseTime extracts (hour, minute) from a horaires field accepting "9h",
// "9h30", "09:30". When nothing matches it reports (23, 59) so that items
// without a usable time sort to the end of the day instead of the start.
func ParseTime(horaires string) (hour, minute int) {
	m := timePattern.FindStringSubmatch(horaires)
	if m == nil {
		return 23, 59
	}
	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	return hour, minute
}

// Categorize maps a raw prestation type onto the fixed vocabulary. Exact
// labels pass through; otherwise lowercase substring matching against known
// French keywords decides, with Autre as the fallback. Déjeuner/Dîner are
// probed before Pause so "pause déjeuner" lands on the meal.
func Categorize(rawType string) string {
	category := rawType
	if category == "" {
		category = CategoryAutre
	}
	if categories[category] {
		return category
	}
	t := strings.ToLower(category)
	switch {
	case strings.Contains(t, "déjeuner") || strings.Contains(t, "dejeuner"):
		return CategoryDejeuner
	case strings.Contains(t, "dîner") || strings.Contains(t, "diner"):
		return CategoryDiner
	case strings.Contains(t, "pause") || strings.Contains(t, "café") || strings.Contains(t, "cafe"):
		return CategoryPause
	case strings.Contains(t, "arrivée") || strings.Contains(t, "arrivee"):
		return CategoryArrivee
	case strings.Contains(t, "départ") || strings.Contains(t, "depart") || strings.Contains(t, "fin"):
		return CategoryDepart
	case strings.Contains(t, "réunion") || strings.Contains(t, "reunion") || strings.Contains(t, "salle"):
		return CategoryReunion
	default:
		return CategoryAutre
	}
}

// TimelineItem is one prestation placed on the day's agenda, with enough
// addressing (event id, day index, prestation index) for the inline edit
// write path to find it again.
type TimelineItem struct {
	EventID         string              `json:"event_id"`
	Entreprise      string              `json:"entreprise"`
	DayIndex        int                 `json:"day_index"`
	PrestationIndex int                 `json:"prestation_index"`
	Prestation      contract.Prestation `json:"prestation"`
	Time            string              `json:"time"`
	Hour            int                 `json:"hour"`
	Minutes         int                 `json:"minutes"`
	Category        string              `json:"category"`
}

func (it TimelineItem) score() int {
	s := it.Hour*60 + it.Minutes
	if it.Category == CategoryDepart {
		s += departPenalty
	}
	return s
}

// BuildTimeline collects every prestation across all events for one date
// and orders it: Départ items strictly after everything else, clock time
// ascending within that split.
func BuildTimeline(events []contract.Event, date string) []TimelineItem {
	if date == "" {
		return nil
	}
	items := []TimelineItem{}
	for i := range events {
		ev := &events[i]
		dayIdx := slices.IndexFunc(ev.Days, func(d contract.Day) bool { return d.Date == date })
		if dayIdx < 0 {
			continue
		}
		for pIdx, p := range ev.Days[dayIdx].Prestations {
			h, m := ParseTime(p.Horaires)
			display := p.Horaires
			if display == "" {
				display = "--:--"
			}
			items = append(items, TimelineItem{
				EventID:         ev.ID,
				Entreprise:      ev.Entreprise,
				DayIndex:        dayIdx,
				PrestationIndex: pIdx,
				Prestation:      p,
				Time:            display,
				Hour:            h,
				Minutes:         m,
				Category:        Categorize(p.Type),
			})
		}
	}
	slices.SortStableFunc(items, func(a, b TimelineItem) int { return a.score() - b.score() })
	return items
}

// DepartBucket labels the terminal bucket that collects Départ items
// regardless of their clock hour.
const DepartBucket = "DEPART"

// TimelineBucket is one displayed agenda block: an integer hour, or the
// terminal Départ block.
type TimelineBucket struct {
	Key   string         `json:"key"`
	Items []TimelineItem `json:"items"`
}

// GroupTimeline buckets an ordered timeline by hour of day. Départ items
// form their own bucket which always comes last; the rest are ordered by
// increasing hour.
func GroupTimeline(items []TimelineItem) []TimelineBucket {
	index := map[string]int{}
	buckets := []TimelineBucket{}
	for _, it := range items {
		key := strconv.Itoa(it.Hour)
		if it.Category == CategoryDepart {
			key = DepartBucket
		}
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, TimelineBucket{Key: key})
		}
		buckets[i].Items = append(buckets[i].Items, it)
	}
	slices.SortStableFunc(buckets, func(a, b TimelineBucket) int {
		switch {
		case a.Key == DepartBucket:
			return 1
		case b.Key == DepartBucket:
			return -1
		default:
			ha, _ := strconv.Atoi(a.Key)
			hb, _ := strconv.Atoi(b.Key)
			return ha - hb
		}
	})
	return buckets
}

// EditablePrestationFields names the two fields the journal view lets staff
// adjust inline.
var EditablePrestationFields = map[string]bool{"pax": true, "lieu": true}

// ApplyPrestationEdit returns a deep copy of the owning event with a single
// prestation field changed. The original is read, never written: consumers
// holding the shared event list only ever observe the fully patched copy.
func ApplyPrestationEdit(ev *contract.Event, dayIdx, prestationIdx int, field, value string) (contract.Event, error) {
	if ev == nil {
		return contract.Event{}, fmt.Errorf("no event")
	}
	if !EditablePrestationFields[field] {
		return contract.Event{}, fmt.Errorf("field %q is not editable inline", field)
	}
	if dayIdx < 0 || dayIdx >= len(ev.Days) {
		return contract.Event{}, fmt.Errorf("day index %d out of range", dayIdx)
	}
	if prestationIdx < 0 || prestationIdx >= len(ev.Days[dayIdx].Prestations) {
		return contract.Event{}, fmt.Errorf("prestation index %d out of range", prestationIdx)
	}
	clone := CloneEvent(*ev)
	p := &clone.Days[dayIdx].Prestations[prestationIdx]
	switch field {
	case "pax":
		p.Pax = value
	case "lieu":
		p.Lieu = value
	}
	return clone, nil
}

// timeOf converts a sort key back to the local calendar date it encodes;
// week computations read calendar components, so the location must match
// the one the parser used.
func timeOf(ms int64) time.Time {
	return time.UnixMilli(ms)
}
