package app

import (
	"encoding/json"
	"testing"
)

func TestJournalRequiresDate(t *testing.T) {
	useMemStore(t, &memStore{events: seedEvents()})
	_, _, code := runCmd(t, "journal", "--json", "--no-auth")
	if code != 2 {
		t.Fatalf("exit=%d want 2", code)
	}
}

func TestJournalBuckets(t *testing.T) {
	useMemStore(t, &memStore{events: seedEvents()})
	out, _, code := runCmd(t, "journal", "--date", "Lundi 18 Mars 2024", "--json", "--no-auth")
	if code != 0 {
		t.Fatalf("exit=%d", code)
	}
	var env struct {
		Data []struct {
			Key   string `json:"key"`
			Items []any  `json:"items"`
		} `json:"data"`
		Meta map[string]any `json:"meta"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(env.Data) != 2 || env.Data[0].Key != "10" || env.Data[1].Key != "12" {
		t.Fatalf("buckets %+v", env.Data)
	}
	if env.Meta["count"].(float64) != 2 {
		t.Fatalf("meta %+v", env.Meta)
	}
}

func TestJournalEditWritesBack(t *testing.T) {
	m := &memStore{events: seedEvents()}
	useMemStore(t, m)

	_, _, code := runCmd(t, "journal",
		"--date", "Lundi 18 Mars 2024",
		"--event", "ev-1", "--day", "0", "--prestation", "0",
		"--pax", "18", "--lieu", "Salon B",
		"--json", "--no-auth")
	if code != 0 {
		t.Fatalf("exit=%d", code)
	}
	if len(m.replaced) != 1 {
		t.Fatalf("store not written")
	}
	p := m.events[0].Days[0].Prestations[0]
	if p.Pax != "18" || p.Lieu != "Salon B" {
		t.Fatalf("edit not applied: %+v", p)
	}
}

func TestJournalEditRejectsBadIndex(t *testing.T) {
	m := &memStore{events: seedEvents()}
	useMemStore(t, m)

	_, _, code := runCmd(t, "journal",
		"--date", "Lundi 18 Mars 2024",
		"--event", "ev-1", "--day", "9", "--prestation", "0", "--pax", "18",
		"--json", "--no-auth")
	if code != 2 {
		t.Fatalf("exit=%d want 2", code)
	}
	if len(m.replaced) != 0 {
		t.Fatalf("store written despite failed edit")
	}
}

func TestCuisineFallbackMenus(t *testing.T) {
	useMemStore(t, &memStore{events: seedEvents()})
	out, _, code := runCmd(t, "cuisine", "--date", "Lundi 18 Mars 2024", "--json", "--no-auth")
	if code != 0 {
		t.Fatalf("exit=%d", code)
	}
	var env struct {
		Data []struct {
			Entreprise string `json:"entreprise"`
			Dejeuner   struct {
				MenuName string `json:"menuName"`
			} `json:"dejeuner"`
			LunchPax string `json:"lunch_pax"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 1 || env.Data[0].Dejeuner.MenuName != "Menu du jour" || env.Data[0].LunchPax != "12" {
		t.Fatalf("menus %+v", env.Data)
	}
}

func TestDatesListsChronologically(t *testing.T) {
	useMemStore(t, &memStore{events: seedEvents()})
	out, _, code := runCmd(t, "dates", "--json", "--no-auth")
	if code != 0 {
		t.Fatalf("exit=%d", code)
	}
	var env struct {
		Data []string `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 1 || env.Data[0] != "Lundi 18 Mars 2024" {
		t.Fatalf("dates %v", env.Data)
	}
}

func TestPlanningGroups(t *testing.T) {
	useMemStore(t, &memStore{events: seedEvents()})
	out, _, code := runCmd(t, "planning", "--json", "--no-auth")
	if code != 0 {
		t.Fatalf("exit=%d", code)
	}
	var env struct {
		Data []struct {
			Week  int    `json:"week"`
			Label string `json:"label"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 1 || env.Data[0].Week != 12 || env.Data[0].Label != "du 18 mars au 24 mars 2024" {
		t.Fatalf("groups %+v", env.Data)
	}
}

func TestWeeklyEmptyStore(t *testing.T) {
	useMemStore(t, &memStore{})
	out, _, code := runCmd(t, "weekly", "--json", "--no-auth")
	if code != 0 {
		t.Fatalf("exit=%d", code)
	}
	var env struct {
		Data struct {
			TotalRooms int `json:"total_rooms"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.TotalRooms != 0 {
		t.Fatalf("totals %+v", env.Data)
	}
}
