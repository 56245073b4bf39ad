package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/optipresta/optipresta/internal/contract"
)

func sampleEvents() []contract.Event {
	return []contract.Event{
		{
			ID:         "ev-1",
			CreatedAt:  time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC),
			WeekNumber: 12,
			Year:       2024,
			EventData: contract.EventData{
				Entreprise: "Acme",
				Days: []contract.Day{
					{
						Date:        "Lundi 18 Mars 2024",
						Prestations: []contract.Prestation{{Type: "Réunion", Pax: "12"}},
					},
				},
			},
		},
	}
}

func TestJSONStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	s := NewJSONStore(path)

	if err := s.Replace(context.Background(), sampleEvents()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].ID != "ev-1" || got[0].Entreprise != "Acme" {
		t.Fatalf("round trip lost data: %+v", got)
	}
	if got[0].Days[0].Prestations[0].Pax != "12" {
		t.Fatalf("nested data lost: %+v", got[0].Days[0])
	}
}

func TestJSONStoreMissingFile(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "absent.json"))
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected empty collection, got %v", got)
	}
}

func TestJSONStoreLegacyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	raw, err := json.Marshal(sampleEvents())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := NewJSONStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("legacy load: %v", err)
	}
	if len(got) != 1 || got[0].ID != "ev-1" {
		t.Fatalf("legacy array not read: %+v", got)
	}
}

func TestJSONStoreSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	doc := `{"schema_version":"v99","events":[]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewJSONStore(path).Load(context.Background()); err == nil {
		t.Fatalf("expected schema mismatch error")
	}
}

func TestJSONStoreKeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	s := NewJSONStore(path)
	if err := s.Replace(context.Background(), sampleEvents()); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := s.Replace(context.Background(), nil); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	if _, err := os.Stat(path + backupSuffix); err != nil {
		t.Fatalf("expected backup file: %v", err)
	}
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected emptied store, got %v", got)
	}
}

func TestJSONStoreFailedRewriteKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	s := NewJSONStore(path)
	if err := s.Replace(context.Background(), sampleEvents()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// A directory squatting on the temp path makes the rewrite fail before
	// anything touches the live file.
	if err := os.Mkdir(path+tmpSuffix, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := s.Replace(context.Background(), nil); err == nil {
		t.Fatalf("expected replace to fail")
	}
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load after failed replace: %v", err)
	}
	if len(got) != 1 || got[0].ID != "ev-1" {
		t.Fatalf("collection lost after failed rewrite: %+v", got)
	}
}

func TestFindUpsertRemove(t *testing.T) {
	events := sampleEvents()

	if Find(events, "ev-1") == nil {
		t.Fatalf("existing event not found")
	}
	if Find(events, "nope") != nil {
		t.Fatalf("ghost event found")
	}

	added := Upsert(events, contract.Event{ID: "ev-2", EventData: contract.EventData{Entreprise: "Globex"}})
	if len(added) != 2 || added[0].ID != "ev-2" {
		t.Fatalf("new event should prepend: %+v", added)
	}
	if len(events) != 1 {
		t.Fatalf("input slice mutated")
	}

	replaced := Upsert(added, contract.Event{ID: "ev-1", EventData: contract.EventData{Entreprise: "Acme bis"}})
	if len(replaced) != 2 || replaced[1].Entreprise != "Acme bis" {
		t.Fatalf("upsert did not replace in place: %+v", replaced)
	}

	removed, ok := Remove(replaced, "ev-2")
	if !ok || len(removed) != 1 || removed[0].ID != "ev-1" {
		t.Fatalf("remove: ok=%v %+v", ok, removed)
	}
	if _, ok := Remove(removed, "nope"); ok {
		t.Fatalf("removing an absent id reported true")
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()
	s, err := Open("json", filepath.Join(dir, "a.json"))
	if err != nil {
		t.Fatalf("open json: %v", err)
	}
	if _, ok := s.(*JSONStore); !ok {
		t.Fatalf("expected JSONStore, got %T", s)
	}
	if _, err := Open("cassette", "x"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
