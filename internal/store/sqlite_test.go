package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	s, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("empty load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("fresh database should be empty, got %v", got)
	}

	if err := s.Replace(context.Background(), sampleEvents()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err = s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].ID != "ev-1" || got[0].Entreprise != "Acme" {
		t.Fatalf("round trip lost data: %+v", got)
	}
}

func TestSQLiteStoreReplaceIsWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	s, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if err := s.Replace(context.Background(), sampleEvents()); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := s.Replace(context.Background(), nil); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected emptied store, got %v", got)
	}
}

func TestSQLiteStoreSchemaPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	s, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.Close()

	// Reopening with a matching schema version succeeds.
	s, err = OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	// Forcing a foreign version makes the next open refuse.
	if _, err := s.db.Exec(`UPDATE meta SET value = 'v99' WHERE key = 'schema_version'`); err != nil {
		t.Fatalf("update meta: %v", err)
	}
	s.Close()
	if _, err := OpenSQLiteStore(path); err == nil {
		t.Fatalf("expected schema mismatch error")
	}
}
