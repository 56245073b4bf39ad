// Package store persists the sheet collection. The contract is
// deliberately blunt: load everything once, rewrite everything after each
// mutation, last writer wins. Two backends honor it: a JSON document file
// and a single-table sqlite database.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/optipresta/optipresta/internal/contract"
)

type Store interface {
	// Load reads the whole collection. A missing backing file or empty
	// database is an empty collection, not an error.
	Load(ctx context.Context) ([]contract.Event, error)
	// Replace rewrites the whole collection wholesale.
	Replace(ctx context.Context, events []contract.Event) error
	Close() error
}

// Open selects a backend by name. The JSON file store is the default.
func Open(kind, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "json":
		return NewJSONStore(path), nil
	case "sqlite":
		return OpenSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", kind)
	}
}

// Find returns the event with the given id, or nil.
func Find(events []contract.Event, id string) *contract.Event {
	for i := range events {
		if events[i].ID == id {
			return &events[i]
		}
	}
	return nil
}

// Upsert replaces the event matching by id, or prepends it when new;
// newest sheets list first, matching the intake habit.
func Upsert(events []contract.Event, ev contract.Event) []contract.Event {
	for i := range events {
		if events[i].ID == ev.ID {
			out := make([]contract.Event, len(events))
			copy(out, events)
			out[i] = ev
			return out
		}
	}
	out := make([]contract.Event, 0, len(events)+1)
	out = append(out, ev)
	return append(out, events...)
}

// Remove drops the event with the given id; reports whether it was present.
func Remove(events []contract.Event, id string) ([]contract.Event, bool) {
	out := make([]contract.Event, 0, len(events))
	found := false
	for _, e := range events {
		if e.ID == id {
			found = true
			continue
		}
		out = append(out, e)
	}
	return out, found
}
