package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/optipresta/optipresta/internal/contract"
	"github.com/optipresta/optipresta/internal/store"
)

// memStore is an in-memory store.Store capturing every Replace call.
type memStore struct {
	events     []contract.Event
	replaced   [][]contract.Event
	loadErr    error
	replaceErr error
	closed     bool
}

func (m *memStore) Load(context.Context) ([]contract.Event, error) {
	return m.events, m.loadErr
}

func (m *memStore) Replace(_ context.Context, events []contract.Event) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.events = events
	m.replaced = append(m.replaced, events)
	return nil
}

func (m *memStore) Close() error {
	m.closed = true
	return nil
}

// useMemStore swaps the store factory for the duration of a test and
// isolates config and session lookups in a temp home.
func useMemStore(t *testing.T, m *memStore) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	orig := storeFactory
	storeFactory = func(string, string) (store.Store, error) { return m, nil }
	t.Cleanup(func() { storeFactory = orig })
}

// runCmd executes the root command with args and returns stdout, stderr,
// and the exit code.
func runCmd(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), ExitCode(err)
}

func seedEvents() []contract.Event {
	return []contract.Event{
		{
			ID:         "ev-1",
			WeekNumber: 12,
			Year:       2024,
			EventData: contract.EventData{
				Entreprise: "Acme",
				Days: []contract.Day{
					{
						Date: "Lundi 18 Mars 2024",
						Prestations: []contract.Prestation{
							{Type: "Réunion", Nom: "Plénière", Horaires: "10h", Pax: "12", Lieu: "Salon A"},
							{Type: "Déjeuner", Nom: "Menu du jour", Horaires: "12h30", Pax: "12"},
						},
					},
				},
			},
		},
	}
}
