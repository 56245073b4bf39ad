package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func extractionStub(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestImportPreviewDoesNotWrite(t *testing.T) {
	m := &memStore{}
	useMemStore(t, m)
	srv := extractionStub(t, `{"entreprise":"Globex","days":[{"date":"Lundi 18 Mars 2024","prestations":[]}]}`)

	file := filepath.Join(t.TempDir(), "fiche.txt")
	if err := os.WriteFile(file, []byte("Entreprise;Globex"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, _, code := runCmd(t, "import", file, "--endpoint", srv.URL, "--json", "--no-auth")
	if code != 0 {
		t.Fatalf("exit=%d out=%s", code, out)
	}
	if len(m.replaced) != 0 {
		t.Fatalf("preview wrote to the store")
	}
	var env struct {
		Data struct {
			Entreprise string `json:"entreprise"`
		} `json:"data"`
		Meta map[string]any `json:"meta"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Entreprise != "Globex" || env.Meta["saved"] != false {
		t.Fatalf("preview payload %+v", env)
	}
}

func TestImportSavePersists(t *testing.T) {
	m := &memStore{}
	useMemStore(t, m)
	srv := extractionStub(t, `{"entreprise":"Globex","days":[{"date":"Lundi 18 Mars 2024","prestations":[]}]}`)

	file := filepath.Join(t.TempDir(), "fiche.txt")
	if err := os.WriteFile(file, []byte("Entreprise;Globex"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, _, code := runCmd(t, "import", file, "--endpoint", srv.URL, "--save", "--json", "--no-auth")
	if code != 0 {
		t.Fatalf("exit=%d", code)
	}
	if len(m.events) != 1 {
		t.Fatalf("event not saved")
	}
	ev := m.events[0]
	if ev.ID == "" || ev.Entreprise != "Globex" || ev.WeekNumber != 12 {
		t.Fatalf("saved event %+v", ev)
	}
}

func TestImportRejectsEmptyExtraction(t *testing.T) {
	m := &memStore{}
	useMemStore(t, m)
	srv := extractionStub(t, `{"days":[]}`)

	file := filepath.Join(t.TempDir(), "fiche.txt")
	if err := os.WriteFile(file, []byte("illisible"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, _, code := runCmd(t, "import", file, "--endpoint", srv.URL, "--save", "--json", "--no-auth")
	if code != 5 {
		t.Fatalf("exit=%d want 5", code)
	}
	if len(m.replaced) != 0 {
		t.Fatalf("failed extraction wrote to the store")
	}
}

func TestImportRequiresEndpoint(t *testing.T) {
	useMemStore(t, &memStore{})
	file := filepath.Join(t.TempDir(), "fiche.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, code := runCmd(t, "import", file, "--json", "--no-auth")
	if code != 2 {
		t.Fatalf("exit=%d want 2", code)
	}
}

func TestDetectKind(t *testing.T) {
	cases := map[string]string{
		"fiche.xlsx":   "xlsx",
		"fiche.XLSM":   "xlsx",
		"photo.jpg":    "image",
		"photo.png":    "image",
		"fiche.txt":    "text",
		"sans-suffixe": "text",
	}
	for path, want := range cases {
		if got := detectKind(path); got != want {
			t.Fatalf("detectKind(%q)=%q want %q", path, got, want)
		}
	}
}
