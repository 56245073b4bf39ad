package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/optipresta/optipresta/internal/contract"
)

func TestSchemaVersionDefault(t *testing.T) {
	p := Printer{}
	if p.schemaVersion() != contract.SchemaVersion {
		t.Fatalf("expected default schema version %q", contract.SchemaVersion)
	}
}

func TestFlattenWithFields(t *testing.T) {
	e := contract.Event{
		ID:        "abc",
		CreatedAt: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
		EventData: contract.EventData{Entreprise: "Acme"},
	}
	got := flatten(e, []string{"id", "entreprise"})
	if got != "abc\tAcme" {
		t.Fatalf("unexpected flatten result: %q", got)
	}
}

func TestFlattenUnknownField(t *testing.T) {
	e := contract.Event{ID: "abc"}
	if got := flatten(e, []string{"id", "nonexistent"}); got != "abc\t" {
		t.Fatalf("unexpected flatten result: %q", got)
	}
}

func TestSuccessJSONEnvelope(t *testing.T) {
	var out bytes.Buffer
	p := Printer{Mode: ModeJSON, Command: "events.list", Out: &out}
	if err := p.Success([]string{"a"}, map[string]any{"count": 1}, nil); err != nil {
		t.Fatalf("success: %v", err)
	}
	var env map[string]any
	if err := json.Unmarshal(out.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if env["schema_version"] != contract.SchemaVersion {
		t.Fatalf("schema_version=%v", env["schema_version"])
	}
	if env["command"] != "events.list" {
		t.Fatalf("command=%v", env["command"])
	}
}

func TestSuccessJSONLEmitsOneLinePerItem(t *testing.T) {
	var out bytes.Buffer
	p := Printer{Mode: ModeJSONL, Out: &out}
	if err := p.Success([]string{"a", "b"}, nil, nil); err != nil {
		t.Fatalf("success: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out.String())
	}
}

func TestPlainEmptySlice(t *testing.T) {
	var out bytes.Buffer
	p := Printer{Mode: ModePlain, Out: &out}
	if err := p.Success([]string{}, nil, nil); err != nil {
		t.Fatalf("success: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "no results" {
		t.Fatalf("got %q", got)
	}
}

func TestErrorJSONEnvelope(t *testing.T) {
	var errOut bytes.Buffer
	p := Printer{Mode: ModeJSON, Err: &errOut}
	if err := p.Error(contract.ErrNotFound, "no event", "check the id"); err != nil {
		t.Fatalf("error: %v", err)
	}
	var env contract.ErrorEnvelope
	if err := json.Unmarshal(errOut.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if env.Error.Code != contract.ErrNotFound || env.Error.Hint != "check the id" {
		t.Fatalf("envelope %+v", env)
	}
}

func TestErrorPlainWithHint(t *testing.T) {
	var errOut bytes.Buffer
	p := Printer{Mode: ModePlain, Err: &errOut}
	if err := p.Error(contract.ErrGeneric, "boom", "retry"); err != nil {
		t.Fatalf("error: %v", err)
	}
	if got := errOut.String(); got != "error: boom\nhint: retry\n" {
		t.Fatalf("got %q", got)
	}
}
