package schedule

import (
	"testing"

	"github.com/optipresta/optipresta/internal/contract"
)

func TestPrestationForColumn(t *testing.T) {
	day := contract.Day{
		Prestations: []contract.Prestation{
			{Type: "Kf d'accueil", Nom: "Accueil café", Horaires: "8h30"},
			{Type: "Déjeuner", Nom: "Déjeuner assis", Horaires: "12h30"},
			{Type: "Autre", Nom: "Cocktail dînatoire", Horaires: "19h"},
		},
	}
	if p := PrestationForColumn(day, []string{"café d'accueil", "kf d'accueil", "accueil"}); p == nil || p.Horaires != "8h30" {
		t.Fatalf("accueil alias not matched: %+v", p)
	}
	if p := PrestationForColumn(day, []string{"dejeuner", "déjeuner"}); p == nil || p.Horaires != "12h30" {
		t.Fatalf("déjeuner not matched: %+v", p)
	}
	// "cocktail" matches through the name, not the type.
	if p := PrestationForColumn(day, []string{"aperitif 2", "apéritif soir", "cocktail"}); p == nil || p.Horaires != "19h" {
		t.Fatalf("cocktail not matched: %+v", p)
	}
	if p := PrestationForColumn(day, []string{"pause am", "pause matin"}); p != nil {
		t.Fatalf("unexpected match: %+v", p)
	}
}

func TestSheetRow(t *testing.T) {
	day := contract.Day{
		Prestations: []contract.Prestation{
			{Type: "Déjeuner", Horaires: "12h30"},
		},
	}
	cells := SheetRow(day)
	if len(cells) != len(SheetColumns) {
		t.Fatalf("expected %d cells, got %d", len(SheetColumns), len(cells))
	}
	filled := 0
	for _, c := range cells {
		if c.Prestation != nil {
			filled++
			if c.Label != "DEJEUNER" {
				t.Fatalf("prestation landed in %q", c.Label)
			}
		}
	}
	if filled != 1 {
		t.Fatalf("expected exactly one filled cell, got %d", filled)
	}
}

func TestFindArrival(t *testing.T) {
	day := contract.Day{
		Prestations: []contract.Prestation{
			{Type: "Arrivée", Nom: "Arrivée du responsable", Horaires: "8h"},
			{Type: "Arrivée participants", Nom: "", Horaires: "9h"},
			{Type: "Réunion", Nom: "participants", Horaires: "10h"},
		},
	}
	if p := FindArrival(day, "responsable"); p == nil || p.Horaires != "8h" {
		t.Fatalf("responsable arrival: %+v", p)
	}
	if p := FindArrival(day, "participants"); p == nil || p.Horaires != "9h" {
		t.Fatalf("participants arrival: %+v", p)
	}
	if p := FindArrival(day, "chauffeur"); p != nil {
		t.Fatalf("unexpected arrival: %+v", p)
	}
}
