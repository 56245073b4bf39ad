package schedule

import (
	"strings"

	"github.com/optipresta/optipresta/internal/contract"
)

// SheetColumn is one printed column of the per-day service sheet. Keys are
// the legacy aliases still found on imported fiches; matching is on exact
// type equality or name substring, case-insensitive.
type SheetColumn struct {
	Label string
	Keys  []string
}

// SheetColumns reproduces the fiche layout order. APERITIF appears twice
// on purpose: the midday slot and the evening cocktail have distinct alias
// sets.
var SheetColumns = []SheetColumn{
	{Label: "Café d'accueil", Keys: []string{"café d'accueil", "kf d'accueil", "accueil"}},
	{Label: "Pause AM", Keys: []string{"pause am", "pause matin"}},
	{Label: "APERITIF", Keys: []string{"aperitif", "apéritif", "apero"}},
	{Label: "DEJEUNER", Keys: []string{"dejeuner", "déjeuner"}},
	{Label: "Pause PM", Keys: []string{"pause pm", "pause après-midi"}},
	{Label: "APERITIF", Keys: []string{"aperitif 2", "apéritif soir", "cocktail"}},
	{Label: "DINER", Keys: []string{"diner", "dîner"}},
	{Label: "Départ", Keys: []string{"départ", "fin"}},
}

// PrestationForColumn resolves the prestation filling a sheet column, or
// nil when the day has none.
func PrestationForColumn(day contract.Day, keys []string) *contract.Prestation {
	for i := range day.Prestations {
		p := &day.Prestations[i]
		for _, k := range keys {
			if strings.EqualFold(p.Type, k) {
				return p
			}
			if strings.Contains(strings.ToLower(p.Nom), strings.ToLower(k)) {
				return p
			}
		}
	}
	return nil
}

// SheetCell is one resolved column for rendering.
type SheetCell struct {
	Label      string               `json:"label"`
	Prestation *contract.Prestation `json:"prestation,omitempty"`
}

// SheetRow renders a day against the fiche column layout.
func SheetRow(day contract.Day) []SheetCell {
	cells := make([]SheetCell, 0, len(SheetColumns))
	for _, c := range SheetColumns {
		cells = append(cells, SheetCell{Label: c.Label, Prestation: PrestationForColumn(day, c.Keys)})
	}
	return cells
}

// FindArrival locates the responsable or participants arrival slot; role is
// matched on type or name, uppercase substring, mirroring the sheets where
// the role sometimes lives in the free-text name.
func FindArrival(day contract.Day, role string) *contract.Prestation {
	role = strings.ToUpper(role)
	for i := range day.Prestations {
		p := &day.Prestations[i]
		t := strings.ToUpper(p.Type)
		if !strings.Contains(t, "ARRIVÉE") && !strings.Contains(t, "ARRIVEE") {
			continue
		}
		if strings.Contains(t, role) || strings.Contains(strings.ToUpper(p.Nom), role) {
			return p
		}
	}
	return nil
}
