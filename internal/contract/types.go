package contract

import "time"

const SchemaVersion = "v1"

type ErrorCode string

const (
	ErrGeneric          ErrorCode = "GENERIC_FAILURE"
	ErrInvalidUsage     ErrorCode = "INVALID_USAGE"
	ErrNotFound         ErrorCode = "NOT_FOUND"
	ErrStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	ErrUnauthenticated  ErrorCode = "UNAUTHENTICATED"
)

type ErrorEnvelope struct {
	SchemaVersion string         `json:"schema_version"`
	Error         ErrorBody      `json:"error"`
	Meta          map[string]any `json:"meta,omitempty"`
}

type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Hint    string    `json:"hint,omitempty"`
}

type SuccessEnvelope struct {
	SchemaVersion string         `json:"schema_version"`
	Command       string         `json:"command"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Data          any            `json:"data"`
	Meta          map[string]any `json:"meta"`
	Warnings      []string       `json:"warnings"`
}

// Prestation is one service slot on a day. All numeral fields are kept as
// strings: sheets arrive from hand entry or AI extraction and may hold empty
// or non-numeric values that must survive a round trip untouched.
type Prestation struct {
	Type     string `json:"type"`
	Nom      string `json:"nom,omitempty"`
	Pax      string `json:"pax,omitempty"`
	Horaires string `json:"horaires,omitempty"`
	Lieu     string `json:"lieu,omitempty"`
}

type Allergy struct {
	Nb          string `json:"nb,omitempty"`
	Name        string `json:"name,omitempty"`
	Restriction string `json:"restriction,omitempty"`
}

type MenuDetails struct {
	MenuName          string    `json:"menuName,omitempty"`
	Entree            string    `json:"entree,omitempty"`
	Plat              string    `json:"plat,omitempty"`
	Fromage           string    `json:"fromage,omitempty"`
	Dessert           string    `json:"dessert,omitempty"`
	HasAperitif       bool      `json:"hasAperitif,omitempty"`
	AperitifName      string    `json:"aperitifName,omitempty"`
	AperitifNbPax     string    `json:"aperitifNbPax,omitempty"`
	HasForfaitBoisson bool      `json:"hasForfaitBoisson,omitempty"`
	BoissonName       string    `json:"boissonName,omitempty"`
	VinNb             string    `json:"vinNb,omitempty"`
	SoftNb            string    `json:"softNb,omitempty"`
	Allergies         []Allergy `json:"allergies,omitempty"`
}

type SalleDisposition struct {
	Salle    string `json:"salle"`
	Pax      string `json:"pax"`
	Format   string `json:"format"`
	Materiel string `json:"materiel,omitempty"`
}

type RoomDetails struct {
	NbChambres  string `json:"nbChambres"`
	NbPersonnes string `json:"nbPersonnes"`
	TypeChambre string `json:"typeChambre"`
	Notes       string `json:"notes,omitempty"`
}

type TeamBuilding struct {
	Enabled     bool   `json:"enabled"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description"`
}

// Day holds one dated slice of a stay. The date is a free-form string,
// usually "Lundi 18 Mars 2024" or "DD/MM/YYYY" depending on how the sheet
// was produced. Order inside Days is presentation order; callers sort.
type Day struct {
	Date              string             `json:"date"`
	Prestations       []Prestation       `json:"prestations"`
	DejeunerMenu      *MenuDetails       `json:"dejeunerMenu,omitempty"`
	DinerMenu         *MenuDetails       `json:"dinerMenu,omitempty"`
	SallesDisposition []SalleDisposition `json:"sallesDisposition,omitempty"`
	Hebergement       []RoomDetails      `json:"hebergement,omitempty"`
	TeamBuilding      *TeamBuilding      `json:"teamBuilding,omitempty"`
}

type ContactInfo struct {
	Nom   string `json:"nom"`
	Email string `json:"email"`
	Tel   string `json:"tel"`
}

type Extras struct {
	Bar        string `json:"bar,omitempty"`
	Restaurant string `json:"restaurant,omitempty"`
	Transfert  string `json:"transfert,omitempty"`
}

// EventData is the identity-free sheet body, the shape the extraction
// service returns and the create/update commands accept. Every field is
// optional from the decoder's point of view.
type EventData struct {
	Entreprise          string        `json:"entreprise"`
	Secteur             string        `json:"secteur,omitempty"`
	ContactClient       ContactInfo   `json:"contactClient"`
	ResponsableSurPlace ContactInfo   `json:"responsableSurPlace"`
	Days                []Day         `json:"days"`
	Allergies           []Allergy     `json:"allergies,omitempty"`
	CommentairesEquipe  string        `json:"commentairesEquipe,omitempty"`
	TeamBuilding        *TeamBuilding `json:"teamBuilding,omitempty"`
	Extras              *Extras       `json:"extras,omitempty"`
}

// Event is a stored sheet. WeekNumber and Year are derived from the first
// day's date when the event is created or updated and are not recomputed
// afterward; day-granular views must compute their own week per day.
type Event struct {
	EventData
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	WeekNumber int       `json:"weekNumber"`
	Year       int       `json:"year"`
}
