// Package model holds the domain types shared by the import pipeline,
// the destination store, and the post-import sweep.
package model

// Establishment is the normalized view of one imported row. Every field is
// optional; normalization fills documented defaults instead of rejecting rows.
type Establishment struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	CNPJ         string   `json:"cnpj"`
	Phone        string   `json:"phone,omitempty"`
	WhatsApp     string   `json:"whatsapp,omitempty"`
	Email        string   `json:"email,omitempty"`
	CEP          string   `json:"cep,omitempty"`
	Street       string   `json:"street,omitempty"`
	Number       string   `json:"number,omitempty"`
	Complement   string   `json:"complement,omitempty"`
	Neighborhood string   `json:"neighborhood,omitempty"`
	City         string   `json:"city,omitempty"`
	State        string   `json:"state,omitempty"`
	Instagram    string   `json:"instagram,omitempty"`
	Website      string   `json:"website,omitempty"`
	Category     string   `json:"category"`
	Specialties  []string `json:"specialties,omitempty"`
	Benefit      string   `json:"benefit,omitempty"`
	UsageRules   string   `json:"usage_rules,omitempty"`
	Validity     string   `json:"validity"`
	OpeningHours string   `json:"opening_hours,omitempty"`

	// Enrichment output, owned by the row's processing task.
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	PhotoURL    string   `json:"photo_url,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	RatingCount int      `json:"rating_count,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (e *Establishment) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// HasAddress reports whether the establishment carries enough address data
// for geocoding.
func (e *Establishment) HasAddress() bool {
	return e.Street != "" && e.City != "" && e.State != ""
}

// EstablishmentRef identifies a stored establishment still missing
// coordinates, as returned by the sweep query.
type EstablishmentRef struct {
	ID           int64
	Name         string
	Street       string
	Number       string
	Neighborhood string
	City         string
	State        string
	CEP          string
}
