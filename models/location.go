package models

type LocationType string

const (
	LocationAirport LocationType = "AIRPORT"
	LocationCity    LocationType = "CITY"
)

// Location is an autocomplete result.
type Location struct {
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	City        string       `json:"city"`
	Country     string       `json:"country"`
	CountryCode string       `json:"countryCode,omitempty"`
	Type        LocationType `json:"type"`
}
