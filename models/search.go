package models

import (
	"strings"
	"time"
)

type CabinClass string

const (
	CabinEconomy        CabinClass = "Economy"
	CabinPremiumEconomy CabinClass = "Premium Economy"
	CabinBusiness       CabinClass = "Business"
	CabinFirst          CabinClass = "First"
)

var CabinClasses = []CabinClass{CabinEconomy, CabinPremiumEconomy, CabinBusiness, CabinFirst}

// CabinClassNames joins the cabin display names for user-facing messages.
func CabinClassNames() string {
	names := make([]string, len(CabinClasses))
	for i, c := range CabinClasses {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// ParseCabinClass accepts display names as well as provider codes such as
// PREMIUM_ECONOMY. Unknown values report false.
func ParseCabinClass(s string) (CabinClass, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	switch norm {
	case "economy":
		return CabinEconomy, true
	case "premium economy", "premium":
		return CabinPremiumEconomy, true
	case "business":
		return CabinBusiness, true
	case "first":
		return CabinFirst, true
	}
	return "", false
}

// ProviderCode is the travelClass value the flight provider expects.
func (c CabinClass) ProviderCode() string {
	switch c {
	case CabinPremiumEconomy:
		return "PREMIUM_ECONOMY"
	case CabinBusiness:
		return "BUSINESS"
	case CabinFirst:
		return "FIRST"
	}
	return "ECONOMY"
}

const DateLayout = "2006-01-02"

type SearchParams struct {
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	DepartureDate string     `json:"departureDate,omitempty"` // YYYY-MM-DD, empty until set
	ReturnDate    string     `json:"returnDate,omitempty"`
	Passengers    int        `json:"passengers"`
	CabinClass    CabinClass `json:"cabinClass"`
}

func DefaultSearchParams() SearchParams {
	return SearchParams{Passengers: 1, CabinClass: CabinEconomy}
}

// Complete reports whether origin, destination and departure date are set.
func (p SearchParams) Complete() bool {
	return strings.TrimSpace(p.Origin) != "" &&
		strings.TrimSpace(p.Destination) != "" &&
		strings.TrimSpace(p.DepartureDate) != ""
}

// ParamsPatch is a partial update; nil fields are left untouched.
type ParamsPatch struct {
	Origin        *string     `json:"origin,omitempty"`
	Destination   *string     `json:"destination,omitempty"`
	DepartureDate *string     `json:"departureDate,omitempty"`
	ReturnDate    *string     `json:"returnDate,omitempty"`
	Passengers    *int        `json:"passengers,omitempty"`
	CabinClass    *CabinClass `json:"cabinClass,omitempty"`
}

// Merge applies the patch over p and returns the result.
func (p SearchParams) Merge(patch ParamsPatch) SearchParams {
	if patch.Origin != nil {
		p.Origin = strings.ToUpper(strings.TrimSpace(*patch.Origin))
	}
	if patch.Destination != nil {
		p.Destination = strings.ToUpper(strings.TrimSpace(*patch.Destination))
	}
	if patch.DepartureDate != nil {
		p.DepartureDate = normalizeDate(*patch.DepartureDate)
	}
	if patch.ReturnDate != nil {
		p.ReturnDate = normalizeDate(*patch.ReturnDate)
	}
	if patch.Passengers != nil {
		p.Passengers = *patch.Passengers
	}
	if patch.CabinClass != nil {
		p.CabinClass = *patch.CabinClass
	}
	return p
}

// normalizeDate trims full ISO timestamps down to the calendar date.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(DateLayout)
	}
	return s
}
