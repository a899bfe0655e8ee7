// Package pricing scales a provider base fare to the fare shown for a search.
// The provider is queried once per route and date, so passenger count and
// cabin class are applied here.
package pricing

import (
	"math"

	"flightdeck/models"
)

var cabinMultipliers = map[models.CabinClass]float64{
	models.CabinEconomy:        1,
	models.CabinPremiumEconomy: 1.35,
	models.CabinBusiness:       1.9,
	models.CabinFirst:          2.6,
}

// CabinMultiplier returns the fare multiplier for a cabin. Unknown cabins
// price as Economy.
func CabinMultiplier(cabin models.CabinClass) float64 {
	if m, ok := cabinMultipliers[cabin]; ok {
		return m
	}
	return 1
}

// EffectivePrice is price * max(passengers, 1) * cabin multiplier.
func EffectivePrice(f models.Flight, passengers int, cabin models.CabinClass) float64 {
	if passengers < 1 {
		passengers = 1
	}
	return f.Price * float64(passengers) * CabinMultiplier(cabin)
}

// Basis is the part of the search that affects pricing.
type Basis struct {
	Passengers int
	Cabin      models.CabinClass
}

func BasisOf(p models.SearchParams) Basis {
	return Basis{Passengers: p.Passengers, Cabin: p.CabinClass}
}

func (b Basis) Price(f models.Flight) float64 {
	return EffectivePrice(f, b.Passengers, b.Cabin)
}

// PriceCeiling is the ceiling of the highest effective price in flights, or
// 0 for an empty set.
func PriceCeiling(flights []models.Flight, b Basis) float64 {
	highest := 0.0
	for _, f := range flights {
		if p := b.Price(f); p > highest {
			highest = p
		}
	}
	return math.Ceil(highest)
}
