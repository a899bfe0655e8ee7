package filters

import (
	"cmp"
	"math"
	"slices"

	"flightdeck/models"
	"flightdeck/pricing"
)

type AirlineFacet struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// AirlineFacets lists the distinct airlines of flights, most frequent first.
func AirlineFacets(flights []models.Flight) []AirlineFacet {
	index := map[string]int{}
	facets := []AirlineFacet{}
	for _, f := range flights {
		if i, ok := index[f.Airline.Code]; ok {
			facets[i].Count++
			continue
		}
		index[f.Airline.Code] = len(facets)
		facets = append(facets, AirlineFacet{Code: f.Airline.Code, Name: f.Airline.Name, Count: 1})
	}
	slices.SortStableFunc(facets, func(a, b AirlineFacet) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return facets
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// EffectivePriceRange is the floor/ceiling of effective prices; an empty set
// yields the default slider range.
func EffectivePriceRange(flights []models.Flight, basis pricing.Basis) PriceRange {
	if len(flights) == 0 {
		return PriceRange{Min: 0, Max: 3000}
	}
	lo := math.Inf(1)
	for _, f := range flights {
		lo = math.Min(lo, basis.Price(f))
	}
	return PriceRange{Min: math.Floor(lo), Max: pricing.PriceCeiling(flights, basis)}
}

type ChartPoint struct {
	Time     string  `json:"time"`
	Price    float64 `json:"price"`
	Airline  string  `json:"airline"`
	Stops    int     `json:"stops"`
	FullDate string  `json:"fullDate"`
}

type Chart struct {
	Points  []ChartPoint `json:"points"`
	Lowest  float64      `json:"lowest"`
	Highest float64      `json:"highest"`
	Average float64      `json:"average"`
}

// PriceChart plots effective prices in departure order.
func PriceChart(flights []models.Flight, basis pricing.Basis) Chart {
	ordered := SortFlights(flights, SortDeparture, basis)
	chart := Chart{Points: make([]ChartPoint, 0, len(ordered))}
	if len(ordered) == 0 {
		return chart
	}

	sum := 0.0
	chart.Lowest = math.Inf(1)
	for _, f := range ordered {
		price := basis.Price(f)
		label := ""
		if t := f.Departure.Time(); !t.IsZero() {
			label = t.Format("15:04")
		}
		chart.Points = append(chart.Points, ChartPoint{
			Time:     label,
			Price:    price,
			Airline:  f.Airline.Name,
			Stops:    f.Stops,
			FullDate: f.Departure.At,
		})
		sum += price
		chart.Lowest = math.Min(chart.Lowest, price)
		chart.Highest = math.Max(chart.Highest, price)
	}
	chart.Average = math.Round(sum / float64(len(ordered)))
	return chart
}
