// Package filters narrows and orders a loaded flight result set.
package filters

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"flightdeck/models"
	"flightdeck/pricing"
)

type predicate func(f models.Flight, s State, basis pricing.Basis) bool

var predicates = []predicate{
	matchPrice,
	matchStops,
	matchAirlines,
	matchTimeRange,
}

// ApplyFilters returns the flights passing every active filter, in input order.
// Prices are compared as effective prices under basis.
func ApplyFilters(all []models.Flight, s State, basis pricing.Basis) []models.Flight {
	out := make([]models.Flight, 0, len(all))
	for _, f := range all {
		if Match(f, s, basis) {
			out = append(out, f)
		}
	}
	return out
}

func Match(f models.Flight, s State, basis pricing.Basis) bool {
	for _, p := range predicates {
		if !p(f, s, basis) {
			return false
		}
	}
	return true
}

func matchPrice(f models.Flight, s State, basis pricing.Basis) bool {
	return basis.Price(f) <= s.MaxPrice
}

func matchStops(f models.Flight, s State, _ pricing.Basis) bool {
	if len(s.Stops) == 0 {
		return true
	}
	for _, n := range s.Stops {
		if n == f.Stops || (n >= 2 && f.Stops >= 2) {
			return true
		}
	}
	return false
}

func matchAirlines(f models.Flight, s State, _ pricing.Basis) bool {
	if len(s.Airlines) == 0 {
		return true
	}
	for _, code := range s.Airlines {
		if strings.EqualFold(code, f.Airline.Code) {
			return true
		}
	}
	return false
}

func matchTimeRange(f models.Flight, s State, _ pricing.Basis) bool {
	if s.TimeRange == TimeAll || s.TimeRange == "" {
		return true
	}
	dep := f.Departure.Time()
	if dep.IsZero() {
		return false
	}
	return s.TimeRange.Contains(dep.Hour())
}

// ─── Sorting ──────────────────────────────────────────────────────────────────

type SortKey string

const (
	SortPrice     SortKey = "price"
	SortDuration  SortKey = "duration"
	SortDeparture SortKey = "departure"
	SortStops     SortKey = "stops"
)

type comparator func(basis pricing.Basis, a, b models.Flight) int

var comparators = map[SortKey]comparator{
	SortPrice: func(basis pricing.Basis, a, b models.Flight) int {
		return cmp.Compare(basis.Price(a), basis.Price(b))
	},
	SortDuration: func(_ pricing.Basis, a, b models.Flight) int {
		return cmp.Compare(a.Duration, b.Duration)
	},
	SortDeparture: func(_ pricing.Basis, a, b models.Flight) int {
		return a.Departure.Time().Compare(b.Departure.Time())
	},
	SortStops: func(_ pricing.Basis, a, b models.Flight) int {
		return cmp.Compare(a.Stops, b.Stops)
	},
}

func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortPrice, nil
	}
	key := SortKey(strings.ToLower(s))
	if _, ok := comparators[key]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSort, s)
	}
	return key, nil
}

// SortFlights returns a stably sorted copy of flights, ascending by key.
// Prices compare as effective prices under basis. Unknown keys keep the
// input order.
func SortFlights(flights []models.Flight, key SortKey, basis pricing.Basis) []models.Flight {
	out := slices.Clone(flights)
	if out == nil {
		out = []models.Flight{}
	}
	if compare, ok := comparators[key]; ok {
		slices.SortStableFunc(out, func(a, b models.Flight) int {
			return compare(basis, a, b)
		})
	}
	return out
}
