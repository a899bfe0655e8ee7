// Package store holds the state of one flight search session: parameters,
// the loaded result set, filter selections and the derived filtered view.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"

	"flightdeck/filters"
	"flightdeck/models"
	"flightdeck/pricing"
)

// MsgIncompleteSearch is the user-facing validation message.
const MsgIncompleteSearch = "Please select origin, destination and date."

const msgSearchFailed = "Failed to fetch flights"

var (
	ErrIncompleteSearch = errors.New("origin, destination and departure date are required")
	// ErrSuperseded is returned when a newer search was issued while this one
	// was in flight; its result is discarded.
	ErrSuperseded = errors.New("search superseded by a newer request")
)

// FlightSearcher is the flight search provider.
type FlightSearcher interface {
	SearchFlights(ctx context.Context, params models.SearchParams) ([]models.Flight, error)
}

// LocationSearcher is the location lookup provider.
type LocationSearcher interface {
	SearchLocations(ctx context.Context, keyword string) ([]models.Location, error)
}

type Store struct {
	mu        sync.RWMutex
	flights   FlightSearcher
	locations LocationSearcher

	params   models.SearchParams
	all      []models.Flight
	filtered []models.Flight
	filters  filters.State
	loading  bool
	errMsg   string
	// seq numbers issued searches; only the newest one may write results
	seq uint64
	// searched is the parameter set that produced all
	searched models.SearchParams

	suggestions map[Field]*suggestionSlot
}

func New(flights FlightSearcher, locations LocationSearcher) *Store {
	return &Store{
		flights:     flights,
		locations:   locations,
		params:      models.DefaultSearchParams(),
		all:         []models.Flight{},
		filtered:    []models.Flight{},
		filters:     filters.Defaults(),
		suggestions: map[Field]*suggestionSlot{},
	}
}

// SetSearchParams merges patch into the current parameters. With a loaded
// result set the price ceiling is re-derived for the new pricing basis and
// the filtered view recomputed.
func (s *Store) SetSearchParams(patch models.ParamsPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.params = s.params.Merge(patch)
	if len(s.all) > 0 {
		s.filters.MaxPrice = pricing.PriceCeiling(s.all, s.basis())
	}
	s.recompute()
}

// SearchFlights queries the provider with the current parameters. Missing
// origin, destination or date fails fast without a provider call. A failed
// search keeps the previously loaded flights and records the error, except
// for a canceled ctx, which is only returned.
func (s *Store) SearchFlights(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	ticket := s.seq
	s.errMsg = ""
	if !s.params.Complete() {
		s.loading = false
		s.errMsg = MsgIncompleteSearch
		s.mu.Unlock()
		return ErrIncompleteSearch
	}
	s.loading = true
	params := s.params
	s.mu.Unlock()

	flights, err := s.flights.SearchFlights(ctx, params)

	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket != s.seq {
		log.Printf("⏭️  Discarding stale search %d (latest %d)", ticket, s.seq)
		return ErrSuperseded
	}
	s.loading = false

	if err != nil {
		// the caller went away; nobody is left to show the error to
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("flight search: %w", err)
		}
		s.errMsg = err.Error()
		if s.errMsg == "" {
			s.errMsg = msgSearchFailed
		}
		return fmt.Errorf("flight search: %w", err)
	}

	s.searched = params
	if len(flights) == 0 {
		s.all = []models.Flight{}
		s.filtered = []models.Flight{}
		return nil
	}

	loaded := make([]models.Flight, len(flights))
	for i, f := range flights {
		f.Normalize()
		loaded[i] = f
	}
	s.all = loaded
	s.filters.MaxPrice = pricing.PriceCeiling(s.all, s.basis())
	s.recompute()
	return nil
}

// SetFilter applies one filter change and recomputes the view.
func (s *Store) SetFilter(u filters.Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = s.filters.With(u)
	s.recompute()
}

// ResetFilters restores the default filters. The price ceiling follows the
// loaded flights so none of them is hidden by the reset.
func (s *Store) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = filters.Defaults()
	if len(s.all) > 0 {
		s.filters.MaxPrice = pricing.PriceCeiling(s.all, s.basis())
	}
	s.recompute()
}

func (s *Store) basis() pricing.Basis {
	return pricing.BasisOf(s.params)
}

// recompute must be called with mu held.
func (s *Store) recompute() {
	s.filtered = filters.ApplyFilters(s.all, s.filters, s.basis())
}

// ─── Read side ────────────────────────────────────────────────────────────────

type View struct {
	SessionID  string                 `json:"sessionId,omitempty"`
	Params     models.SearchParams    `json:"searchParams"`
	Flights    []models.Flight        `json:"filteredFlights"`
	Total      int                    `json:"totalFlights"`
	IsLoading  bool                   `json:"isLoading"`
	Error      *string                `json:"error"`
	Filters    filters.State          `json:"filters"`
	Sort       filters.SortKey        `json:"sort"`
	Airlines   []filters.AirlineFacet `json:"airlines"`
	PriceRange filters.PriceRange     `json:"priceRange"`
}

// View snapshots the session with the filtered flights ordered by sort.
func (s *Store) View(sort filters.SortKey) View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := View{
		Params:     s.params,
		Flights:    filters.SortFlights(s.filtered, sort, s.basis()),
		Total:      len(s.all),
		IsLoading:  s.loading,
		Filters:    s.filters.Clone(),
		Sort:       sort,
		Airlines:   filters.AirlineFacets(s.all),
		PriceRange: filters.EffectivePriceRange(s.all, s.basis()),
	}
	if s.errMsg != "" {
		msg := s.errMsg
		v.Error = &msg
	}
	return v
}

func (s *Store) Params() models.SearchParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// LastSearch returns the parameters of the last applied search together
// with the flights it loaded. Later parameter edits do not show here.
func (s *Store) LastSearch() (models.SearchParams, []models.Flight) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searched, slices.Clone(s.all)
}

func (s *Store) FilteredFlights() []models.Flight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.filtered)
}

func (s *Store) Filters() filters.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters.Clone()
}

func (s *Store) Chart() filters.Chart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filters.PriceChart(s.filtered, s.basis())
}

// Flight finds a loaded flight by id, filtered out or not.
func (s *Store) Flight(id string) (models.Flight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.all {
		if f.ID == id {
			return f, true
		}
	}
	return models.Flight{}, false
}
