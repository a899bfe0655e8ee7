package store

import (
	"context"
	"fmt"
	"log"

	"flightdeck/models"
	"flightdeck/ranking"
)

// Field names an autocomplete input of the search form.
type Field string

const (
	FieldOrigin      Field = "origin"
	FieldDestination Field = "destination"
)

func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldOrigin, FieldDestination:
		return f, nil
	case "":
		return FieldOrigin, nil
	}
	return "", fmt.Errorf("unknown field %q", s)
}

type suggestionSlot struct {
	seq    uint64
	result ranking.Result
}

// Suggest looks up keyword and ranks the matches by country relevance.
// Lookup failures degrade to an empty list. The ranked result is recorded
// for field only if no newer lookup for the same field was issued meanwhile;
// applied reports whether that happened.
func (s *Store) Suggest(ctx context.Context, field Field, keyword string) (res ranking.Result, applied bool) {
	s.mu.Lock()
	slot, ok := s.suggestions[field]
	if !ok {
		slot = &suggestionSlot{}
		s.suggestions[field] = slot
	}
	slot.seq++
	ticket := slot.seq
	s.mu.Unlock()

	res = LookupLocations(ctx, s.locations, keyword)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != slot.seq {
		return res, false
	}
	slot.result = res
	return res, true
}

// Suggestions returns the last applied result for field.
func (s *Store) Suggestions(field Field) ranking.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if slot, ok := s.suggestions[field]; ok {
		return slot.result
	}
	return ranking.RankByCountryRelevance(nil, "")
}

// LookupLocations queries the location provider and ranks the matches.
// Errors are logged and yield an empty ranking.
func LookupLocations(ctx context.Context, lookup LocationSearcher, keyword string) ranking.Result {
	var locations []models.Location
	if lookup != nil {
		found, err := lookup.SearchLocations(ctx, keyword)
		if err != nil {
			log.Printf("⚠️  Location lookup for %q failed: %v", keyword, err)
		} else {
			locations = found
		}
	}
	return ranking.RankByCountryRelevance(locations, keyword)
}
