package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightdeck/filters"
	"flightdeck/models"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

type searchFunc func(ctx context.Context, p models.SearchParams) ([]models.Flight, error)

func (f searchFunc) SearchFlights(ctx context.Context, p models.SearchParams) ([]models.Flight, error) {
	return f(ctx, p)
}

type lookupFunc func(ctx context.Context, keyword string) ([]models.Location, error)

func (f lookupFunc) SearchLocations(ctx context.Context, keyword string) ([]models.Location, error) {
	return f(ctx, keyword)
}

func returning(flights []models.Flight, err error) (searchFunc, *int32) {
	var calls int32
	return func(context.Context, models.SearchParams) ([]models.Flight, error) {
		atomic.AddInt32(&calls, 1)
		return flights, err
	}, &calls
}

func fl(id string, price float64, stops int, airline string) models.Flight {
	return models.Flight{
		ID:        id,
		Price:     price,
		Stops:     stops,
		Airline:   models.Airline{Code: airline, Name: airline},
		Departure: models.Endpoint{At: "2026-02-15T09:00:00"},
	}
}

func ptr[T any](v T) *T { return &v }

func readyStore(t *testing.T, flights []models.Flight) *Store {
	t.Helper()
	search, _ := returning(flights, nil)
	s := New(search, nil)
	s.SetSearchParams(models.ParamsPatch{
		Origin:        ptr("JFK"),
		Destination:   ptr("LHR"),
		DepartureDate: ptr("2026-02-15"),
	})
	require.NoError(t, s.SearchFlights(context.Background()))
	return s
}

func ids(flights []models.Flight) []string {
	out := make([]string, 0, len(flights))
	for _, f := range flights {
		out = append(out, f.ID)
	}
	return out
}

// ---------------------------------------------------------------------------
// SearchFlights
// ---------------------------------------------------------------------------

func TestSearchFlights_MissingOriginFailsFast(t *testing.T) {
	search, calls := returning([]models.Flight{fl("a", 100, 0, "BA")}, nil)
	s := New(search, nil)
	s.SetSearchParams(models.ParamsPatch{Origin: ptr(""), Destination: ptr("LHR"), DepartureDate: ptr("2026-02-15")})

	err := s.SearchFlights(context.Background())

	assert.ErrorIs(t, err, ErrIncompleteSearch)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
	v := s.View(filters.SortPrice)
	require.NotNil(t, v.Error)
	assert.Equal(t, "Please select origin, destination and date.", *v.Error)
	assert.False(t, v.IsLoading)
}

func TestSearchFlights_LoadsAndDerivesMaxPrice(t *testing.T) {
	s := readyStore(t, []models.Flight{fl("a", 120.4, 0, "BA"), fl("b", 310.2, 1, "LH")})

	v := s.View(filters.SortPrice)
	assert.Nil(t, v.Error)
	assert.False(t, v.IsLoading)
	assert.Equal(t, 2, v.Total)
	assert.Equal(t, 311.0, v.Filters.MaxPrice)
	assert.Equal(t, []string{"a", "b"}, ids(v.Flights))
}

func TestSearchFlights_EmptyResultIsNotAnError(t *testing.T) {
	s := readyStore(t, []models.Flight{fl("a", 100, 0, "BA")})
	s.flights, _ = returning([]models.Flight{}, nil)

	require.NoError(t, s.SearchFlights(context.Background()))

	v := s.View(filters.SortPrice)
	assert.Nil(t, v.Error)
	assert.Empty(t, v.Flights)
	assert.Equal(t, 0, v.Total)
}

func TestSearchFlights_FailureKeepsPreviousFlights(t *testing.T) {
	s := readyStore(t, []models.Flight{fl("a", 100, 0, "BA")})
	s.flights, _ = returning(nil, errors.New("amadeus error (500): upstream down"))

	err := s.SearchFlights(context.Background())

	require.Error(t, err)
	v := s.View(filters.SortPrice)
	require.NotNil(t, v.Error)
	assert.Equal(t, "amadeus error (500): upstream down", *v.Error)
	assert.False(t, v.IsLoading)
	assert.Equal(t, []string{"a"}, ids(v.Flights))
}

func TestSearchFlights_NormalizesSegments(t *testing.T) {
	f := fl("multi", 300, 0, "BA")
	f.Segments = []models.Segment{
		{ID: "1", Departure: models.Endpoint{At: "2026-02-15T08:00:00"}, Arrival: models.Endpoint{At: "2026-02-15T09:00:00"}, Duration: 60},
		{ID: "2", Departure: models.Endpoint{At: "2026-02-15T10:00:00"}, Arrival: models.Endpoint{At: "2026-02-15T11:30:00"}, Duration: 90},
	}
	s := readyStore(t, []models.Flight{f})

	got, ok := s.Flight("multi")
	require.True(t, ok)
	assert.Equal(t, 1, got.Stops)
	assert.Equal(t, 210, got.Duration)
}

func TestSearchFlights_LastIssuedRequestWins(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var call int32

	s := New(searchFunc(func(ctx context.Context, p models.SearchParams) ([]models.Flight, error) {
		if atomic.AddInt32(&call, 1) == 1 {
			close(started)
			<-release
			return []models.Flight{fl("stale", 50, 0, "BA")}, nil
		}
		return []models.Flight{fl("fresh", 80, 0, "LH")}, nil
	}), nil)
	s.SetSearchParams(models.ParamsPatch{Origin: ptr("JFK"), Destination: ptr("LHR"), DepartureDate: ptr("2026-02-15")})

	firstDone := make(chan error, 1)
	go func() { firstDone <- s.SearchFlights(context.Background()) }()
	<-started

	assert.True(t, s.View(filters.SortPrice).IsLoading)
	require.NoError(t, s.SearchFlights(context.Background()))

	close(release)
	select {
	case err := <-firstDone:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("first search never returned")
	}

	v := s.View(filters.SortPrice)
	assert.Equal(t, []string{"fresh"}, ids(v.Flights))
	assert.False(t, v.IsLoading)
}

func TestSearchFlights_CanceledKeepsStateWithoutError(t *testing.T) {
	s := readyStore(t, []models.Flight{fl("a", 100, 0, "BA")})
	ctx, cancel := context.WithCancel(context.Background())
	s.flights = searchFunc(func(ctx context.Context, _ models.SearchParams) ([]models.Flight, error) {
		cancel()
		return nil, ctx.Err()
	})

	err := s.SearchFlights(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	v := s.View(filters.SortPrice)
	assert.Nil(t, v.Error)
	assert.False(t, v.IsLoading)
	assert.Equal(t, []string{"a"}, ids(v.Flights))
}

func TestLastSearch_IgnoresLaterParamEdits(t *testing.T) {
	s := readyStore(t, []models.Flight{fl("a", 100, 0, "BA")})
	s.SetSearchParams(models.ParamsPatch{Destination: ptr("CDG")})

	params, flights := s.LastSearch()

	assert.Equal(t, "LHR", params.Destination)
	assert.Equal(t, "JFK", params.Origin)
	assert.Equal(t, []string{"a"}, ids(flights))
	assert.Equal(t, "CDG", s.Params().Destination)
}

func TestLastSearch_FailedSearchKeepsPreviousParams(t *testing.T) {
	s := readyStore(t, []models.Flight{fl("a", 100, 0, "BA")})
	s.SetSearchParams(models.ParamsPatch{Destination: ptr("CDG")})
	s.flights, _ = returning(nil, errors.New("amadeus error (500): upstream down"))

	require.Error(t, s.SearchFlights(context.Background()))

	params, _ := s.LastSearch()
	assert.Equal(t, "LHR", params.Destination)
}

// ---------------------------------------------------------------------------
// Params and filters
// ---------------------------------------------------------------------------

func TestSetSearchParams_RederivesMaxPrice(t *testing.T) {
	s := readyStore(t, []models.Flight{fl("a", 100, 0, "BA"), fl("b", 250, 0, "BA")})
	require.Equal(t, 250.0, s.Filters().MaxPrice)

	s.SetSearchParams(models.ParamsPatch{Passengers: ptr(2), CabinClass: ptr(models.CabinBusiness)})

	// 250 * 2 * 1.9
	assert.Equal(t, 950.0, s.Filters().MaxPrice)
	assert.Equal(t, []string{"a", "b"}, ids(s.FilteredFlights()), "no flight is clipped by the new basis")
	assert.Equal(t, "JFK", s.Params().Origin)
}

func TestSetSearchParams_WithoutFlightsKeepsDefaultCeiling(t *testing.T) {
	s := New(nil, nil)
	s.SetSearchParams(models.ParamsPatch{Passengers: ptr(4)})
	assert.Equal(t, float64(filters.DefaultMaxPrice), s.Filters().MaxPrice)
}

func TestSetFilter_RecomputesImmediately(t *testing.T) {
	s := readyStore(t, []models.Flight{
		fl("a", 120, 0, "BA"),
		fl("b", 95, 1, "LH"),
		fl("c", 140, 0, "LH"),
		fl("d", 95, 2, "BA"),
	})

	s.SetFilter(filters.MaxPrice(150))
	s.SetFilter(filters.Stops{0})
	assert.Equal(t, []string{"a", "c"}, ids(s.FilteredFlights()))

	s.SetFilter(filters.Airlines{"LH"})
	assert.Equal(t, []string{"c"}, ids(s.FilteredFlights()))

	s.SetFilter(filters.Stops(nil))
	assert.Equal(t, []string{"b", "c"}, ids(s.FilteredFlights()))
}

func TestResetFilters(t *testing.T) {
	s := readyStore(t, []models.Flight{fl("a", 2400, 0, "BA"), fl("b", 95, 1, "LH")})
	s.SetFilter(filters.Stops{1})
	s.SetFilter(filters.TimeOfDay(filters.TimeEvening))
	require.Empty(t, s.FilteredFlights())

	s.ResetFilters()

	st := s.Filters()
	assert.Nil(t, st.Stops)
	assert.Empty(t, st.Airlines)
	assert.Equal(t, filters.TimeAll, st.TimeRange)
	assert.Equal(t, 2400.0, st.MaxPrice, "reset never hides a loaded flight")
	assert.Equal(t, []string{"a", "b"}, ids(s.FilteredFlights()))
}

func TestView_SortsAndSummarizes(t *testing.T) {
	s := readyStore(t, []models.Flight{
		fl("a", 300, 0, "BA"),
		fl("b", 95, 1, "LH"),
		fl("c", 95, 0, "LH"),
	})

	v := s.View(filters.SortPrice)

	assert.Equal(t, []string{"b", "c", "a"}, ids(v.Flights))
	require.Len(t, v.Airlines, 2)
	assert.Equal(t, "LH", v.Airlines[0].Code)
	assert.Equal(t, filters.PriceRange{Min: 95, Max: 300}, v.PriceRange)
	assert.Len(t, s.Chart().Points, 3)
}

// ---------------------------------------------------------------------------
// Suggestions
// ---------------------------------------------------------------------------

func TestSuggest_RanksAndRecords(t *testing.T) {
	s := New(nil, lookupFunc(func(ctx context.Context, kw string) ([]models.Location, error) {
		return []models.Location{
			{Code: "FRA", City: "Frankfurt", Country: "Germany"},
			{Code: "CDG", City: "Paris", Country: "France"},
		}, nil
	}))

	res, applied := s.Suggest(context.Background(), FieldDestination, "france")

	assert.True(t, applied)
	assert.Equal(t, "France", res.MatchedCountry)
	assert.Equal(t, res, s.Suggestions(FieldDestination))
	assert.Empty(t, s.Suggestions(FieldOrigin).Ranked)
}

func TestSuggest_ErrorsDegradeToEmpty(t *testing.T) {
	s := New(nil, lookupFunc(func(ctx context.Context, kw string) ([]models.Location, error) {
		return nil, errors.New("401 unauthorized")
	}))

	res, applied := s.Suggest(context.Background(), FieldOrigin, "lon")

	assert.True(t, applied)
	assert.Empty(t, res.Ranked)
	assert.Empty(t, res.MatchedCountry)
}

func TestSuggest_StaleLookupIsNotApplied(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	s := New(nil, lookupFunc(func(ctx context.Context, kw string) ([]models.Location, error) {
		if kw == "lo" {
			close(started)
			<-release
			return []models.Location{{Code: "LOS", City: "Lagos", Country: "Nigeria"}}, nil
		}
		return []models.Location{{Code: "LHR", City: "London", Country: "United Kingdom"}}, nil
	}))

	done := make(chan bool, 1)
	go func() {
		_, applied := s.Suggest(context.Background(), FieldOrigin, "lo")
		done <- applied
	}()
	<-started

	_, applied := s.Suggest(context.Background(), FieldOrigin, "london")
	require.True(t, applied)
	close(release)
	assert.False(t, <-done)

	got := s.Suggestions(FieldOrigin)
	require.Len(t, got.Ranked, 1)
	assert.Equal(t, "LHR", got.Ranked[0].Code)
}

func TestParseField(t *testing.T) {
	f, err := ParseField("destination")
	require.NoError(t, err)
	assert.Equal(t, FieldDestination, f)

	_, err = ParseField("via")
	assert.Error(t, err)
}
