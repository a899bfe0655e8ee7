package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightdeck/models"
)

func loc(code, city, country string) models.Location {
	return models.Location{Code: code, Name: city, City: city, Country: country, Type: models.LocationAirport}
}

func codes(locs []models.Location) []string {
	out := make([]string, 0, len(locs))
	for _, l := range locs {
		out = append(out, l.Code)
	}
	return out
}

func TestRank_PrefixMatch(t *testing.T) {
	input := []models.Location{
		loc("NCE", "Nice", "France"),
		loc("CDG", "Paris", "France"),
		loc("FRA", "Frankfurt", "Germany"),
	}

	res := RankByCountryRelevance(input, "franc")

	assert.Equal(t, "France", res.MatchedCountry)
	assert.Equal(t, ScorePrefix, res.Scores["France"])
	assert.Equal(t, ScoreBaseline, res.Scores["Germany"])
	// Germany scores below ScoreContains, so the strong match narrows it away
	assert.Equal(t, []string{"NCE", "CDG"}, codes(res.Ranked))
}

func TestRank_FranceBeforeGermanyWithoutNarrowing(t *testing.T) {
	input := []models.Location{
		loc("FRA", "Frankfurt", "Germany"),
		loc("CDG", "Paris", "France"),
		loc("NCE", "Nice", "France"),
	}

	res := RankByCountryRelevance(input, "ance")

	assert.Equal(t, "France", res.MatchedCountry, "a contains match is recorded")
	assert.Equal(t, ScoreContains, res.Scores["France"])
	assert.Equal(t, []string{"NCE", "CDG", "FRA"}, codes(res.Ranked), "contains matches do not narrow")
}

func TestRank_ContainsMatchReplacedByStrongerMatch(t *testing.T) {
	input := []models.Location{
		loc("POM", "Port Moresby", "Papua New Guinea"),
		loc("OXB", "Bissau", "Guinea-Bissau"),
		loc("MDC", "Manado", "Indonesia"),
	}

	res := RankByCountryRelevance(input, "guinea")

	assert.Equal(t, "Guinea-Bissau", res.MatchedCountry)

	res = RankByCountryRelevance([]models.Location{
		loc("POM", "Port Moresby", "Papua New Guinea"),
		loc("SSG", "Malabo", "Equatorial Guinea"),
	}, "guinea")

	assert.Equal(t, "Papua New Guinea", res.MatchedCountry, "first country wins among equal scores")
}

func TestRank_ExactOverridesEarlierPrefix(t *testing.T) {
	input := []models.Location{
		loc("OXB", "Bissau", "Guinea-Bissau"),
		loc("POM", "Port Moresby", "Papua New Guinea"),
		loc("CKY", "Conakry", "Guinea"),
	}

	res := RankByCountryRelevance(input, "Guinea")

	assert.Equal(t, "Guinea", res.MatchedCountry)
	assert.Equal(t, ScoreExact, res.Scores["Guinea"])
	assert.Equal(t, ScorePrefix, res.Scores["Guinea-Bissau"])
	assert.Equal(t, ScoreContains, res.Scores["Papua New Guinea"])
	assert.Equal(t, []string{"CKY", "OXB", "POM"}, codes(res.Ranked))
}

func TestRank_ExactMatchWinsOverLargerCountry(t *testing.T) {
	input := []models.Location{
		loc("LOS", "Lagos", "Nigeria"),
		loc("ABV", "Abuja", "Nigeria"),
		loc("KAN", "Kano", "Nigeria"),
		loc("PHC", "Port Harcourt", "Nigeria"),
		loc("NIM", "Niamey", "Niger"),
	}

	res := RankByCountryRelevance(input, "niger")

	assert.Equal(t, "Niger", res.MatchedCountry)
	require.NotEmpty(t, res.Ranked)
	assert.Equal(t, "NIM", res.Ranked[0].Code)
	assert.Equal(t, []string{"NIM", "ABV", "KAN", "LOS", "PHC"}, codes(res.Ranked))
}

func TestRank_NarrowsToTopThreeCountries(t *testing.T) {
	input := []models.Location{
		loc("A1", "Alpha", "Land"),
		loc("B1", "Bravo", "Landia"),
		loc("C1", "Charlie", "Landistan"),
		loc("D1", "Delta", "Lando Republic"),
		loc("E1", "Echo", "Holland"),
	}

	res := RankByCountryRelevance(input, "land")

	assert.Equal(t, "Land", res.MatchedCountry)
	assert.Len(t, res.Ranked, 3)
	assert.Equal(t, "A1", res.Ranked[0].Code)
	for _, l := range res.Ranked {
		assert.NotEqual(t, "Holland", l.Country)
	}
}

func TestRank_WeakQueryKeepsEverything(t *testing.T) {
	input := []models.Location{
		loc("LHR", "London", "United Kingdom"),
		loc("YXU", "London", "Canada"),
		loc("LGW", "London", "United Kingdom"),
	}

	res := RankByCountryRelevance(input, "London")

	assert.Empty(t, res.MatchedCountry)
	assert.Len(t, res.Ranked, 3)
	assert.Equal(t, ScoreBaseline, res.Scores["Canada"])
	// equal keys keep input order
	assert.Equal(t, []string{"LHR", "YXU", "LGW"}, codes(res.Ranked))
}

func TestRank_CityOrderingIsLocaleAware(t *testing.T) {
	input := []models.Location{
		loc("ZRH", "Zurich", "Switzerland"),
		loc("AAR", "Århus", "Denmark"),
		loc("BSL", "basel", "Switzerland"),
	}

	res := RankByCountryRelevance(input, "xyz")

	assert.Equal(t, []string{"AAR", "BSL", "ZRH"}, codes(res.Ranked))
}

func TestRank_Idempotent(t *testing.T) {
	input := []models.Location{
		loc("FRA", "Frankfurt", "Germany"),
		loc("CDG", "Paris", "France"),
		loc("MUC", "Munich", "Germany"),
		loc("NCE", "Nice", "France"),
		loc("VIE", "Vienna", "Austria"),
	}

	for _, q := range []string{"ger", "an", "Austria", "zz"} {
		first := RankByCountryRelevance(input, q)
		second := RankByCountryRelevance(first.Ranked, q)
		assert.Equal(t, codes(first.Ranked), codes(second.Ranked), q)
	}
}

func TestRank_EmptyInput(t *testing.T) {
	res := RankByCountryRelevance(nil, "france")
	assert.Empty(t, res.Ranked)
	assert.NotNil(t, res.Ranked)
	assert.Empty(t, res.MatchedCountry)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	input := []models.Location{loc("B", "Bern", "Switzerland"), loc("A", "Aarau", "Switzerland")}
	_ = RankByCountryRelevance(input, "swi")
	assert.Equal(t, []string{"B", "A"}, codes(input))
}
