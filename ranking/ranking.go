// Package ranking orders location autocomplete results by how well the query
// names a country.
package ranking

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"flightdeck/models"
)

const (
	ScoreExact    = 1000
	ScorePrefix   = 500
	ScoreContains = 100
	ScoreBaseline = 1

	// A top country at or above strongMatch narrows the output to the best
	// maxCountries countries scoring at least ScoreContains.
	strongMatch  = ScorePrefix
	maxCountries = 3
)

type Result struct {
	Ranked []models.Location `json:"ranked"`
	// MatchedCountry is empty when no country was named by the query.
	MatchedCountry string         `json:"matchedCountry"`
	Scores         map[string]int `json:"scores"`
}

func scoreCountry(country, query string) int {
	if query == "" {
		return ScoreBaseline
	}
	c := strings.ToLower(country)
	switch {
	case c == query:
		return ScoreExact
	case strings.HasPrefix(c, query):
		return ScorePrefix
	case strings.Contains(c, query):
		return ScoreContains
	}
	return ScoreBaseline
}

// RankByCountryRelevance scores every country present in locations against
// query and sorts by country score, then city name. The input is not modified.
func RankByCountryRelevance(locations []models.Location, query string) Result {
	res := Result{Ranked: []models.Location{}, Scores: map[string]int{}}
	if len(locations) == 0 {
		return res
	}

	q := strings.ToLower(strings.TrimSpace(query))
	matchedScore := 0
	for _, loc := range locations {
		s := scoreCountry(loc.Country, q)
		if s > res.Scores[loc.Country] {
			res.Scores[loc.Country] = s
		}
		// first country wins among equals; a stronger match replaces a weaker one
		if s >= ScoreContains && s > matchedScore {
			res.MatchedCountry = loc.Country
			matchedScore = s
		}
	}

	col := collate.New(language.English)
	ranked := slices.Clone(locations)
	slices.SortStableFunc(ranked, func(a, b models.Location) int {
		if d := cmp.Compare(res.Scores[b.Country], res.Scores[a.Country]); d != 0 {
			return d
		}
		return col.CompareString(a.City, b.City)
	})

	if res.Scores[ranked[0].Country] >= strongMatch {
		ranked = keepTopCountries(ranked, res.Scores)
	}
	res.Ranked = ranked
	return res
}

func keepTopCountries(ranked []models.Location, scores map[string]int) []models.Location {
	keep := make(map[string]struct{}, maxCountries)
	for _, loc := range ranked {
		if len(keep) == maxCountries {
			break
		}
		if scores[loc.Country] < ScoreContains {
			break
		}
		keep[loc.Country] = struct{}{}
	}

	out := make([]models.Location, 0, len(ranked))
	for _, loc := range ranked {
		if _, ok := keep[loc.Country]; ok {
			out = append(out, loc)
		}
	}
	return out
}
