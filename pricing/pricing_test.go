package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"flightdeck/models"
)

func TestEffectivePrice(t *testing.T) {
	f := models.Flight{ID: "f1", Price: 200}

	tests := []struct {
		name       string
		passengers int
		cabin      models.CabinClass
		want       float64
	}{
		{"economy single", 1, models.CabinEconomy, 200},
		{"economy family", 3, models.CabinEconomy, 600},
		{"premium economy", 1, models.CabinPremiumEconomy, 270},
		{"business pair", 2, models.CabinBusiness, 760},
		{"first", 1, models.CabinFirst, 520},
		{"zero passengers floors to one", 0, models.CabinEconomy, 200},
		{"negative passengers floors to one", -4, models.CabinBusiness, 380},
		{"unknown cabin prices as economy", 2, models.CabinClass("Galley"), 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EffectivePrice(f, tt.passengers, tt.cabin), 1e-9)
		})
	}
}

func TestEffectivePrice_EconomySingleIsBaseFare(t *testing.T) {
	for _, price := range []float64{0.01, 95, 120.5, 4999.99} {
		f := models.Flight{Price: price}
		assert.Equal(t, price, EffectivePrice(f, 1, models.CabinEconomy))
	}
}

func TestPriceCeiling(t *testing.T) {
	flights := []models.Flight{{Price: 100.2}, {Price: 310.4}, {Price: 99}}

	assert.Equal(t, 311.0, PriceCeiling(flights, Basis{Passengers: 1, Cabin: models.CabinEconomy}))
	assert.Equal(t, 621.0, PriceCeiling(flights, Basis{Passengers: 2, Cabin: models.CabinEconomy}))
	assert.Equal(t, 0.0, PriceCeiling(nil, Basis{Passengers: 1}))
}
