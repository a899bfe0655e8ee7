package models

import (
	"fmt"
	"time"
)

// ─── Flight ───────────────────────────────────────────────────────────────────

type Airport struct {
	Code    string `json:"code"`
	City    string `json:"city"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

type Airline struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// Endpoint is one end of a flight or segment. At is an ISO-8601 timestamp as
// returned by the provider, usually without a UTC offset.
type Endpoint struct {
	Airport Airport `json:"airport"`
	At      string  `json:"at"`
}

// Time parses At. Unparseable timestamps yield the zero time.
func (e Endpoint) Time() time.Time {
	t, err := ParseTimestamp(e.At)
	if err != nil {
		return time.Time{}
	}
	return t
}

type Segment struct {
	ID           string   `json:"id"`
	FlightNumber string   `json:"flightNumber"`
	Airline      Airline  `json:"airline"`
	Departure    Endpoint `json:"departure"`
	Arrival      Endpoint `json:"arrival"`
	Duration     int      `json:"duration"` // minutes
}

type Flight struct {
	ID           string    `json:"id"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	Airline      Airline   `json:"airline"`
	FlightNumber string    `json:"flightNumber"`
	Departure    Endpoint  `json:"departure"`
	Arrival      Endpoint  `json:"arrival"`
	Duration     int       `json:"duration"` // minutes
	Stops        int       `json:"stops"`
	Segments     []Segment `json:"segments"`
	// Source is "estimated" for generated fares, empty for provider data.
	Source string `json:"source,omitempty"`
}

// Layovers returns the idle time between consecutive segments, in minutes.
func (f Flight) Layovers() []int {
	if len(f.Segments) < 2 {
		return nil
	}
	out := make([]int, 0, len(f.Segments)-1)
	for i := 0; i < len(f.Segments)-1; i++ {
		arr := f.Segments[i].Arrival.Time()
		dep := f.Segments[i+1].Departure.Time()
		if arr.IsZero() || dep.IsZero() || dep.Before(arr) {
			out = append(out, 0)
			continue
		}
		out = append(out, int(dep.Sub(arr).Minutes()))
	}
	return out
}

// SegmentsDuration is the sum of leg times plus layovers.
func SegmentsDuration(segments []Segment) int {
	total := 0
	for _, s := range segments {
		total += s.Duration
	}
	for _, l := range (Flight{Segments: segments}).Layovers() {
		total += l
	}
	return total
}

// Normalize sets stops from the segment count and derives a missing
// duration from the segments.
func (f *Flight) Normalize() {
	if len(f.Segments) == 0 {
		if f.Stops < 0 {
			f.Stops = 0
		}
		return
	}
	f.Stops = len(f.Segments) - 1
	if f.Duration <= 0 {
		f.Duration = SegmentsDuration(f.Segments)
	}
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts the timestamp shapes flight providers emit. Offsets
// are kept so Hour() reports the local hour as provided.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// FormatMinutes renders a duration as "5h 30m".
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
