package filters

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownFilter = errors.New("unknown filter")
	ErrUnknownSort   = errors.New("unknown sort key")
)

// DefaultMaxPrice is the price ceiling before any result set is loaded.
const DefaultMaxPrice = 2000

type TimeRange string

const (
	TimeAll       TimeRange = "all"
	TimeMorning   TimeRange = "morning"
	TimeAfternoon TimeRange = "afternoon"
	TimeEvening   TimeRange = "evening"
)

func ParseTimeRange(s string) (TimeRange, error) {
	switch tr := TimeRange(strings.ToLower(strings.TrimSpace(s))); tr {
	case TimeAll, TimeMorning, TimeAfternoon, TimeEvening:
		return tr, nil
	case "":
		return TimeAll, nil
	}
	return "", fmt.Errorf("invalid time range %q", s)
}

// Contains reports whether a departure hour (0-23) falls in the bucket.
// Hours 0-4 belong to no named bucket.
func (tr TimeRange) Contains(hour int) bool {
	switch tr {
	case TimeMorning:
		return hour >= 5 && hour < 12
	case TimeAfternoon:
		return hour >= 12 && hour < 18
	case TimeEvening:
		return hour >= 18 && hour < 24
	}
	return true
}

// State is the user's narrowing of a result set.
type State struct {
	MaxPrice float64 `json:"maxPrice"`
	// Stops is nil for no restriction. Any value >= 2 means "2 or more".
	Stops     []int     `json:"stops"`
	Airlines  []string  `json:"airlines"`
	TimeRange TimeRange `json:"timeRange"`
}

func Defaults() State {
	return State{
		MaxPrice:  DefaultMaxPrice,
		Stops:     nil,
		Airlines:  []string{},
		TimeRange: TimeAll,
	}
}

// Clone returns a copy sharing no slices with s.
func (s State) Clone() State {
	s.Stops = cloneInts(s.Stops)
	s.Airlines = append([]string{}, s.Airlines...)
	return s
}

// With returns a copy of s with u applied.
func (s State) With(u Update) State {
	s = s.Clone()
	u.apply(&s)
	return s
}

// ─── Updates ──────────────────────────────────────────────────────────────────

type Key string

const (
	KeyMaxPrice  Key = "maxPrice"
	KeyStops     Key = "stops"
	KeyAirlines  Key = "airlines"
	KeyTimeRange Key = "timeRange"
)

// Update is one filter change. The set of implementations is closed.
type Update interface {
	Key() Key
	apply(*State)
}

type MaxPrice float64

func (MaxPrice) Key() Key { return KeyMaxPrice }
func (v MaxPrice) apply(s *State) { s.MaxPrice = float64(v) }

// Stops replaces the stop-count allow-list; nil clears the restriction.
type Stops []int

func (Stops) Key() Key { return KeyStops }
func (v Stops) apply(s *State) { s.Stops = cloneInts(v) }

type Airlines []string

func (Airlines) Key() Key { return KeyAirlines }
func (v Airlines) apply(s *State) {
	s.Airlines = make([]string, 0, len(v))
	for _, code := range v {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			s.Airlines = append(s.Airlines, code)
		}
	}
}

type TimeOfDay TimeRange

func (TimeOfDay) Key() Key { return KeyTimeRange }
func (v TimeOfDay) apply(s *State) { s.TimeRange = TimeRange(v) }

// ParseUpdate decodes a JSON value for the named filter.
func ParseUpdate(key string, raw json.RawMessage) (Update, error) {
	switch Key(key) {
	case KeyMaxPrice:
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("maxPrice: %w", err)
		}
		if v < 0 {
			return nil, fmt.Errorf("maxPrice must not be negative")
		}
		return MaxPrice(v), nil
	case KeyStops:
		var v []int
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("stops: %w", err)
		}
		for _, n := range v {
			if n < 0 {
				return nil, fmt.Errorf("stops must not be negative")
			}
		}
		return Stops(v), nil
	case KeyAirlines:
		var v []string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("airlines: %w", err)
		}
		return Airlines(v), nil
	case KeyTimeRange:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("timeRange: %w", err)
		}
		tr, err := ParseTimeRange(v)
		if err != nil {
			return nil, err
		}
		return TimeOfDay(tr), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, key)
}

func cloneInts(in []int) []int {
	if in == nil {
		return nil
	}
	return append([]int{}, in...)
}
