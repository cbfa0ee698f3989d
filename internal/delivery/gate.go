// Package delivery decides whether an order's delivery point lies inside
// the configured delivery radius.
package delivery

import (
	"fmt"
	"math"
)

const (
	earthRadiusMeters = 6371000.0
	metersPerMile     = 1609.344
)

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether p holds finite, in-range coordinates.
func (p Point) Valid() bool {
	return finite(p.Lat) && finite(p.Lng) &&
		p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Decision is the outcome of a radius check.
type Decision string

const (
	DecisionAllow            Decision = "allow"
	DecisionReject           Decision = "reject"
	DecisionQueueForApproval Decision = "queue_for_approval"
)

// Result carries the decision and the raw distance. Skipped is set when the
// check did not run because settings or coordinates were missing.
type Result struct {
	Decision      Decision
	DistanceMiles float64
	AllowedMiles  float64
	Skipped       bool
}

// DistanceMiles is the haversine great-circle distance between a and b.
func DistanceMiles(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c / metersPerMile
}

// Evaluate compares the candidate's distance from origin with radiusMiles.
// A point exactly on the radius is allowed.
func Evaluate(origin Point, radiusMiles float64, candidate Point, requestApproval bool) Result {
	distance := DistanceMiles(origin, candidate)
	res := Result{DistanceMiles: distance, AllowedMiles: radiusMiles}
	switch {
	case distance <= radiusMiles:
		res.Decision = DecisionAllow
	case requestApproval:
		res.Decision = DecisionQueueForApproval
	default:
		res.Decision = DecisionReject
	}
	return res
}

// RoundMiles rounds a distance to one decimal for user-facing messages.
func RoundMiles(miles float64) float64 {
	return math.Round(miles*10) / 10
}

// Settings is the delivery origin and allowed radius.
type Settings struct {
	HomeAddress string
	Home        Point
	RadiusMiles float64
}

// Validate reports why s cannot drive the gate.
func (s Settings) Validate() error {
	if !s.Home.Valid() {
		return fmt.Errorf("delivery: invalid home location %v,%v", s.Home.Lat, s.Home.Lng)
	}
	if !finite(s.RadiusMiles) || s.RadiusMiles < 0 {
		return fmt.Errorf("delivery: invalid radius %v", s.RadiusMiles)
	}
	return nil
}

// Gate holds optional settings. The zero Gate is disabled and allows
// every order, so radius enforcement only happens once configured.
type Gate struct {
	settings Settings
	enabled  bool
}

// Disabled returns a gate that never runs the check.
func Disabled() Gate { return Gate{} }

// NewGate returns an enabled gate for valid settings.
func NewGate(s Settings) (Gate, error) {
	if err := s.Validate(); err != nil {
		return Gate{}, err
	}
	return Gate{settings: s, enabled: true}, nil
}

// Enabled reports whether the gate has settings.
func (g Gate) Enabled() bool { return g.enabled }

// Settings returns the settings and whether they are present.
func (g Gate) Settings() (Settings, bool) { return g.settings, g.enabled }

// Check evaluates candidate against the gate. A disabled gate, a nil
// candidate or an unusable coordinate skips the check and allows.
func (g Gate) Check(candidate *Point, requestApproval bool) Result {
	if !g.enabled || candidate == nil || !candidate.Valid() {
		return Result{Decision: DecisionAllow, Skipped: true}
	}
	return Evaluate(g.settings.Home, g.settings.RadiusMiles, *candidate, requestApproval)
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
