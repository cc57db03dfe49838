package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Represents a single point along a route's geometry.
// CumulativeKm is the distance travelled along the route from the first
// waypoint to this one and is filled in by NewRoute.
type Waypoint struct {
	Name         string
	Coordinates  Coordinates
	CumulativeKm float64
	Order        int
}

// Represents the geometry a vehicle runs along.
// A Route is immutable once built: the simulation only ever reads it, which
// lets every vehicle on the route share the same value without locking.
type Route struct {
	ID                string
	Name              string
	Waypoints         []Waypoint
	TotalDistanceKm   float64
	EstimatedDuration time.Duration
}

// NewRoute orders the waypoints and precomputes cumulative segment lengths.
func NewRoute(id, name string, waypoints []Waypoint, estimated time.Duration) (*Route, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("new route: id must be non-empty: %w", ErrInvalidArgument)
	}

	if len(waypoints) < 2 {
		return nil, fmt.Errorf("new route %q: need at least 2 waypoints, got %d: %w", id, len(waypoints), ErrInvalidArgument)
	}

	wps := make([]Waypoint, len(waypoints))
	copy(wps, waypoints)
	sort.SliceStable(wps, func(i, j int) bool { return wps[i].Order < wps[j].Order })

	cum := 0.0
	for i := range wps {
		if !wps[i].Coordinates.Finite() {
			return nil, fmt.Errorf("new route %q: waypoint %d has non-finite coordinates: %w", id, i, ErrInvalidArgument)
		}
		if i > 0 {
			cum += wps[i-1].Coordinates.DistanceKm(wps[i].Coordinates)
		}
		wps[i].CumulativeKm = cum
		wps[i].Order = i
	}

	if !validTotal(cum) {
		return nil, fmt.Errorf("new route %q: total distance must be positive: %w", id, ErrInvalidArgument)
	}

	return &Route{
		ID:                id,
		Name:              name,
		Waypoints:         wps,
		TotalDistanceKm:   cum,
		EstimatedDuration: estimated,
	}, nil
}

// Validate reports whether the route can be simulated.
func (r *Route) Validate() error {
	if r == nil {
		return fmt.Errorf("route is nil: %w", ErrInvalidArgument)
	}
	if len(r.Waypoints) < 2 {
		return fmt.Errorf("route %q has %d waypoints: %w", r.ID, len(r.Waypoints), ErrInvalidArgument)
	}
	if !validTotal(r.TotalDistanceKm) {
		return fmt.Errorf("route %q has invalid total distance %v: %w", r.ID, r.TotalDistanceKm, ErrInvalidArgument)
	}
	for i, wp := range r.Waypoints {
		if !wp.Coordinates.Finite() {
			return fmt.Errorf("route %q waypoint %d has non-finite coordinates: %w", r.ID, i, ErrInvalidArgument)
		}
	}
	return nil
}

func validTotal(km float64) bool { return km > 0 && !math.IsInf(km, 1) }

// WaypointIndexAt returns the index of the waypoint with the greatest
// cumulative distance not exceeding distanceKm.
func (r *Route) WaypointIndexAt(distanceKm float64) int {
	n := len(r.Waypoints)
	if n == 0 {
		return 0
	}

	// First waypoint strictly beyond distanceKm; the one before it is ours.
	i := sort.Search(n, func(i int) bool { return r.Waypoints[i].CumulativeKm > distanceKm })
	if i == 0 {
		return 0
	}
	return i - 1
}

// Final reports the terminal waypoint.
func (r *Route) Final() Waypoint { return r.Waypoints[len(r.Waypoints)-1] }
