package domain

import "time"

// Derived, read-only location of a vehicle along its route.
// ETAs are in simulated minutes; nil means unknown (the vehicle is not moving).
type Position struct {
	Coordinates             Coordinates
	HeadingDegrees          float64
	WaypointIndex           int
	ProgressPercentage      float64
	DistanceToNextStopKm    float64
	NextStopETAMinutes      *float64
	ETAToDestinationMinutes *float64
	AtWaypoint              bool
}

// Decorative conditions reported alongside each vehicle.
// They never feed back into movement.
type Environment struct {
	Weather          string
	TemperatureC     float64
	TrafficCondition string
}

// Immutable copy of one vehicle at the instant a tick committed.
type VehicleSnapshot struct {
	VehicleID     string
	VehicleNumber string
	RouteID       string
	RouteName     string
	Capacity      int
	Driver        DriverInfo
	State         RuntimeState
	Position      Position
	Environment   Environment
	Timestamp     time.Time
}

// LoadPercentage is the share of capacity currently occupied.
func (s VehicleSnapshot) LoadPercentage() float64 {
	if s.Capacity <= 0 {
		return 0
	}
	return 100 * float64(s.State.PassengerLoad) / float64(s.Capacity)
}

// A consistent view of every simulated vehicle at one instant.
// A LiveSnapshot is never mutated after it is committed; the next tick
// replaces it wholesale.
type LiveSnapshot struct {
	Tick      uint64
	Timestamp time.Time
	Vehicles  []VehicleSnapshot
}
