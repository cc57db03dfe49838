package domain

import (
	"fmt"
	"time"
)

type OperationalStatus string

const (
	StatusOnRoute   OperationalStatus = "on_route"
	StatusAtStop    OperationalStatus = "at_stop"
	StatusDelayed   OperationalStatus = "delayed"
	StatusBreakdown OperationalStatus = "breakdown"
	StatusOffDuty   OperationalStatus = "off_duty"
)

type DriverInfo struct {
	Name  string
	Phone string
}

// Mutable per-tick state of a vehicle. Only the simulation registry writes it.
type RuntimeState struct {
	DistanceCoveredKm    float64
	CurrentWaypointIndex int
	SpeedKmh             float64
	HeadingDegrees       float64
	PassengerLoad        int
	Status               OperationalStatus
	CurrentDelayMinutes  float64
	DelayReason          *string
	LastTickTimestamp    time.Time

	TripNumber         int
	TripStartedAt      time.Time
	LayoverRemaining   time.Duration
	DelayHoldRemaining time.Duration
}

// A vehicle assigned to run on a single route.
type Vehicle struct {
	VehicleID     string
	RouteID       string
	VehicleNumber string
	Capacity      int
	BaseSpeedKmh  float64
	Driver        DriverInfo

	// Where the vehicle (re)starts after a reset, so vehicles sharing a
	// route are spread along it instead of stacked at the origin.
	StartOffsetKm float64

	State RuntimeState
}

func NewVehicle(id, routeID, number string, capacity int, baseSpeedKmh float64) (*Vehicle, error) {
	if id == "" {
		return nil, fmt.Errorf("new vehicle: id must be non-empty: %w", ErrInvalidArgument)
	}
	if capacity < 1 {
		return nil, fmt.Errorf("new vehicle %q: capacity must be positive (capacity=%d): %w", id, capacity, ErrInvalidArgument)
	}
	if baseSpeedKmh <= 0 {
		return nil, fmt.Errorf("new vehicle %q: base speed must be positive: %w", id, ErrInvalidArgument)
	}

	return &Vehicle{
		VehicleID:     id,
		RouteID:       routeID,
		VehicleNumber: number,
		Capacity:      capacity,
		BaseSpeedKmh:  baseSpeedKmh,
		State:         RuntimeState{Status: StatusOnRoute, TripNumber: 1},
	}, nil
}

// Reset puts the vehicle back at its start offset with an empty cabin.
func (v *Vehicle) Reset(now time.Time) {
	v.State = RuntimeState{
		DistanceCoveredKm: v.StartOffsetKm,
		Status:            StatusOnRoute,
		TripNumber:        1,
		TripStartedAt:     now,
		LastTickTimestamp: now,
	}
}

// Board adds up to n passengers and returns how many actually boarded.
func (v *Vehicle) Board(n int) int {
	if n <= 0 {
		return 0
	}
	remaining := v.Capacity - v.State.PassengerLoad
	if remaining <= 0 {
		return 0
	}
	if n > remaining {
		n = remaining
	}
	v.State.PassengerLoad += n
	v.ClampLoad()
	return n
}

// Alight removes up to n passengers and returns how many actually left.
func (v *Vehicle) Alight(n int) int {
	if n <= 0 {
		return 0
	}
	if n > v.State.PassengerLoad {
		n = v.State.PassengerLoad
	}
	v.State.PassengerLoad -= n
	v.ClampLoad()
	return n
}

// ClampLoad forces the passenger count back into [0, Capacity].
func (v *Vehicle) ClampLoad() {
	if v.State.PassengerLoad < 0 {
		v.State.PassengerLoad = 0
	}
	if v.State.PassengerLoad > v.Capacity {
		v.State.PassengerLoad = v.Capacity
	}
}

// Return the delay reason or an empty string.
func (s RuntimeState) Reason() string {
	if s.DelayReason == nil {
		return ""
	}
	return *s.DelayReason
}
