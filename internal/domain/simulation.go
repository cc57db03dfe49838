package domain

import "time"

type ClockStatus string

const (
	ClockStopped ClockStatus = "stopped"
	ClockRunning ClockStatus = "running"
)

type EndOfRoutePolicy string

const (
	// Vehicles go off duty for a layover and re-spawn at the route origin.
	EndOfRouteLoop EndOfRoutePolicy = "loop"
	// Vehicles park off duty at the terminus until the simulation restarts.
	EndOfRouteStop EndOfRoutePolicy = "stop"
)

// State of the simulation clock. Owned by exactly one clock; callers only
// ever receive copies.
type SimulationState struct {
	Status          ClockStatus
	SpeedMultiplier float64
	TickInterval    time.Duration
	StartedAt       *time.Time
	TickCount       uint64
}

func (s SimulationState) IsRunning() bool { return s.Status == ClockRunning }
