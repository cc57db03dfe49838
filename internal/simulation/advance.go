package simulation

import (
	"math"
	"time"

	"fleet-tracking-service/internal/domain"
)

// advanceVehicle moves one vehicle forward by dt of simulated time.
// It performs no I/O; the outcome depends only on its arguments and the
// draws taken from rng.
func advanceVehicle(
	v *domain.Vehicle,
	route *domain.Route,
	dt time.Duration,
	now time.Time,
	rng RandomSource,
	p Params,
) (domain.Position, error) {
	if err := route.Validate(); err != nil {
		return domain.Position{}, err
	}

	s := &v.State
	defer func() { s.LastTickTimestamp = now }()

	switch s.Status {
	case domain.StatusBreakdown:
		// Time lost to the fault counts as delay; it decays after recovery.
		s.SpeedKmh = 0
		s.CurrentDelayMinutes += dt.Minutes()
		if p.RecoveryProbability > 0 && rng.Float64() < p.RecoveryProbability {
			recoverVehicle(v)
		}
		return Locate(route, s.DistanceCoveredKm, 0, p.StopToleranceKm)

	case domain.StatusOffDuty:
		s.SpeedKmh = 0
		if p.EndOfRoutePolicy == domain.EndOfRouteLoop {
			s.LayoverRemaining -= dt
			if s.LayoverRemaining <= 0 {
				respawn(v, now)
			}
		}
		return Locate(route, s.DistanceCoveredKm, 0, p.StopToleranceKm)
	}

	if maybeBreakDown(v, rng, p) {
		return Locate(route, s.DistanceCoveredKm, 0, p.StopToleranceKm)
	}

	prevIdx := s.CurrentWaypointIndex

	jitter := 1 + (rng.Float64()*2-1)*p.SpeedJitter
	speed := v.BaseSpeedKmh * jitter
	delta := speed * dt.Hours()

	s.DistanceCoveredKm = math.Min(s.DistanceCoveredKm+delta, route.TotalDistanceKm)
	s.SpeedKmh = speed

	pos, err := Locate(route, s.DistanceCoveredKm, speed, p.StopToleranceKm)
	if err != nil {
		return domain.Position{}, err
	}
	s.CurrentWaypointIndex = pos.WaypointIndex
	s.HeadingDegrees = pos.HeadingDegrees

	terminal := s.DistanceCoveredKm >= route.TotalDistanceKm

	applyDelay(v, rng, p, dt)
	applyLoad(v, rng, p, pos.ProgressPercentage, pos.WaypointIndex > prevIdx, terminal)

	// Status is derived after the delay model so a snapshot never shows a
	// positive delay on an on_route vehicle.
	switch {
	case terminal:
		s.Status = domain.StatusOffDuty
		s.SpeedKmh = 0
		s.LayoverRemaining = p.Layover
		return Locate(route, s.DistanceCoveredKm, 0, p.StopToleranceKm)
	case pos.AtWaypoint:
		s.Status = domain.StatusAtStop
	case s.CurrentDelayMinutes > 0:
		s.Status = domain.StatusDelayed
	default:
		s.Status = domain.StatusOnRoute
	}

	return pos, nil
}

// recoverVehicle clears a breakdown. The vehicle resumes on the next tick;
// any accumulated delay keeps decaying normally.
func recoverVehicle(v *domain.Vehicle) {
	s := &v.State
	if s.CurrentDelayMinutes > 0 {
		s.Status = domain.StatusDelayed
		return
	}
	s.Status = domain.StatusOnRoute
	s.DelayReason = nil
}

func respawn(v *domain.Vehicle, now time.Time) {
	s := &v.State
	s.DistanceCoveredKm = 0
	s.CurrentWaypointIndex = 0
	s.PassengerLoad = 0
	s.LayoverRemaining = 0
	s.TripNumber++
	s.TripStartedAt = now
	s.Status = domain.StatusOnRoute
}
